package upload

import "errors"

var (
	// ErrDestinationExists is returned when a move target already exists and
	// overwrite was not requested.
	ErrDestinationExists = errors.New("destination file already exists")

	// ErrStorage is returned when relocating a file fails for any reason
	// other than an existing destination.
	ErrStorage = errors.New("upload storage failure")
)
