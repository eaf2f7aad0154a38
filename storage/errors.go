package storage

import "errors"

var (
	// ErrInvalidConfig is returned when a backend is constructed with
	// missing or inconsistent configuration.
	ErrInvalidConfig = errors.New("invalid storage configuration")

	// ErrInvalidPath is returned when a path contains traversal attempts or
	// escapes the storage root.
	ErrInvalidPath = errors.New("invalid path")

	// ErrFileNotFound is returned when a file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrFailedToCreateDirectory is returned when a directory cannot be created.
	ErrFailedToCreateDirectory = errors.New("failed to create directory")

	// ErrFailedToCreateFile is returned when a file cannot be created.
	ErrFailedToCreateFile = errors.New("failed to create file")

	// ErrFailedToReadFile is returned when source content cannot be read.
	ErrFailedToReadFile = errors.New("failed to read file")

	// ErrFailedToWriteFile is returned when a file cannot be written.
	ErrFailedToWriteFile = errors.New("failed to write file")

	// ErrFailedToDeleteFile is returned when a file cannot be deleted.
	ErrFailedToDeleteFile = errors.New("failed to delete file")

	// ErrFailedToGetAbsolutePath is returned when the absolute path cannot
	// be determined.
	ErrFailedToGetAbsolutePath = errors.New("failed to get absolute path")
)
