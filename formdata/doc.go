// Package formdata parses multipart/form-data request bodies as a stream,
// enforcing resource limits while reading rather than after buffering.
//
// Field parts feed the nested parameter mapping from package params; file
// parts are spooled chunk by chunk to temp files. Three independent limits
// are checked incrementally: file count (before a file's content is read),
// per-file size (after every chunk), and total body size (on every read
// from the wire). A violation aborts the parse at the point it occurs, so a
// hostile sender can never force the parser to buffer an oversized payload:
//
//	p := formdata.NewParser(formdata.Limits{
//	    MaxFiles:         2,
//	    MaxFileSize:      1 << 20,
//	    MaxContentLength: 8 << 20,
//	})
//	values, files, err := p.Parse(boundary, r.Body)
//	switch {
//	case errors.Is(err, formdata.ErrFileTooLarge):
//	    // 413
//	case errors.Is(err, formdata.ErrMalformed):
//	    // 400
//	}
//
// Parsing is all-or-nothing: on any error every temp file created so far is
// removed before the error is returned. Worst-case memory is bounded by the
// read buffer plus structural metadata, not by the body size.
package formdata
