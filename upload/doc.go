// Package upload holds the files captured while parsing a multipart request
// body and relocates them from temporary storage to a permanent destination.
//
// Files arrive spooled to temp files. The Uploader moves them to a local
// directory, streams them into a storage.Storage backend, or removes the
// leftovers on Cleanup:
//
//	u := req.Uploader()
//	if u.HasFiles() {
//	    if err := u.MoveAll("./uploads", true); err != nil {
//	        // already-moved files stay moved; inspect per-file Path
//	    }
//	}
//
// Uploaded filenames are sanitized before any destination path is built, so
// a hostile "../../etc/passwd" filename cannot escape the destination
// directory.
package upload
