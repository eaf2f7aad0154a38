// Package wsgikit parses HTTP requests into nested, PHP-style parameter
// structures with streaming resource limits.
//
// Query strings and urlencoded bodies are decoded with bracket notation
// ("foo[1][]=v" maps to foo -> {"1": {"0": "v"}}), multipart bodies are
// scanned as a stream with uploaded files spooled to temp storage, and
// three limits - file count, per-file size, total body size - are enforced
// while reading, so an oversized payload is rejected at the byte that
// crosses the threshold, never after buffering.
//
// Basic usage:
//
//	req, err := wsgikit.New(r,
//		wsgikit.WithLimits(formdata.Limits{
//			MaxFiles:         2,
//			MaxFileSize:      1 << 20,
//			MaxContentLength: 8 << 20,
//		}),
//	)
//	if err != nil {
//		// errors.Is against formdata.ErrBodyTooLarge etc. for status mapping
//		return
//	}
//	defer req.Close() // removes temp files never moved
//
//	if req.HasFiles() {
//		if err := req.Uploader().MoveAll("./uploads", true); err != nil {
//			return
//		}
//	}
//
//	_ = json.NewEncoder(w).Encode(req.ToMap())
//
// Parsing is all-or-nothing: any limit violation or malformed input aborts
// construction, temp files are removed and the error propagates unchanged.
// The error kind is always precise enough to distinguish too many files
// from one file too big from a body too big from garbled input.
package wsgikit
