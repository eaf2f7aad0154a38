package wsgikit

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/Mikhus/wsgikit/formdata"
	"github.com/Mikhus/wsgikit/params"
	"github.com/Mikhus/wsgikit/upload"
)

// Request is the parsed form of one HTTP request: nested query and body
// parameters, uploaded files, headers and cookies. It is read-only once
// returned and owned by the caller that produced it.
type Request struct {
	method   string
	query    params.Values
	body     params.Values
	headers  map[string]string
	cookies  map[string]string
	uploader *upload.Uploader
}

// New parses r into a Request. The query string is always parsed; the body
// is dispatched on content type: urlencoded bodies are read through the
// body-size limit and decoded with bracket notation, multipart bodies are
// streamed through the multipart parser, and any other content type leaves
// the body untouched.
//
// Any limit violation or malformed input aborts parsing: temp files
// created so far are removed and the sub-parser's error is returned
// unchanged, so callers can map it with errors.Is against the formdata
// sentinels.
func New(r *http.Request, opts ...Option) (*Request, error) {
	o := options{
		tempDir: os.TempDir(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	req := &Request{
		method:   r.Method,
		query:    params.ParseQuery(r.URL.RawQuery),
		body:     params.NewValues(),
		headers:  flattenHeaders(r.Header),
		cookies:  parseCookies(r.Header.Get("Cookie")),
		uploader: upload.NewUploader(nil),
	}

	mediaType, attrs := splitContentType(r.Header.Get("Content-Type"))

	// The declared length is untrusted but a declared overflow can be
	// rejected before reading a single body byte.
	if o.limits.MaxContentLength > 0 && r.ContentLength > o.limits.MaxContentLength {
		return nil, fmt.Errorf("%w: declared length %d", formdata.ErrBodyTooLarge, r.ContentLength)
	}

	switch mediaType {
	case "application/x-www-form-urlencoded":
		tracker := formdata.NewLimitTracker(o.limits)
		data, err := io.ReadAll(tracker.Reader(r.Body))
		if err != nil {
			return nil, err
		}
		req.body = params.ParseQuery(string(data))
		o.logger.Debug("parsed urlencoded body",
			slog.Int("bytes", len(data)),
			slog.Int("fields", len(req.body)))

	case "multipart/form-data":
		boundary := attrs["boundary"]
		if boundary == "" {
			return nil, fmt.Errorf("%w: missing multipart boundary", formdata.ErrMalformed)
		}
		parser := formdata.NewParser(o.limits, formdata.WithTempDir(o.tempDir))
		values, files, err := parser.Parse(boundary, r.Body)
		if err != nil {
			return nil, err
		}
		req.body = values
		req.uploader = upload.NewUploader(files)
		o.logger.Debug("parsed multipart body",
			slog.Int("fields", len(values)),
			slog.Int("files", len(files)))

	default:
		// Opaque body: not parsed into structured params, left unread.
		o.logger.Debug("skipped opaque body", slog.String("content_type", mediaType))
	}

	return req, nil
}

// ParseQuery parses a raw query string with bracket notation. It is a pure
// helper usable without a request; see params.ParseQuery.
func ParseQuery(raw string) params.Values {
	return params.ParseQuery(raw)
}

// Method returns the HTTP method of the parsed request.
func (r *Request) Method() string {
	return r.method
}

// Query returns the nested query string parameters.
func (r *Request) Query() params.Values {
	return r.query
}

// Body returns the nested body parameters. It is empty for opaque bodies.
func (r *Request) Body() params.Values {
	return r.body
}

// Headers returns the request headers as a flat first-value mapping with
// canonical names.
func (r *Request) Headers() map[string]string {
	return r.headers
}

// Cookies returns the Cookie header split into a flat mapping. Duplicate
// names resolve last-wins.
func (r *Request) Cookies() map[string]string {
	return r.cookies
}

// HasFiles reports whether the body carried at least one file part, empty
// files included.
func (r *Request) HasFiles() bool {
	return r.uploader.HasFiles()
}

// Files returns the uploaded files in arrival order.
func (r *Request) Files() []*upload.File {
	return r.uploader.Files()
}

// Uploader exposes the file uploader for moving files to their final
// destination.
func (r *Request) Uploader() *upload.Uploader {
	return r.uploader
}

// Close removes the temp storage of every uploaded file that was never
// moved. Safe to defer unconditionally.
func (r *Request) Close() {
	r.uploader.Cleanup()
}

// ToMap assembles the request into one mapping with the QUERY, BODY,
// FILES, HEADERS and COOKIE sections, ready for JSON encoding. FILES is
// keyed by upload field name with bracket notation applied, so two parts
// named "upfiles[]" yield FILES["upfiles"]["0"] and FILES["upfiles"]["1"],
// each holding {filename, type, size, path}.
func (r *Request) ToMap() map[string]any {
	files := params.NewValues()
	for _, f := range r.uploader.Files() {
		info := params.NewValues()
		info.Add("filename", f.Filename)
		info.Add("type", f.ContentType)
		info.Add("size", strconv.FormatInt(f.Size, 10))
		info.Add("path", f.Path)
		files.Put(f.FieldName, params.Nested(info))
	}

	headers := make(map[string]any, len(r.headers))
	for k, v := range r.headers {
		headers[k] = v
	}
	cookies := make(map[string]any, len(r.cookies))
	for k, v := range r.cookies {
		cookies[k] = v
	}

	return map[string]any{
		"QUERY":   r.query.Interface(),
		"BODY":    r.body.Interface(),
		"FILES":   files.Interface(),
		"HEADERS": headers,
		"COOKIE":  cookies,
	}
}

// splitContentType extracts the media type and its parameters, tolerating
// requests with no or unparseable content types by treating them as opaque.
func splitContentType(contentType string) (string, map[string]string) {
	if contentType == "" {
		return "", nil
	}
	mediaType, attrs, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", nil
	}
	return mediaType, attrs
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if len(values) > 0 {
			out[name] = values[0]
		}
	}
	return out
}

// parseCookies splits the Cookie header on ";" and each entry on the first
// "=". Names and values are whitespace-trimmed, nothing is nested, and
// duplicate names resolve last-wins.
func parseCookies(header string) map[string]string {
	out := make(map[string]string)
	for header != "" {
		var entry string
		entry, header, _ = strings.Cut(header, ";")
		name, value, _ := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out[name] = strings.TrimSpace(value)
	}
	return out
}
