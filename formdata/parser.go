package formdata

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Mikhus/wsgikit/params"
	"github.com/Mikhus/wsgikit/upload"
)

const (
	readBufferSize = 16 * 1024
	copyChunkSize  = 32 * 1024

	// RFC 2046 caps boundaries at 70 characters; anything longer is junk.
	maxBoundaryLen = 70
)

// Parser parses multipart/form-data bodies. A Parser is immutable and safe
// to share; all per-parse state lives on the stack of Parse.
type Parser struct {
	limits  Limits
	tempDir string
}

// Option configures a Parser.
type Option func(*Parser)

// WithTempDir sets the directory file parts are spooled to. Defaults to
// the system temp directory.
func WithTempDir(dir string) Option {
	return func(p *Parser) {
		if dir != "" {
			p.tempDir = dir
		}
	}
}

// NewParser creates a parser enforcing the given limits.
func NewParser(limits Limits, opts ...Option) *Parser {
	p := &Parser{
		limits:  limits,
		tempDir: os.TempDir(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads a multipart body delimited by boundary and returns the field
// parameters and the uploaded files in arrival order. File content is
// streamed to temp files named with a per-upload UUID, so concurrent
// requests never collide.
//
// Limits are consulted while reading: the file-count check runs before a
// file's content is read, the per-file size check after every chunk, and
// the total-body check on every read from the stream. On any error all
// temp files created so far are removed and the error is returned with the
// matching sentinel (ErrMalformed, ErrTooManyFiles, ErrFileTooLarge,
// ErrBodyTooLarge) in its chain.
func (p *Parser) Parse(boundary string, body io.Reader) (params.Values, []*upload.File, error) {
	if boundary == "" || len(boundary) > maxBoundaryLen {
		return nil, nil, fmt.Errorf("%w: invalid boundary %q", ErrMalformed, boundary)
	}

	tracker := NewLimitTracker(p.limits)
	sc := &scanner{
		br:    bufio.NewReaderSize(tracker.Reader(body), readBufferSize),
		delim: []byte("\r\n--" + boundary),
	}

	values := params.NewValues()
	var files []*upload.File

	fail := func(err error) (params.Values, []*upload.File, error) {
		for _, f := range files {
			_ = os.Remove(f.Path)
		}
		return nil, nil, err
	}

	if err := sc.seekFirstBoundary(); err != nil {
		return fail(err)
	}

	counts := make(map[string]int)
	for !sc.done {
		header, err := sc.readPartHeaders()
		if err != nil {
			return fail(err)
		}

		name, filename, isFile, err := parseDisposition(header)
		if err != nil {
			return fail(err)
		}

		pr := sc.partReader()
		if !isFile {
			value, err := readField(pr)
			if err != nil {
				return fail(err)
			}
			values.Add(name, value)
			continue
		}

		file, err := p.readFile(pr, tracker, header, name, filename)
		if err != nil {
			return fail(err)
		}
		file.Index = counts[name]
		counts[name]++
		files = append(files, file)
	}

	return values, files, nil
}

// readField accumulates a field part's body. Growth is bounded by the
// tracker's body counter feeding every underlying read.
func readField(pr io.Reader) (string, error) {
	data, err := io.ReadAll(pr)
	if err != nil {
		return "", mapStreamErr(err)
	}
	return string(data), nil
}

// readFile streams a file part to a fresh temp file, checking the per-file
// limit after every chunk. The partial temp file is removed on any error.
func (p *Parser) readFile(pr io.Reader, tracker *LimitTracker, header textproto.MIMEHeader, name, filename string) (*upload.File, error) {
	if err := tracker.BeginFile(); err != nil {
		return nil, err
	}

	path := filepath.Join(p.tempDir, "wsgikit-"+uuid.NewString())
	tmp, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	discard := func(err error) (*upload.File, error) {
		_ = tmp.Close()
		_ = os.Remove(path)
		return nil, err
	}

	size := int64(0)
	buf := make([]byte, copyChunkSize)
	for {
		n, rerr := pr.Read(buf)
		if n > 0 {
			if lerr := tracker.AddFileBytes(int64(n)); lerr != nil {
				return discard(lerr)
			}
			if _, werr := tmp.Write(buf[:n]); werr != nil {
				return discard(fmt.Errorf("failed to write temp file: %w", werr))
			}
			size += int64(n)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return discard(mapStreamErr(rerr))
		}
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	return &upload.File{
		FieldName:   name,
		Filename:    filename,
		ContentType: header.Get("Content-Type"),
		Size:        size,
		Path:        path,
	}, nil
}

// parseDisposition extracts the field name and optional filename from a
// part's Content-Disposition header. Presence of a filename attribute, even
// an empty one, classifies the part as a file.
func parseDisposition(header textproto.MIMEHeader) (name, filename string, isFile bool, err error) {
	cd := header.Get("Content-Disposition")
	if cd == "" {
		return "", "", false, fmt.Errorf("%w: part without Content-Disposition", ErrMalformed)
	}

	mediaType, attrs, err := mime.ParseMediaType(cd)
	if err != nil || !strings.EqualFold(mediaType, "form-data") {
		return "", "", false, fmt.Errorf("%w: unparseable Content-Disposition %q", ErrMalformed, cd)
	}

	name, ok := attrs["name"]
	if !ok {
		return "", "", false, fmt.Errorf("%w: Content-Disposition without a name", ErrMalformed)
	}

	filename, isFile = attrs["filename"]
	return name, filename, isFile, nil
}

// mapStreamErr converts low-level stream errors into the package taxonomy.
// Limit errors pass through untouched.
func mapStreamErr(err error) error {
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return fmt.Errorf("%w: body ends mid-part", ErrMalformed)
	}
	return err
}

// mapFrameErr classifies a read failure inside the multipart framing. A
// tripped limit must keep its sentinel even when it surfaces through a
// header or boundary read, so the caller can still tell "body too big"
// from "garbled input".
func mapFrameErr(err error, msg string) error {
	if isLimitErr(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrMalformed, msg, err)
}

func isLimitErr(err error) bool {
	return errors.Is(err, ErrBodyTooLarge) ||
		errors.Is(err, ErrFileTooLarge) ||
		errors.Is(err, ErrTooManyFiles)
}

// scanner walks the multipart framing: boundaries, part headers and part
// bodies, in the order the state machine visits them.
type scanner struct {
	br    *bufio.Reader
	delim []byte // "\r\n--boundary"
	done  bool
}

// seekFirstBoundary discards the preamble up to and including the opening
// boundary delimiter and its trailing CRLF. The opening delimiter may
// appear at the very start of the body without a leading CRLF.
func (sc *scanner) seekFirstBoundary() error {
	dashBoundary := sc.delim[2:]

	head, err := sc.br.Peek(len(dashBoundary))
	if err == nil && bytes.Equal(head, dashBoundary) {
		if _, err := sc.br.Discard(len(dashBoundary)); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return sc.afterBoundary()
	}

	// Preamble before the first delimiter: discard until "\r\n--boundary".
	if _, err := io.Copy(io.Discard, sc.partReader()); err != nil {
		if isEOF(err) {
			return fmt.Errorf("%w: boundary %q never found", ErrMalformed, dashBoundary)
		}
		return err
	}
	return nil
}

// readPartHeaders reads the current part's MIME headers, terminated by an
// empty line.
func (sc *scanner) readPartHeaders() (textproto.MIMEHeader, error) {
	header, err := textproto.NewReader(sc.br).ReadMIMEHeader()
	if err != nil {
		return nil, mapFrameErr(err, "truncated part headers")
	}
	return header, nil
}

// partReader returns a reader over the current part's body that reports
// io.EOF once the next boundary delimiter is reached. Reaching the
// delimiter also consumes the boundary line and records whether it was the
// closing one.
func (sc *scanner) partReader() io.Reader {
	return &partReader{sc: sc}
}

type partReader struct {
	sc  *scanner
	eof bool
}

func (pr *partReader) Read(b []byte) (int, error) {
	if pr.eof {
		return 0, io.EOF
	}
	sc := pr.sc

	for {
		window, peekErr := sc.br.Peek(readBufferSize)

		if idx := bytes.Index(window, sc.delim); idx >= 0 {
			if idx == 0 {
				if _, err := sc.br.Discard(len(sc.delim)); err != nil {
					return 0, err
				}
				pr.eof = true
				if err := sc.afterBoundary(); err != nil {
					return 0, err
				}
				return 0, io.EOF
			}
			n := min(len(b), idx)
			return sc.br.Read(b[:n])
		}

		if peekErr != nil && len(window) == 0 {
			if isEOF(peekErr) {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, peekErr
		}

		// Keep a potential partial delimiter in the buffer; everything
		// before it is part content.
		safe := len(window) - len(sc.delim) + 1
		if peekErr != nil {
			if !isEOF(peekErr) {
				safe = len(window)
			} else if safe <= 0 {
				// Stream ended with less than a delimiter pending.
				return 0, io.ErrUnexpectedEOF
			}
		}
		if safe > 0 {
			n := min(len(b), safe)
			return sc.br.Read(b[:n])
		}
	}
}

// afterBoundary consumes what follows a boundary delimiter: "--" marks the
// closing boundary, CRLF (optionally preceded by linear whitespace) starts
// the next part.
func (sc *scanner) afterBoundary() error {
	tail, err := sc.br.Peek(2)
	if err == nil && bytes.Equal(tail, []byte("--")) {
		_, _ = sc.br.Discard(2)
		sc.done = true
		return nil
	}

	// Transport padding: optional spaces or tabs before the CRLF.
	for {
		c, err := sc.br.ReadByte()
		if err != nil {
			return mapFrameErr(err, "body ends at boundary")
		}
		switch c {
		case ' ', '\t':
			continue
		case '\r':
			nl, err := sc.br.ReadByte()
			if err != nil {
				return mapFrameErr(err, "boundary not followed by CRLF")
			}
			if nl != '\n' {
				return fmt.Errorf("%w: boundary not followed by CRLF", ErrMalformed)
			}
			return nil
		default:
			return fmt.Errorf("%w: junk after boundary", ErrMalformed)
		}
	}
}

func isEOF(err error) bool {
	return err == io.EOF || err == io.ErrUnexpectedEOF
}
