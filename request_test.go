package wsgikit_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mikhus/wsgikit"
	"github.com/Mikhus/wsgikit/formdata"
)

func multipartRequest(t *testing.T, build func(w *multipart.Writer)) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	build(w)
	require.NoError(t, w.Close())

	r := httptest.NewRequest(http.MethodPost, "/", &buf)
	r.Header.Set("Content-Type", w.FormDataContentType())
	return r
}

func TestNewQueryParsing(t *testing.T) {
	t.Parallel()

	t.Run("flat query", func(t *testing.T) {
		t.Parallel()

		req, err := wsgikit.New(httptest.NewRequest(http.MethodGet, "/?foo=1&bar=2", nil))
		require.NoError(t, err)
		defer req.Close()

		assert.Equal(t, map[string]any{"foo": "1", "bar": "2"}, req.Query().Interface())
		assert.Equal(t, http.MethodGet, req.Method())
		assert.False(t, req.HasFiles())
	})

	t.Run("nested query", func(t *testing.T) {
		t.Parallel()

		req, err := wsgikit.New(httptest.NewRequest(http.MethodGet, "/?foo[][]=1&foo[1][]=1&foo[1][]=1", nil))
		require.NoError(t, err)
		defer req.Close()

		assert.Equal(t, map[string]any{
			"foo": map[string]any{
				"0": map[string]any{"0": "1"},
				"1": map[string]any{"0": "1", "1": "1"},
			},
		}, req.Query().Interface())
	})
}

func TestNewUrlencodedBody(t *testing.T) {
	t.Parallel()

	t.Run("body parsed with bracket notation", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("foo[][]=1&foo[1][]=1&foo[1][]=1"))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		req, err := wsgikit.New(r)
		require.NoError(t, err)
		defer req.Close()

		assert.Equal(t, map[string]any{
			"foo": map[string]any{
				"0": map[string]any{"0": "1"},
				"1": map[string]any{"0": "1", "1": "1"},
			},
		}, req.Body().Interface())
	})

	t.Run("declared length over the limit rejected before reading", func(t *testing.T) {
		t.Parallel()

		body := "foo=" + strings.Repeat("0", 512)
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		_, err := wsgikit.New(r, wsgikit.WithLimits(formdata.Limits{MaxContentLength: 512}))
		assert.ErrorIs(t, err, formdata.ErrBodyTooLarge)
	})

	t.Run("undeclared length caught while reading", func(t *testing.T) {
		t.Parallel()

		body := "foo=" + strings.Repeat("0", 512)
		r := httptest.NewRequest(http.MethodPost, "/", io.Reader(struct{ io.Reader }{strings.NewReader(body)}))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		_, err := wsgikit.New(r, wsgikit.WithLimits(formdata.Limits{MaxContentLength: 512}))
		assert.ErrorIs(t, err, formdata.ErrBodyTooLarge)
	})

	t.Run("charset parameter tolerated", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("a=1"))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")

		req, err := wsgikit.New(r)
		require.NoError(t, err)
		defer req.Close()

		assert.Equal(t, map[string]any{"a": "1"}, req.Body().Interface())
	})
}

func TestNewMultipartBody(t *testing.T) {
	t.Parallel()

	t.Run("fields files and ToMap sections", func(t *testing.T) {
		t.Parallel()

		r := multipartRequest(t, func(w *multipart.Writer) {
			require.NoError(t, w.WriteField("foo", "1"))
			require.NoError(t, w.WriteField("bar", "2"))

			fw, err := w.CreateFormFile("upfiles[]", "01.txt")
			require.NoError(t, err)
			_, err = fw.Write([]byte("first"))
			require.NoError(t, err)

			fw, err = w.CreateFormFile("upfiles[]", "02.zip")
			require.NoError(t, err)
			_, err = fw.Write([]byte("second"))
			require.NoError(t, err)
		})
		r.Header.Set("X-Test-Header", "tested")
		r.Header.Set("Cookie", "session=12345; sid=123456789")

		req, err := wsgikit.New(r, wsgikit.WithTempDir(t.TempDir()))
		require.NoError(t, err)
		defer req.Close()

		assert.True(t, req.HasFiles())
		require.Len(t, req.Files(), 2)

		m := req.ToMap()
		assert.Equal(t, map[string]any{"foo": "1", "bar": "2"}, m["BODY"])

		files, ok := m["FILES"].(map[string]any)
		require.True(t, ok)
		upfiles, ok := files["upfiles"].(map[string]any)
		require.True(t, ok)
		first, ok := upfiles["0"].(map[string]any)
		require.True(t, ok)
		second, ok := upfiles["1"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "01.txt", first["filename"])
		assert.Equal(t, "02.zip", second["filename"])
		assert.Equal(t, "5", first["size"])

		headers, ok := m["HEADERS"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "tested", headers["X-Test-Header"])

		assert.Equal(t, map[string]any{
			"session": "12345",
			"sid":     "123456789",
		}, m["COOKIE"])
	})

	t.Run("move all yields byte identical content", func(t *testing.T) {
		t.Parallel()

		payload := bytes.Repeat([]byte("payload"), 1000)
		r := multipartRequest(t, func(w *multipart.Writer) {
			fw, err := w.CreateFormFile("up", "data.bin")
			require.NoError(t, err)
			_, err = fw.Write(payload)
			require.NoError(t, err)
		})

		req, err := wsgikit.New(r, wsgikit.WithTempDir(t.TempDir()))
		require.NoError(t, err)
		defer req.Close()

		destDir := t.TempDir()
		require.NoError(t, req.Uploader().MoveAll(destDir, true))

		content, err := os.ReadFile(filepath.Join(destDir, "data.bin"))
		require.NoError(t, err)
		assert.Equal(t, payload, content)
	})

	t.Run("missing boundary parameter", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("x"))
		r.Header.Set("Content-Type", "multipart/form-data")

		_, err := wsgikit.New(r)
		assert.ErrorIs(t, err, formdata.ErrMalformed)
	})

	t.Run("file count limit propagates", func(t *testing.T) {
		t.Parallel()

		r := multipartRequest(t, func(w *multipart.Writer) {
			for _, name := range []string{"01.txt", "02.zip", "03.zip"} {
				fw, err := w.CreateFormFile("upfiles[]", name)
				require.NoError(t, err)
				_, err = fw.Write([]byte("content"))
				require.NoError(t, err)
			}
		})

		_, err := wsgikit.New(r,
			wsgikit.WithTempDir(t.TempDir()),
			wsgikit.WithLimits(formdata.Limits{MaxFiles: 2}),
		)
		assert.ErrorIs(t, err, formdata.ErrTooManyFiles)
	})

	t.Run("file size limit propagates", func(t *testing.T) {
		t.Parallel()

		r := multipartRequest(t, func(w *multipart.Writer) {
			fw, err := w.CreateFormFile("upfiles[]", "large.zip")
			require.NoError(t, err)
			_, err = fw.Write(bytes.Repeat([]byte("z"), 64<<10))
			require.NoError(t, err)
		})

		tempDir := t.TempDir()
		_, err := wsgikit.New(r,
			wsgikit.WithTempDir(tempDir),
			wsgikit.WithLimits(formdata.Limits{MaxFileSize: 1024}),
		)
		require.ErrorIs(t, err, formdata.ErrFileTooLarge)

		entries, err := os.ReadDir(tempDir)
		require.NoError(t, err)
		assert.Empty(t, entries, "failed parse must leave no temp files")
	})
}

func TestNewOpaqueBody(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/?q=1", strings.NewReader(`{"json":"body"}`))
	r.Header.Set("Content-Type", "application/json")

	req, err := wsgikit.New(r)
	require.NoError(t, err)
	defer req.Close()

	assert.Equal(t, map[string]any{"q": "1"}, req.Query().Interface())
	assert.Empty(t, req.Body(), "opaque bodies are not parsed into params")
}

func TestNewCookieEdgeCases(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Cookie", " a = 1 ;; a=2; b=x=y; nameless")

	req, err := wsgikit.New(r)
	require.NoError(t, err)
	defer req.Close()

	assert.Equal(t, map[string]string{
		"a":        "2",
		"b":        "x=y",
		"nameless": "",
	}, req.Cookies())
}

func TestRequestClose(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	r := multipartRequest(t, func(w *multipart.Writer) {
		fw, err := w.CreateFormFile("up", "a.txt")
		require.NoError(t, err)
		_, err = fw.Write([]byte("x"))
		require.NoError(t, err)
	})

	req, err := wsgikit.New(r, wsgikit.WithTempDir(tempDir))
	require.NoError(t, err)
	req.Close()

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseQuery(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		map[string]any{"foo": "1", "bar": "2"},
		wsgikit.ParseQuery("foo=1&bar=2").Interface(),
	)
}
