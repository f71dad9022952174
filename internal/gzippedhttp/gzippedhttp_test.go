package gzippedhttp

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipBytes(t *testing.T, input []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(input)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func TestUngzipRequest(t *testing.T) {
	echo := UngzipRequest(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		w.Write(body)
	}))

	request := httptest.NewRequest(
		http.MethodPost,
		"/",
		bytes.NewReader(gzipBytes(t, []byte("hello"))),
	)
	request.Header.Set("Content-Encoding", "gzip")

	w := httptest.NewRecorder()
	echo.ServeHTTP(w, request)

	assert.Equal(t, "hello", w.Body.String())
}

func TestGzipResponse(t *testing.T) {
	handler := GzipResponse(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("hello"))
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Accept-Encoding", "gzip")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, request)

	result := w.Result()
	defer result.Body.Close()

	require.Equal(t, "gzip", result.Header.Get("Content-Encoding"))

	zr, err := gzip.NewReader(result.Body)
	require.NoError(t, err)
	decompressed, err := io.ReadAll(zr)
	require.NoError(t, err)

	assert.Equal(t, "hello", string(decompressed))
}

func TestGzipResponseSkipsErrors(t *testing.T) {
	handler := GzipResponse(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("nope"))
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Accept-Encoding", "gzip")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, request)

	result := w.Result()
	defer result.Body.Close()

	assert.Empty(t, result.Header.Get("Content-Encoding"))
	assert.Equal(t, "nope", w.Body.String())
}
