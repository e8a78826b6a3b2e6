package fetcher_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/byte4ever/fetchcheck/checker"
	"github.com/byte4ever/fetchcheck/fetcher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// md5("abc")
const abcMD5 = "900150983cd24fb0d6963f7d28e17f72"

func serveBytes(t *testing.T, data []byte) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write(data)
		},
	))
	t.Cleanup(srv.Close)

	return srv
}

func TestFetch_verified_download(t *testing.T) {
	t.Parallel()

	srv := serveBytes(t, []byte("abc"))

	dest := filepath.Join(t.TempDir(), "out", "pkg.bin")

	err := fetcher.New().Fetch(
		context.Background(), srv.URL, dest, abcMD5,
	)

	require.NoError(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

func TestFetch_digest_mismatch(t *testing.T) {
	t.Parallel()

	srv := serveBytes(t, []byte("tampered"))

	dest := filepath.Join(t.TempDir(), "pkg.bin")

	err := fetcher.New().Fetch(
		context.Background(), srv.URL, dest, abcMD5,
	)

	var me *fetcher.MismatchError

	require.ErrorAs(t, err, &me)
	assert.Equal(t, "md5", me.HashName)
	assert.Equal(t, abcMD5, me.Expected)
	assert.NotEqual(t, me.Expected, me.Actual)

	// Destination must not exist, and no temp file
	// may be left behind.
	assert.NoFileExists(t, dest)

	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFetch_rejects_bad_digest_before_io(t *testing.T) {
	t.Parallel()

	err := fetcher.New().Fetch(
		context.Background(),
		"http://127.0.0.1:0/unreachable",
		filepath.Join(t.TempDir(), "pkg.bin"),
		"abc",
	)

	assert.ErrorIs(
		t, err, checker.ErrMalformedDigest,
	)
}

func TestFetch_http_error_status(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {
			http.Error(
				w, "gone", http.StatusNotFound,
			)
		},
	))
	t.Cleanup(srv.Close)

	dest := filepath.Join(t.TempDir(), "pkg.bin")

	err := fetcher.New().Fetch(
		context.Background(), srv.URL, dest, abcMD5,
	)

	require.ErrorContains(t, err, "unexpected status")
	assert.NoFileExists(t, dest)
}
