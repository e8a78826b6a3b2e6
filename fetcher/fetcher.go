package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/byte4ever/fetchcheck/checker"
)

// DefaultTimeout bounds a whole download, connection
// setup included.
const DefaultTimeout = 5 * time.Minute

// MismatchError reports a downloaded file whose digest
// does not match the expected one.
type MismatchError struct {
	// URL is the source of the download.
	URL string
	// HashName is the algorithm selected by the
	// expected digest's length.
	HashName string
	// Expected is the digest the caller supplied.
	Expected string
	// Actual is the digest of the downloaded bytes.
	Actual string
}

// Error describes the mismatch with both digests.
func (e *MismatchError) Error() string {
	return fmt.Sprintf(
		"%s digest mismatch for %s:"+
			" expected %s, got %s",
		e.HashName, e.URL, e.Expected, e.Actual,
	)
}

// Fetcher downloads files with a bounded timeout.
type Fetcher struct {
	client    *http.Client
	blockSize int
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout bounds each download. The default is
// DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(fe *Fetcher) {
		fe.client.Timeout = d
	}
}

// WithBlockSize sets the read chunk size used while
// verifying the downloaded file.
func WithBlockSize(n int) Option {
	return func(fe *Fetcher) {
		fe.blockSize = n
	}
}

// New returns a Fetcher with the default timeout.
func New(opts ...Option) *Fetcher {
	fe := &Fetcher{
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(fe)
	}

	return fe
}

// Fetch downloads url into destPath and verifies the
// content against hexdigest. The download lands in a
// temp file in the destination directory first and is
// renamed into place only after the digest matches, so
// destPath never holds unverified bytes. On failure the
// temp file is removed.
func (fe *Fetcher) Fetch(
	ctx context.Context,
	url string,
	destPath string,
	hexdigest string,
) (retErr error) {
	const errCtx = "fetching"

	ck, err := checker.New(
		hexdigest,
		checker.WithBlockSize(fe.blockSize),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf(
			"%s: creating %s: %w",
			errCtx, dir, err,
		)
	}

	tmp, err := os.CreateTemp(dir, ".fetch-*")
	if err != nil {
		return fmt.Errorf(
			"%s: creating temp file: %w",
			errCtx, err,
		)
	}

	tmpPath := tmp.Name()

	defer func() {
		if retErr != nil {
			tmp.Close()        //nolint:errcheck
			os.Remove(tmpPath) //nolint:errcheck
		}
	}()

	slog.Info(
		"downloading",
		"url", url,
		"hash", ck.HashName(),
	)

	if err := fe.download(ctx, url, tmp); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf(
			"%s: closing temp file: %w",
			errCtx, err,
		)
	}

	ok, err := ck.Check(tmpPath)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if !ok {
		actual, _ := ck.Sum()

		return fmt.Errorf(
			"%s: %w", errCtx,
			&MismatchError{
				URL:      url,
				HashName: ck.HashName(),
				Expected: hexdigest,
				Actual:   actual,
			},
		)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf(
			"%s: renaming into place: %w",
			errCtx, err,
		)
	}

	return nil
}

// download streams the HTTP response body into out.
func (fe *Fetcher) download(
	ctx context.Context,
	url string,
	out io.Writer,
) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, url, nil,
	)
	if err != nil {
		return fmt.Errorf(
			"building request: %w", err,
		)
	}

	resp, err := fe.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}

	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf(
			"get %s: unexpected status %s",
			url, resp.Status,
		)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf(
			"writing body: %w", err,
		)
	}

	return nil
}
