package checker

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// DefaultBlockSize is the default read chunk size for
// streaming checksums (1 MiB).
const DefaultBlockSize = 1 << 20

// ErrMalformedDigest reports an expected digest that is
// not valid even-length hex.
var ErrMalformedDigest = errors.New(
	"malformed hex digest",
)

// FileError reports an I/O failure while checksumming a
// file. It wraps the underlying cause.
type FileError struct {
	// Path is the file that could not be read.
	Path string
	// Err is the underlying I/O error.
	Err error
}

// Error describes the failed read.
func (e *FileError) Error() string {
	return fmt.Sprintf(
		"reading %s: %v", e.Path, e.Err,
	)
}

// Unwrap exposes the underlying I/O error.
func (e *FileError) Unwrap() error {
	return e.Err
}

// Checksum streams the file at path through a fresh
// hashing state of the given algorithm, reading
// blockSize bytes at a time, and returns the lowercase
// hex digest. Memory use is bounded by blockSize
// regardless of file size. A blockSize <= 0 falls back
// to DefaultBlockSize.
func Checksum(
	al Algorithm,
	path string,
	blockSize int,
) (result string, retErr error) {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	fi, err := os.Open(path) //nolint:gosec // path is caller-provided by design
	if err != nil {
		return "", &FileError{Path: path, Err: err}
	}

	defer func() {
		if closeErr := fi.Close(); closeErr != nil &&
			retErr == nil {
			retErr = &FileError{
				Path: path,
				Err:  closeErr,
			}
		}
	}()

	ha := al.New()
	buf := make([]byte, blockSize)

	for {
		nr, err := fi.Read(buf)
		if nr > 0 {
			// hash.Hash writes never fail.
			ha.Write(buf[:nr]) //nolint:errcheck
		}

		if err == io.EOF {
			break
		}

		if err != nil {
			return "", &FileError{
				Path: path,
				Err:  err,
			}
		}
	}

	return hex.EncodeToString(ha.Sum(nil)), nil
}

// Checker verifies files against one expected hex
// digest. The algorithm is resolved once, at
// construction, from the digest's byte length (e.g. 32
// hex characters select md5). After a Check, the actual
// digest is available from Sum for error reporting.
//
// A Checker must not be shared between goroutines;
// distinct Checkers are independent.
type Checker struct {
	hexdigest string
	algorithm Algorithm
	blockSize int
	sum       string
	hasSum    bool
}

// Option configures a Checker.
type Option func(*Checker)

// WithBlockSize sets the read chunk size used while
// checksumming. It trades memory for read performance
// and never affects the resulting digest. The default
// is DefaultBlockSize.
func WithBlockSize(n int) Option {
	return func(ck *Checker) {
		ck.blockSize = n
	}
}

// New returns a Checker for the given expected hex
// digest. The digest must be valid lowercase or
// uppercase hex of even length; comparison in Check is
// case-sensitive, so callers wanting case-insensitive
// matching must lowercase the digest themselves first.
func New(hexdigest string, opts ...Option) (*Checker, error) {
	const errCtx = "creating checker"

	// Reject odd length explicitly: truncating
	// len/2 would alias a malformed digest to a
	// shorter algorithm.
	if len(hexdigest)%2 != 0 {
		return nil, fmt.Errorf(
			"%s: odd length %d: %w",
			errCtx, len(hexdigest),
			ErrMalformedDigest,
		)
	}

	if _, err := hex.DecodeString(
		hexdigest,
	); err != nil {
		return nil, fmt.Errorf(
			"%s: %w", errCtx, ErrMalformedDigest,
		)
	}

	al, err := ByDigestSize(len(hexdigest) / 2)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	ck := &Checker{
		hexdigest: hexdigest,
		algorithm: al,
		blockSize: DefaultBlockSize,
	}

	for _, opt := range opts {
		opt(ck)
	}

	return ck, nil
}

// Algorithm returns the algorithm resolved from the
// expected digest's length.
func (ck *Checker) Algorithm() Algorithm {
	return ck.algorithm
}

// HashName returns the name of the resolved algorithm.
func (ck *Checker) HashName() string {
	return ck.algorithm.Name()
}

// Check reads the file at path and compares its digest
// against the expected one. It returns true on an exact
// match and false on a completed comparison that
// differs; an I/O failure is reported as an error,
// never as false. The computed digest is retained for
// Sum on success and left untouched on failure.
func (ck *Checker) Check(path string) (bool, error) {
	actual, err := Checksum(
		ck.algorithm, path, ck.blockSize,
	)
	if err != nil {
		return false, err
	}

	ck.sum = actual
	ck.hasSum = true

	return actual == ck.hexdigest, nil
}

// Sum returns the digest computed by the most recent
// successful Check. The second result is false if no
// Check has completed yet.
func (ck *Checker) Sum() (string, bool) {
	return ck.sum, ck.hasSum
}
