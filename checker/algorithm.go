package checker

import (
	"crypto/md5"  //nolint:gosec // legacy manifests still carry md5
	"crypto/sha1" //nolint:gosec // legacy manifests still carry sha1
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
)

// Algorithm identifies one of the supported hash
// functions. The set is closed; algorithm selection by
// digest size relies on every member having a distinct
// digest size.
type Algorithm int

const (
	// MD5 is the 16-byte legacy MD5 algorithm.
	MD5 Algorithm = iota
	// SHA1 is the 20-byte legacy SHA-1 algorithm.
	SHA1
	// SHA224 is the 28-byte SHA-224 algorithm.
	SHA224
	// SHA256 is the 32-byte SHA-256 algorithm.
	SHA256
	// SHA384 is the 48-byte SHA-384 algorithm.
	SHA384
	// SHA512 is the 64-byte SHA-512 algorithm.
	SHA512
)

// Name returns the stable lowercase name of the
// algorithm.
func (al Algorithm) Name() string {
	switch al {
	case MD5:
		return "md5"
	case SHA1:
		return "sha1"
	case SHA224:
		return "sha224"
	case SHA256:
		return "sha256"
	case SHA384:
		return "sha384"
	case SHA512:
		return "sha512"
	default:
		return "unknown"
	}
}

// Size returns the algorithm's raw digest size in bytes.
func (al Algorithm) Size() int {
	switch al {
	case MD5:
		return md5.Size
	case SHA1:
		return sha1.Size
	case SHA224:
		return sha256.Size224
	case SHA256:
		return sha256.Size
	case SHA384:
		return sha512.Size384
	case SHA512:
		return sha512.Size
	default:
		return 0
	}
}

// New returns fresh incremental hashing state for the
// algorithm.
func (al Algorithm) New() hash.Hash {
	switch al {
	case MD5:
		return md5.New() //nolint:gosec // selected by digest length
	case SHA1:
		return sha1.New() //nolint:gosec // selected by digest length
	case SHA224:
		return sha256.New224()
	case SHA256:
		return sha256.New()
	case SHA384:
		return sha512.New384()
	case SHA512:
		return sha512.New()
	default:
		panic(fmt.Sprintf(
			"unknown algorithm %d", int(al),
		))
	}
}

// supported lists the acceptable algorithms in
// preference order.
var supported = []Algorithm{
	MD5,
	SHA1,
	SHA224,
	SHA256,
	SHA384,
	SHA512,
}

// sizeIndex maps raw digest size to algorithm. Built
// once at init and never mutated afterwards.
var sizeIndex = func() map[int]Algorithm {
	idx := make(map[int]Algorithm, len(supported))

	for _, al := range supported {
		if _, dup := idx[al.Size()]; dup {
			// Two algorithms sharing a digest size
			// would make size-based selection
			// ambiguous.
			panic(fmt.Sprintf(
				"duplicate digest size %d",
				al.Size(),
			))
		}

		idx[al.Size()] = al
	}

	return idx
}()

// Supported returns the acceptable algorithms in
// preference order. The returned slice is a copy.
func Supported() []Algorithm {
	out := make([]Algorithm, len(supported))
	copy(out, supported)

	return out
}

// UnsupportedLengthError reports a digest byte length
// that matches no supported algorithm.
type UnsupportedLengthError struct {
	// DigestBytes is the unmatched length, in bytes.
	DigestBytes int
}

// Error describes the unmatched digest length.
func (e *UnsupportedLengthError) Error() string {
	return fmt.Sprintf(
		"no hash algorithm with digest size %d bytes",
		e.DigestBytes,
	)
}

// ByDigestSize returns the unique algorithm whose raw
// digest size equals n bytes.
func ByDigestSize(n int) (Algorithm, error) {
	al, ok := sizeIndex[n]
	if !ok {
		return 0, &UnsupportedLengthError{
			DigestBytes: n,
		}
	}

	return al, nil
}
