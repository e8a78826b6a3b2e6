// Package checker verifies files against expected hex digests. The
// hash algorithm is inferred from the digest's length, so callers
// holding only a digest string (e.g. from a package manifest) never
// need to name the algorithm themselves.
package checker
