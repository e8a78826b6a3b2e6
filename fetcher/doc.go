// Package fetcher downloads files over HTTP and verifies them
// against an expected hex digest before moving them into place.
package fetcher
