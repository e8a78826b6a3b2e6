// Package github lists GitHub release assets and resolves their
// digests from a checksums asset published with the release.
package github
