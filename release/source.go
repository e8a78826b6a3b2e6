package release

import (
	"context"
	"fmt"
	"strings"
)

// Pattern: Strategy -- swap hosting platform without
// changing asset discovery logic.

// Asset is one downloadable release artifact.
type Asset struct {
	// Name is the artifact file name.
	Name string
	// URL is the direct download URL.
	URL string
	// Digest is the published hex digest, empty when
	// the platform publishes none.
	Digest string
}

// Source lists the release assets of a tag on a
// hosting platform.
type Source interface {
	Assets(
		ctx context.Context,
		tag string,
	) ([]Asset, error)
}

// SourceFunc adapts a plain function to the Source
// interface.
type SourceFunc func(
	ctx context.Context,
	tag string,
) ([]Asset, error)

// Assets delegates to the wrapped function.
func (f SourceFunc) Assets(
	ctx context.Context,
	tag string,
) ([]Asset, error) {
	return f(ctx, tag)
}

// ParseChecksums parses a sha256sum-style checksum
// manifest: one "<hex>  <name>" line per file, where
// the separator is whitespace and a leading '*' on the
// name (binary mode marker) is stripped. Blank lines
// and '#' comments are skipped. The digests are not
// validated here; the checker rejects unusable ones at
// verification time.
func ParseChecksums(
	text string,
) (map[string]string, error) {
	const errCtx = "parsing checksums"

	sums := make(map[string]string)

	for ln, line := range strings.Split(
		text, "\n",
	) {
		line = strings.TrimSpace(line)
		if line == "" ||
			strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf(
				"%s: line %d: expected"+
					" \"digest name\", got %q",
				errCtx, ln+1, line,
			)
		}

		name := strings.TrimPrefix(fields[1], "*")

		sums[name] = fields[0]
	}

	return sums, nil
}

// AttachDigests fills the Digest field of each asset
// from a name-to-digest map, leaving assets without an
// entry untouched.
func AttachDigests(
	assets []Asset,
	sums map[string]string,
) {
	for i := range assets {
		if dg, ok := sums[assets[i].Name]; ok {
			assets[i].Digest = dg
		}
	}
}
