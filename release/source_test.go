package release_test

import (
	"context"
	"testing"

	"github.com/byte4ever/fetchcheck/release"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChecksums_valid(t *testing.T) {
	t.Parallel()

	sums, err := release.ParseChecksums(
		"# release v1.2.3\n" +
			"aabbcc  pkg-linux.tar.gz\n" +
			"ddeeff *pkg-darwin.tar.gz\n" +
			"\n",
	)

	require.NoError(t, err)
	assert.Equal(
		t,
		map[string]string{
			"pkg-linux.tar.gz":  "aabbcc",
			"pkg-darwin.tar.gz": "ddeeff",
		},
		sums,
	)
}

func TestParseChecksums_malformed_line(t *testing.T) {
	t.Parallel()

	sums, err := release.ParseChecksums(
		"aabbcc  pkg.tar.gz\njunk\n",
	)

	assert.Nil(t, sums)
	assert.ErrorContains(t, err, "line 2")
}

func TestAttachDigests(t *testing.T) {
	t.Parallel()

	assets := []release.Asset{
		{Name: "a.tar.gz"},
		{Name: "b.tar.gz"},
	}

	release.AttachDigests(assets, map[string]string{
		"a.tar.gz": "aabbcc",
		"c.tar.gz": "ffffff",
	})

	assert.Equal(t, "aabbcc", assets[0].Digest)
	assert.Empty(t, assets[1].Digest)
}

func TestSourceFunc_delegates(t *testing.T) {
	t.Parallel()

	src := release.SourceFunc(func(
		_ context.Context,
		tag string,
	) ([]release.Asset, error) {
		return []release.Asset{{Name: tag}}, nil
	})

	assets, err := src.Assets(
		context.Background(), "v1.0.0",
	)

	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "v1.0.0", assets[0].Name)
}
