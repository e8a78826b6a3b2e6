package checker_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/byte4ever/fetchcheck/checker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, data []byte) string {
	t.Helper()

	pa := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(pa, data, 0o600))

	return pa
}

func TestNew_resolves_algorithm_by_length(t *testing.T) {
	t.Parallel()

	for _, al := range checker.Supported() {
		ck, err := checker.New(
			strings.Repeat("ab", al.Size()),
		)

		require.NoError(t, err)
		assert.Equal(t, al.Name(), ck.HashName())
		assert.Equal(t, al, ck.Algorithm())
	}
}

func TestNew_odd_length(t *testing.T) {
	t.Parallel()

	ck, err := checker.New("abc")

	assert.Nil(t, ck)
	require.ErrorIs(
		t, err, checker.ErrMalformedDigest,
	)
	assert.ErrorContains(t, err, "odd length 3")
}

func TestNew_non_hex(t *testing.T) {
	t.Parallel()

	// 32 chars, so the length alone would select
	// md5; the content must still be rejected.
	ck, err := checker.New(
		strings.Repeat("zz", 16),
	)

	assert.Nil(t, ck)
	assert.ErrorIs(
		t, err, checker.ErrMalformedDigest,
	)
}

func TestNew_unsupported_length(t *testing.T) {
	t.Parallel()

	// 10 bytes matches no supported algorithm.
	ck, err := checker.New(strings.Repeat("ab", 10))

	assert.Nil(t, ck)

	var ule *checker.UnsupportedLengthError

	require.ErrorAs(t, err, &ule)
	assert.Equal(t, 10, ule.DigestBytes)
	assert.ErrorContains(t, err, "10")
}

func TestCheck_known_md5_digest(t *testing.T) {
	t.Parallel()

	// md5("abc")
	ck, err := checker.New(
		"900150983cd24fb0d6963f7d28e17f72",
	)
	require.NoError(t, err)
	require.Equal(t, "md5", ck.HashName())

	pa := writeFile(t, []byte("abc"))

	ok, err := ck.Check(pa)

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheck_roundtrip_all_algorithms(t *testing.T) {
	t.Parallel()

	pa := writeFile(t, []byte("some content\n"))

	for _, al := range checker.Supported() {
		digest, err := checker.Checksum(al, pa, 0)
		require.NoError(t, err)

		ck, err := checker.New(digest)
		require.NoError(t, err)
		require.Equal(t, al.Name(), ck.HashName())

		ok, err := ck.Check(pa)

		require.NoError(t, err)
		assert.True(t, ok, al.Name())
	}
}

func TestCheck_is_idempotent(t *testing.T) {
	t.Parallel()

	pa := writeFile(t, []byte("stable content"))

	ck, err := checker.New(
		strings.Repeat("00", 32),
	)
	require.NoError(t, err)

	ok1, err := ck.Check(pa)
	require.NoError(t, err)

	sum1, has := ck.Sum()
	require.True(t, has)

	ok2, err := ck.Check(pa)
	require.NoError(t, err)

	sum2, has := ck.Sum()
	require.True(t, has)

	assert.Equal(t, ok1, ok2)
	assert.Equal(t, sum1, sum2)
}

func TestCheck_detects_modified_content(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pa := filepath.Join(dir, "data.bin")
	require.NoError(
		t, os.WriteFile(pa, []byte("abc"), 0o600),
	)

	expected, err := checker.Checksum(
		checker.SHA256, pa, 0,
	)
	require.NoError(t, err)

	ck, err := checker.New(expected)
	require.NoError(t, err)

	ok, err := ck.Check(pa)
	require.NoError(t, err)
	require.True(t, ok)

	priorSum, _ := ck.Sum()

	// Flip one byte and re-check.
	require.NoError(
		t, os.WriteFile(pa, []byte("abd"), 0o600),
	)

	ok, err = ck.Check(pa)
	require.NoError(t, err)
	assert.False(t, ok)

	sum, has := ck.Sum()
	require.True(t, has)
	assert.NotEqual(t, priorSum, sum)
}

func TestCheck_is_case_sensitive(t *testing.T) {
	t.Parallel()

	pa := writeFile(t, []byte("abc"))

	ck, err := checker.New(
		"900150983CD24FB0D6963F7D28E17F72",
	)
	require.NoError(t, err)

	ok, err := ck.Check(pa)

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheck_missing_file(t *testing.T) {
	t.Parallel()

	ck, err := checker.New(
		strings.Repeat("ab", 32),
	)
	require.NoError(t, err)

	ok, err := ck.Check(
		filepath.Join(t.TempDir(), "absent"),
	)

	assert.False(t, ok)

	var fe *checker.FileError

	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, has := ck.Sum()
	assert.False(t, has)
}

func TestCheck_failure_keeps_prior_sum(t *testing.T) {
	t.Parallel()

	pa := writeFile(t, []byte("abc"))

	ck, err := checker.New(
		"900150983cd24fb0d6963f7d28e17f72",
	)
	require.NoError(t, err)

	ok, err := ck.Check(pa)
	require.NoError(t, err)
	require.True(t, ok)

	prior, has := ck.Sum()
	require.True(t, has)

	_, err = ck.Check(
		filepath.Join(t.TempDir(), "absent"),
	)
	require.Error(t, err)

	sum, has := ck.Sum()
	assert.True(t, has)
	assert.Equal(t, prior, sum)
}

func TestChecksum_block_size_invariance(t *testing.T) {
	t.Parallel()

	data := make([]byte, 3000)
	for i := range data {
		data[i] = byte(i)
	}

	pa := writeFile(t, data)

	ref, err := checker.Checksum(
		checker.SHA256, pa, 1<<20,
	)
	require.NoError(t, err)

	for _, bs := range []int{1, 64, 1 << 20} {
		got, err := checker.Checksum(
			checker.SHA256, pa, bs,
		)

		require.NoError(t, err)
		assert.Equal(t, ref, got, "block size %d", bs)
	}
}

func TestChecksum_empty_file(t *testing.T) {
	t.Parallel()

	pa := writeFile(t, nil)

	got, err := checker.Checksum(
		checker.SHA256, pa, 0,
	)

	require.NoError(t, err)
	// sha256 of the empty input
	assert.Equal(
		t,
		"e3b0c44298fc1c149afbf4c8996fb924"+
			"27ae41e4649b934ca495991b7852b855",
		got,
	)
}

func TestSupported_sizes_are_distinct(t *testing.T) {
	t.Parallel()

	seen := make(map[int]checker.Algorithm)

	for _, al := range checker.Supported() {
		prev, dup := seen[al.Size()]
		require.False(
			t, dup,
			"size %d shared by %s and %s",
			al.Size(), prev.Name(), al.Name(),
		)

		seen[al.Size()] = al

		got, err := checker.ByDigestSize(al.Size())
		require.NoError(t, err)
		assert.Equal(t, al, got)
	}
}

func TestByDigestSize_unknown(t *testing.T) {
	t.Parallel()

	_, err := checker.ByDigestSize(17)

	var ule *checker.UnsupportedLengthError

	require.ErrorAs(t, err, &ule)
	assert.Equal(t, 17, ule.DigestBytes)
}

func FuzzChecksum(f *testing.F) {
	f.Add([]byte("hello"))
	f.Add([]byte(""))
	f.Add([]byte("\x00\xff"))

	f.Fuzz(func(t *testing.T, data []byte) {
		t.Parallel()

		dir := t.TempDir()
		pa := filepath.Join(dir, "fuzz.bin")
		require.NoError(
			t, os.WriteFile(pa, data, 0o600),
		)

		for _, al := range checker.Supported() {
			dg, err := checker.Checksum(al, pa, 64)

			require.NoError(t, err)
			assert.Len(t, dg, 2*al.Size())

			ck, err := checker.New(dg)
			require.NoError(t, err)

			ok, err := ck.Check(pa)
			require.NoError(t, err)
			assert.True(t, ok)
		}
	})
}
