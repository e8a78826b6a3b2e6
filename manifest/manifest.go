package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/byte4ever/fetchcheck/checker"
)

// Artifact is one entry of a manifest: a file to
// verify, its expected hex digest, and optionally the
// URL it was fetched from.
type Artifact struct {
	Name   string `json:"name"          yaml:"name"`
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`
	Digest string `json:"digest"        yaml:"digest"`
}

// Manifest is an ordered list of artifacts.
type Manifest struct {
	Artifacts []Artifact `json:"artifacts" yaml:"artifacts"`
}

// validate checks that every artifact has a name and a
// digest the registry can resolve.
func (mf *Manifest) validate() error {
	for i, ar := range mf.Artifacts {
		if ar.Name == "" {
			return fmt.Errorf(
				"artifact %d: name must be set", i,
			)
		}

		if _, err := checker.New(
			ar.Digest,
		); err != nil {
			return fmt.Errorf(
				"artifact %q: %w", ar.Name, err,
			)
		}
	}

	return nil
}

// ParseYAML reads one or more YAML manifest documents
// from in and merges their artifact lists in order.
func ParseYAML(in io.Reader) (*Manifest, error) {
	const errCtx = "parsing yaml manifest"

	decoder := yaml.NewDecoder(in)

	var merged Manifest

	for {
		var doc Manifest

		err := decoder.Decode(&doc)
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf(
				"%s: decoding yaml: %w",
				errCtx, err,
			)
		}

		merged.Artifacts = append(
			merged.Artifacts, doc.Artifacts...,
		)
	}

	if err := merged.validate(); err != nil {
		return nil, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	return &merged, nil
}

// ParseJSON reads a single JSON manifest object from
// raw bytes.
func ParseJSON(raw []byte) (*Manifest, error) {
	const errCtx = "parsing json manifest"

	var mf Manifest

	if err := json.Unmarshal(raw, &mf); err != nil {
		return nil, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	if err := mf.validate(); err != nil {
		return nil, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	return &mf, nil
}

// Load reads a manifest file, selecting the format by
// extension: .json is JSON, .yaml and .yml are YAML.
func Load(path string) (*Manifest, error) {
	const errCtx = "loading manifest"

	raw, err := os.ReadFile(path) //nolint:gosec // path is caller-provided by design
	if err != nil {
		return nil, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseJSON(raw)
	case ".yaml", ".yml":
		return ParseYAML(bytes.NewReader(raw))
	default:
		return nil, fmt.Errorf(
			"%s: unsupported extension %q",
			errCtx, filepath.Ext(path),
		)
	}
}

// Result is the outcome of verifying one artifact.
type Result struct {
	// Artifact is the manifest entry that was
	// verified.
	Artifact Artifact
	// Path is the file that was read.
	Path string
	// HashName is the algorithm selected by the
	// digest length.
	HashName string
	// Actual is the computed digest; empty when Err
	// is set.
	Actual string
	// Matched reports digest equality; meaningless
	// when Err is set.
	Matched bool
	// Err is a read failure, nil otherwise.
	Err error
}

// VerifyDir checks every artifact of mf against
// dir/<name>. It never stops early: each artifact gets
// a Result, read failures included. blockSize <= 0
// selects the default.
func VerifyDir(
	dir string,
	mf *Manifest,
	blockSize int,
) ([]Result, error) {
	const errCtx = "verifying directory"

	results := make([]Result, 0, len(mf.Artifacts))

	for _, ar := range mf.Artifacts {
		ck, err := checker.New(
			ar.Digest,
			checker.WithBlockSize(blockSize),
		)
		if err != nil {
			// Manifests are validated at parse
			// time, so this is caller misuse.
			return nil, fmt.Errorf(
				"%s: artifact %q: %w",
				errCtx, ar.Name, err,
			)
		}

		pa := filepath.Join(dir, ar.Name)

		res := Result{
			Artifact: ar,
			Path:     pa,
			HashName: ck.HashName(),
		}

		ok, err := ck.Check(pa)
		if err != nil {
			res.Err = err
		} else {
			res.Matched = ok
			res.Actual, _ = ck.Sum()
		}

		results = append(results, res)
	}

	return results, nil
}
