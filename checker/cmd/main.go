// Command verify checks files against expected hex digests. The
// hash algorithm is inferred from each digest's length. Digests come
// either from the -digest flag (applied to every file argument) or
// from a -manifest file verified against -dir.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/byte4ever/fetchcheck/checker"
	"github.com/byte4ever/fetchcheck/manifest"
	"github.com/byte4ever/fetchcheck/report"
)

var errVerificationFailed = errors.New(
	"verification failed",
)

func run() error {
	const errCtx = "verify"

	var (
		digest       string
		manifestPath string
		dir          string
		blockSize    int
		template     string
	)

	flag.StringVar(
		&digest, "digest", "",
		"expected hex digest for the file arguments",
	)

	flag.StringVar(
		&manifestPath, "manifest", "",
		"artifact manifest (.yaml, .yml or .json)",
	)

	flag.StringVar(
		&dir, "dir", ".",
		"directory holding the manifest artifacts",
	)

	flag.IntVar(
		&blockSize, "block-size",
		checker.DefaultBlockSize,
		"read chunk size in bytes",
	)

	flag.StringVar(
		&template, "template", "",
		"output template (default: built-in)",
	)

	flag.Parse()

	if (digest == "") == (manifestPath == "") {
		return fmt.Errorf(
			"%s: exactly one of --digest or"+
				" --manifest must be specified",
			errCtx,
		)
	}

	rn := &report.Renderer{Template: template}

	var results []report.Result

	switch {
	case digest != "":
		if flag.NArg() == 0 {
			return fmt.Errorf(
				"%s: no files to verify", errCtx,
			)
		}

		res, err := verifyFiles(
			digest, flag.Args(), blockSize,
		)
		if err != nil {
			return fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		results = res
	default:
		res, err := verifyManifest(
			manifestPath, dir, blockSize,
		)
		if err != nil {
			return fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		results = res
	}

	_, err := os.Stdout.WriteString(
		rn.RenderAll(results),
	)
	if err != nil {
		return fmt.Errorf(
			"%s: writing to stdout: %w",
			errCtx, err,
		)
	}

	for _, res := range results {
		if res.Err != nil || !res.Matched {
			return fmt.Errorf(
				"%s: %w",
				errCtx, errVerificationFailed,
			)
		}
	}

	return nil
}

// verifyFiles checks each file against one shared
// digest. The digest is lowercased first so uppercase
// manifests are accepted.
func verifyFiles(
	digest string,
	files []string,
	blockSize int,
) ([]report.Result, error) {
	ck, err := checker.New(
		strings.ToLower(digest),
		checker.WithBlockSize(blockSize),
	)
	if err != nil {
		return nil, err
	}

	results := make([]report.Result, 0, len(files))

	for _, pa := range files {
		res := report.Result{
			File:     pa,
			HashName: ck.HashName(),
			Expected: strings.ToLower(digest),
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

// verifyManifest loads a manifest and checks every
// artifact under dir.
func verifyManifest(
	manifestPath string,
	dir string,
	blockSize int,
) ([]report.Result, error) {
	mf, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	verified, err := manifest.VerifyDir(
		dir, mf, blockSize,
	)
	if err != nil {
		return nil, err
	}

	results := make(
		[]report.Result, 0, len(verified),
	)

	for _, vr := range verified {
		results = append(results, report.Result{
			File:     vr.Path,
			HashName: vr.HashName,
			Expected: vr.Artifact.Digest,
			Actual:   vr.Actual,
			Matched:  vr.Matched,
			Err:      vr.Err,
		})
	}

	return results, nil
}

func main() {
	if err := run(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
