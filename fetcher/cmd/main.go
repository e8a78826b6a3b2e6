// Command fetch downloads a file over HTTP and verifies it against
// an expected hex digest before moving it into place.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/byte4ever/fetchcheck/checker"
	"github.com/byte4ever/fetchcheck/fetcher"
)

func run() error {
	const errCtx = "fetch"

	var (
		url       string
		digest    string
		output    string
		timeout   time.Duration
		blockSize int
	)

	flag.StringVar(
		&url, "url", "",
		"URL to download",
	)

	flag.StringVar(
		&digest, "digest", "",
		"expected hex digest of the download",
	)

	flag.StringVar(
		&output, "output", "",
		"destination path (default: URL basename"+
			" in the current directory)",
	)

	flag.DurationVar(
		&timeout, "timeout",
		fetcher.DefaultTimeout,
		"download timeout",
	)

	flag.IntVar(
		&blockSize, "block-size",
		checker.DefaultBlockSize,
		"read chunk size used for verification",
	)

	flag.Parse()

	if url == "" {
		return fmt.Errorf(
			"%s: --url must be specified", errCtx,
		)
	}

	if digest == "" {
		return fmt.Errorf(
			"%s: --digest must be specified",
			errCtx,
		)
	}

	if output == "" {
		output = path.Base(url)
	}

	fe := fetcher.New(
		fetcher.WithTimeout(timeout),
		fetcher.WithBlockSize(blockSize),
	)

	err := fe.Fetch(
		context.Background(),
		url,
		output,
		strings.ToLower(digest),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Info(
		"verified download",
		"url", url,
		"output", output,
	)

	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
