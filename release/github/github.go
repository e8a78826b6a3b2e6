package github

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	gh "github.com/google/go-github/v68/github"

	"github.com/byte4ever/fetchcheck/release"
)

// Config holds the settings needed to create a GitHub
// release source.
type Config struct {
	// RepoOwner is the GitHub user or organisation
	// that owns the repository.
	RepoOwner string
	// Repo is the repository name (without owner).
	Repo string
	// AccessToken is a personal access token or
	// GitHub App token. Leave empty for anonymous
	// access to public repositories.
	AccessToken string
	// EnterpriseHost is an optional GitHub Enterprise
	// hostname (e.g. "git.corp.example.com"). Leave
	// empty for github.com.
	EnterpriseHost string
	// ChecksumAsset is the name of a release asset
	// holding sha256sum-style digest lines (e.g.
	// "SHA256SUMS"). When set, its contents are
	// fetched and the digests attached to the other
	// assets. Leave empty to skip digest resolution.
	ChecksumAsset string
}

// Source lists release assets on GitHub.
//
// Pattern: Strategy -- implements release.Source.
type Source struct {
	client        *gh.Client
	repoOwner     string
	repo          string
	checksumAsset string
}

// NewSource validates cfg and returns a Source ready to
// list release assets.
func NewSource(cfg Config) (*Source, error) {
	const errCtx = "creating github source"

	if cfg.RepoOwner == "" {
		return nil, fmt.Errorf(
			"%s: repo owner must be set", errCtx,
		)
	}

	if cfg.Repo == "" {
		return nil, fmt.Errorf(
			"%s: repo must be set", errCtx,
		)
	}

	client := gh.NewClient(nil)
	if cfg.AccessToken != "" {
		client = client.WithAuthToken(
			cfg.AccessToken,
		)
	}

	if cfg.EnterpriseHost != "" {
		baseURL := "https://" +
			cfg.EnterpriseHost + "/api/v3/"
		uploadURL := "https://" +
			cfg.EnterpriseHost + "/api/uploads/"

		var err error

		client, err = client.WithEnterpriseURLs(
			baseURL, uploadURL,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: enterprise urls: %w",
				errCtx, err,
			)
		}
	}

	return &Source{
		client:        client,
		repoOwner:     cfg.RepoOwner,
		repo:          cfg.Repo,
		checksumAsset: cfg.ChecksumAsset,
	}, nil
}

// Assets lists the release assets of the given tag.
// When a checksum asset is configured it is fetched,
// parsed, and its digests attached to the returned
// assets; the checksum asset itself is not returned.
func (s *Source) Assets(
	ctx context.Context,
	tag string,
) ([]release.Asset, error) {
	const errCtx = "listing github release assets"

	rel, resp, err := s.client.Repositories.
		GetReleaseByTag(
			ctx, s.repoOwner, s.repo, tag,
		)
	if err != nil {
		logResponseBody(resp, "github response")

		return nil, fmt.Errorf(
			"%s: release %s: %w",
			errCtx, tag, err,
		)
	}

	var (
		assets     []release.Asset
		checksumID int64
	)

	for _, as := range rel.Assets {
		if s.checksumAsset != "" &&
			as.GetName() == s.checksumAsset {
			checksumID = as.GetID()

			continue
		}

		assets = append(assets, release.Asset{
			Name: as.GetName(),
			URL:  as.GetBrowserDownloadURL(),
		})
	}

	if checksumID == 0 {
		if s.checksumAsset != "" {
			slog.Warn(
				"checksum asset not found",
				"asset", s.checksumAsset,
				"tag", tag,
			)
		}

		return assets, nil
	}

	sums, err := s.fetchChecksums(ctx, checksumID)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	release.AttachDigests(assets, sums)

	return assets, nil
}

// fetchChecksums downloads and parses the checksum
// asset.
func (s *Source) fetchChecksums(
	ctx context.Context,
	assetID int64,
) (map[string]string, error) {
	rc, _, err := s.client.Repositories.
		DownloadReleaseAsset(
			ctx, s.repoOwner, s.repo, assetID,
			http.DefaultClient,
		)
	if err != nil {
		return nil, fmt.Errorf(
			"downloading checksum asset: %w", err,
		)
	}

	defer rc.Close() //nolint:errcheck

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf(
			"reading checksum asset: %w", err,
		)
	}

	return release.ParseChecksums(string(raw))
}

// logResponseBody logs an API response body for
// debugging.
func logResponseBody(resp *gh.Response, msg string) {
	if resp == nil || resp.Body == nil {
		return
	}

	defer resp.Body.Close() //nolint:errcheck

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Warn(
			"cannot read response body",
			"error", err,
		)

		return
	}

	slog.Warn(msg, "body", string(rb))
}
