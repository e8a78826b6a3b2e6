package gitlab

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/byte4ever/fetchcheck/release"
)

// Config holds the settings needed to create a GitLab
// release source.
type Config struct {
	// Host is the base URL of the GitLab instance
	// (e.g. "https://gitlab.com").
	Host string
	// Repo is the full project path
	// (e.g. "org/project").
	Repo string
	// AccessToken is a personal or project access
	// token used for authentication.
	AccessToken string
}

// Source lists release asset links on GitLab.
//
// Pattern: Strategy -- implements release.Source.
type Source struct {
	client *gl.Client
	repo   string
}

// NewSource validates cfg and returns a Source ready to
// list release assets.
func NewSource(cfg Config) (*Source, error) {
	const errCtx = "creating gitlab source"

	if cfg.AccessToken == "" {
		return nil, fmt.Errorf(
			"%s: access token must be set", errCtx,
		)
	}

	if cfg.Repo == "" {
		return nil, fmt.Errorf(
			"%s: repo must be set", errCtx,
		)
	}

	host := cfg.Host
	if host == "" {
		host = "https://gitlab.com"
	}

	client, err := gl.NewClient(
		cfg.AccessToken,
		gl.WithBaseURL(host),
	)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: new client: %w", errCtx, err,
		)
	}

	return &Source{
		client: client,
		repo:   cfg.Repo,
	}, nil
}

// Assets lists the asset links attached to the release
// of the given tag. GitLab publishes no digests for
// asset links, so Digest is always empty; digests come
// from a manifest or a checksums file instead.
func (s *Source) Assets(
	ctx context.Context,
	tag string,
) ([]release.Asset, error) {
	const errCtx = "listing gitlab release assets"

	rel, resp, err := s.client.Releases.GetRelease(
		s.repo, tag, gl.WithContext(ctx),
	)
	if err != nil {
		// Log the response body for debugging.
		if resp != nil && resp.Body != nil {
			defer resp.Body.Close() //nolint:errcheck

			rb, readErr := io.ReadAll(resp.Body)
			if readErr != nil {
				slog.Warn(
					"cannot read response body",
					"error", readErr,
				)
			} else {
				slog.Warn(
					"gitlab response",
					"body", string(rb),
				)
			}
		}

		return nil, fmt.Errorf(
			"%s: release %s: %w",
			errCtx, tag, err,
		)
	}

	var assets []release.Asset

	for _, link := range rel.Assets.Links {
		url := link.DirectAssetURL
		if url == "" {
			url = link.URL
		}

		assets = append(assets, release.Asset{
			Name: link.Name,
			URL:  url,
		})
	}

	return assets, nil
}
