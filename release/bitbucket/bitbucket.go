package bitbucket

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/byte4ever/fetchcheck/release"
)

// Config holds the settings needed to create a
// Bitbucket downloads source.
type Config struct {
	// APIEndpoint is the full Bitbucket Cloud REST
	// API URL for the repository's downloads (e.g.
	// "https://api.bitbucket.org/2.0/repositories/
	// ws/repo/downloads").
	APIEndpoint string
	// User is the Bitbucket API username.
	User string
	// Password is the Bitbucket API app password.
	Password string
}

// Source lists repository downloads on Bitbucket
// Cloud.
//
// Pattern: Strategy -- implements release.Source.
type Source struct {
	endpoint string
	user     string
	password string
}

type link struct {
	Href string `json:"href,omitempty"`
}

type links struct {
	Self link `json:"self"`
}

type download struct {
	Name  string `json:"name,omitempty"`
	Links links  `json:"links"`
}

type downloadsPage struct {
	Values []download `json:"values"`
	Next   string     `json:"next,omitempty"`
}

// NewSource validates cfg and returns a Source ready to
// list downloads.
func NewSource(cfg Config) (*Source, error) {
	const errCtx = "creating bitbucket source"

	if cfg.APIEndpoint == "" {
		return nil, fmt.Errorf(
			"%s: api endpoint must be set",
			errCtx,
		)
	}

	if cfg.User == "" {
		return nil, fmt.Errorf(
			"%s: user must be set", errCtx,
		)
	}

	if cfg.Password == "" {
		return nil, fmt.Errorf(
			"%s: password must be set", errCtx,
		)
	}

	return &Source{
		endpoint: cfg.APIEndpoint,
		user:     cfg.User,
		password: cfg.Password,
	}, nil
}

// Assets lists the repository's downloads, following
// pagination. Bitbucket downloads carry no tag or
// digest metadata, so a non-empty tag filters by name
// prefix and Digest is always empty.
func (s *Source) Assets(
	ctx context.Context,
	tag string,
) ([]release.Asset, error) {
	const errCtx = "listing bitbucket downloads"

	var assets []release.Asset

	next := s.endpoint

	for next != "" {
		page, err := s.fetchPage(ctx, next)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		for _, dl := range page.Values {
			if tag != "" && !strings.HasPrefix(
				dl.Name, tag,
			) {
				continue
			}

			assets = append(assets, release.Asset{
				Name: dl.Name,
				URL:  dl.Links.Self.Href,
			})
		}

		next = page.Next
	}

	return assets, nil
}

// fetchPage retrieves and decodes one page of the
// downloads listing.
func (s *Source) fetchPage(
	ctx context.Context,
	url string,
) (*downloadsPage, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, url, nil,
	)
	if err != nil {
		return nil, fmt.Errorf(
			"build request: %w", err,
		)
	}

	req.SetBasicAuth(s.user, s.password)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf(
			"send request: %w", err,
		)
	}

	defer resp.Body.Close() //nolint:errcheck

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf(
			"read response: %w", err,
		)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Warn(
			"bitbucket response",
			"status", resp.Status,
			"body", string(rb),
		)

		return nil, fmt.Errorf(
			"unexpected status %d",
			resp.StatusCode,
		)
	}

	var page downloadsPage

	if err := json.Unmarshal(rb, &page); err != nil {
		return nil, fmt.Errorf(
			"decode response: %w", err,
		)
	}

	return &page, nil
}
