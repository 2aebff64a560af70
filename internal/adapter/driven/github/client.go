// Package github implements the SourceVerifier port for GitHub-hosted
// sources using the go-github library.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/sherpadev/sherpa/internal/domain/model"
	"github.com/sherpadev/sherpa/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SourceVerifier = (*Verifier)(nil)

// Verifier checks GitHub source credentials. Transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
type Verifier struct {
	newClient func(token string) *gh.Client
}

// NewVerifier creates a Verifier that talks to api.github.com.
func NewVerifier() *Verifier {
	return &Verifier{
		newClient: func(token string) *gh.Client {
			cacheTransport := httpcache.NewMemoryCacheTransport()
			rateLimitClient := github_ratelimit.NewClient(cacheTransport)
			return gh.NewClient(rateLimitClient).WithAuthToken(token)
		},
	}
}

// NewVerifierWithHTTPClient creates a Verifier with a custom http.Client and
// base URL. This constructor is intended for testing, allowing injection of
// an httptest server.
func NewVerifierWithHTTPClient(httpClient *http.Client, baseURL string) (*Verifier, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	return &Verifier{
		newClient: func(token string) *gh.Client {
			client := gh.NewClient(httpClient).WithAuthToken(token)
			client.BaseURL = u
			return client
		},
	}, nil
}

// Verify confirms the source's PAT can read the configured repository. A 401
// or 404 from the API maps to driven.ErrUnauthorized: GitHub answers 404 for
// repositories a token cannot see, so the two are indistinguishable here.
func (v *Verifier) Verify(ctx context.Context, source model.Source) error {
	if source.PAT == "" {
		return fmt.Errorf("source %q: %w", source.Name, driven.ErrUnauthorized)
	}

	client := v.newClient(source.PAT)

	_, resp, err := client.Repositories.Get(ctx, source.Organization, source.Repository)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden) {
			return fmt.Errorf("source %q: %w", source.Name, driven.ErrUnauthorized)
		}
		return fmt.Errorf("verify source %q: %w", source.Name, err)
	}

	return nil
}
