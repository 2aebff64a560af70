// Package azuredevops implements the SourceVerifier port for Azure DevOps
// sources against the Azure DevOps REST API.
package azuredevops

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/sherpadev/sherpa/internal/domain/model"
	"github.com/sherpadev/sherpa/internal/domain/port/driven"
)

const apiVersion = "7.1"

// Compile-time interface satisfaction check.
var _ driven.SourceVerifier = (*Verifier)(nil)

// Verifier checks Azure DevOps source credentials by probing the Git
// repository endpoint with PAT basic auth. Responses are cached with an
// in-memory ETag cache so repeated verifications of the same source are
// conditional requests.
type Verifier struct {
	httpClient *http.Client
	baseURL    string
}

// NewVerifier creates a Verifier that talks to dev.azure.com.
func NewVerifier() *Verifier {
	return &Verifier{
		httpClient: &http.Client{
			Transport: httpcache.NewMemoryCacheTransport(),
			Timeout:   15 * time.Second,
			// Do not follow the sign-in redirect Azure DevOps issues for
			// anonymous requests; the 302 itself is the signal.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		baseURL: "https://dev.azure.com",
	}
}

// NewVerifierWithHTTPClient creates a Verifier with a custom http.Client and
// base URL. This constructor is intended for testing, allowing injection of
// an httptest server.
func NewVerifierWithHTTPClient(httpClient *http.Client, baseURL string) *Verifier {
	return &Verifier{httpClient: httpClient, baseURL: baseURL}
}

// Verify confirms the source's PAT can read the configured repository.
// Azure DevOps answers 401 for bad tokens and 404 for repositories the token
// cannot see; both map to driven.ErrUnauthorized. A 302 to the sign-in page
// (Azure DevOps's response to anonymous requests) is treated the same way.
func (v *Verifier) Verify(ctx context.Context, source model.Source) error {
	if source.PAT == "" {
		return fmt.Errorf("source %q: %w", source.Name, driven.ErrUnauthorized)
	}

	endpoint := fmt.Sprintf("%s/%s/%s/_apis/git/repositories/%s?api-version=%s",
		v.baseURL,
		url.PathEscape(source.Organization),
		url.PathEscape(source.Project),
		url.PathEscape(source.Repository),
		apiVersion,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("verify source %q: %w", source.Name, err)
	}
	// Azure DevOps PAT auth is basic auth with an empty username.
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(":"+source.PAT)))
	req.Header.Set("Accept", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("verify source %q: %w", source.Name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusNotFound,
		resp.StatusCode == http.StatusFound:
		return fmt.Errorf("source %q: %w", source.Name, driven.ErrUnauthorized)
	default:
		return fmt.Errorf("verify source %q: unexpected status %d", source.Name, resp.StatusCode)
	}
}
