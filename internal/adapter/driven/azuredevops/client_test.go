package azuredevops_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sherpadev/sherpa/internal/adapter/driven/azuredevops"
	"github.com/sherpadev/sherpa/internal/domain/model"
	"github.com/sherpadev/sherpa/internal/domain/port/driven"
)

func newTestVerifier(t *testing.T, handler http.Handler) *azuredevops.Verifier {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return azuredevops.NewVerifierWithHTTPClient(server.Client(), server.URL)
}

func azdoSource() model.Source {
	return model.Source{
		Name:         "main",
		Kind:         model.SourceKindAzureDevOps,
		Organization: "contoso",
		Project:      "platform",
		Repository:   "services",
		PAT:          "azdo-pat-xyz",
	}
}

func TestVerify_OK(t *testing.T) {
	var gotPath, gotAuth, gotVersion string
	verifier := newTestVerifier(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.URL.Query().Get("api-version")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "1", "name": "services"}`))
	}))

	err := verifier.Verify(context.Background(), azdoSource())
	require.NoError(t, err)
	assert.Equal(t, "/contoso/platform/_apis/git/repositories/services", gotPath)
	assert.Equal(t, "7.1", gotVersion)

	// PAT basic auth uses an empty username.
	wantCreds := base64.StdEncoding.EncodeToString([]byte(":azdo-pat-xyz"))
	require.True(t, strings.HasPrefix(gotAuth, "Basic "))
	assert.Equal(t, wantCreds, strings.TrimPrefix(gotAuth, "Basic "))
}

func TestVerify_Unauthorized(t *testing.T) {
	for _, status := range []int{
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound,
	} {
		verifier := newTestVerifier(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		err := verifier.Verify(context.Background(), azdoSource())
		assert.ErrorIs(t, err, driven.ErrUnauthorized, "status %d", status)
	}
}

func TestVerify_ServerError(t *testing.T) {
	verifier := newTestVerifier(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	err := verifier.Verify(context.Background(), azdoSource())
	require.Error(t, err)
	assert.NotErrorIs(t, err, driven.ErrUnauthorized)
}

func TestVerify_MissingPAT(t *testing.T) {
	verifier := newTestVerifier(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected when the PAT is missing")
	}))

	source := azdoSource()
	source.PAT = ""
	err := verifier.Verify(context.Background(), source)
	assert.ErrorIs(t, err, driven.ErrUnauthorized)
}

func TestVerify_ErrorNeverContainsPAT(t *testing.T) {
	verifier := newTestVerifier(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	err := verifier.Verify(context.Background(), azdoSource())
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "azdo-pat-xyz")
}
