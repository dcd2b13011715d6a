package hosting

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"city-deployer-service/internal/ports"
)

func newTestHosting(t *testing.T, srv *httptest.Server) *GitHubHosting {
	t.Helper()
	g, err := NewGitHubHosting("test-token", "city-deployer/test", time.Second)
	require.NoError(t, err)
	g.baseURL = srv.URL
	return g
}

func TestNewGitHubHostingRejectsEmptyToken(t *testing.T) {
	_, err := NewGitHubHosting("   ", "city-deployer/test", time.Second)
	assert.ErrorIs(t, err, ports.ErrCredentialMissing)
}

func TestAuthenticatedUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		assert.Equal(t, "token test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github.v3+json", r.Header.Get("Accept"))
		w.Write([]byte(`{"login": "TitanBusinessPros"}`))
	}))
	defer srv.Close()

	g := newTestHosting(t, srv)
	login, err := g.AuthenticatedUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "TitanBusinessPros", login)
}

func TestGetRepoMapsMissingToNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Not Found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	g := newTestHosting(t, srv)
	_, err := g.GetRepo(context.Background(), "TitanBusinessPros", "The-Dallas-Software-Guild")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestCreateRepoMapsNameTakenToAlreadyExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors": [{"message": "name already exists on this account"}]}`,
			http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	g := newTestHosting(t, srv)
	_, err := g.CreateRepo(context.Background(), "The-Dallas-Software-Guild", "hub")
	assert.ErrorIs(t, err, ports.ErrAlreadyExists)
}

func TestPutFilePayload(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/repos/TitanBusinessPros/The-Dallas-Software-Guild/contents/index.html", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Write([]byte(`{"content": {"sha": "new-sha"}}`))
	}))
	defer srv.Close()

	g := newTestHosting(t, srv)
	err := g.PutFile(context.Background(),
		"TitanBusinessPros", "The-Dallas-Software-Guild", "index.html",
		"Redeploy site content for Dallas", []byte("<html></html>"), "old-sha")
	require.NoError(t, err)

	assert.Equal(t, "Redeploy site content for Dallas", payload["message"])
	assert.Equal(t, "main", payload["branch"])
	assert.Equal(t, "old-sha", payload["sha"])

	decoded, err := base64.StdEncoding.DecodeString(payload["content"].(string))
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(decoded))
}

func TestPutFileOmitsSHAForNewFile(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Write([]byte(`{"content": {"sha": "new-sha"}}`))
	}))
	defer srv.Close()

	g := newTestHosting(t, srv)
	err := g.PutFile(context.Background(),
		"TitanBusinessPros", "The-Dallas-Software-Guild", ".nojekyll",
		"Deploy site content for Dallas", nil, "")
	require.NoError(t, err)
	assert.NotContains(t, payload, "sha")
}

func TestEnablePagesFallsBackToUpdateOnConflict(t *testing.T) {
	var methods []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		switch r.Method {
		case http.MethodPost:
			http.Error(w, `{"message": "already enabled"}`, http.StatusConflict)
		case http.MethodPut:
			w.Write([]byte(`{}`))
		case http.MethodGet:
			w.Write([]byte(`{"html_url": "https://titanbusinesspros.github.io/The-Dallas-Software-Guild/"}`))
		}
	}))
	defer srv.Close()

	g := newTestHosting(t, srv)
	pagesURL, err := g.EnablePages(context.Background(), "TitanBusinessPros", "The-Dallas-Software-Guild")
	require.NoError(t, err)
	assert.Equal(t, "https://titanbusinesspros.github.io/The-Dallas-Software-Guild/", pagesURL)
	assert.Equal(t, []string{http.MethodPost, http.MethodPut, http.MethodGet}, methods)
}
