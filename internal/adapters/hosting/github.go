package hosting

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"city-deployer-service/internal/platform/httpretry"
	"city-deployer-service/internal/ports"
)

const defaultGitHubURL = "https://api.github.com"

// GitHubHosting implements ports.Hosting against the GitHub REST API:
// repository lookup/creation, conditional file writes via content SHAs,
// and Pages enablement.
type GitHubHosting struct {
	session   *http.Client
	baseURL   string
	token     string
	userAgent string
}

// NewGitHubHosting validates the credential before any network call.
// An empty token is ports.ErrCredentialMissing and fatal for the run.
func NewGitHubHosting(token, userAgent string, timeout time.Duration) (*GitHubHosting, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ports.ErrCredentialMissing
	}
	if userAgent == "" {
		return nil, errors.New("github: user agent is empty")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &GitHubHosting{
		session:   &http.Client{Timeout: timeout},
		baseURL:   defaultGitHubURL,
		token:     token,
		userAgent: userAgent,
	}, nil
}

func (g *GitHubHosting) makeReq(
	ctx context.Context,
	method, path string,
	body []byte,
) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "token "+g.token)
		req.Header.Set("Accept", "application/vnd.github.v3+json")
		req.Header.Set("User-Agent", g.userAgent)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return req, nil
	}
}

type userResponse struct {
	Login string `json:"login"`
}

// AuthenticatedUser returns the login owning the credential.
func (g *GitHubHosting) AuthenticatedUser(ctx context.Context) (string, error) {
	resp, err := httpretry.DoWithRetry(ctx, g.session, g.makeReq(ctx, http.MethodGet, "/user", nil))
	if err != nil {
		return "", fmt.Errorf("github authenticated user: %w", err)
	}
	defer resp.Body.Close()

	var decoded userResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("github authenticated user: decode response: %w", err)
	}
	if decoded.Login == "" {
		return "", errors.New("github authenticated user: empty login")
	}
	return decoded.Login, nil
}

type repoResponse struct {
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
	Owner   struct {
		Login string `json:"login"`
	} `json:"owner"`
}

func (g *GitHubHosting) GetRepo(ctx context.Context, owner, name string) (ports.RepoInfo, error) {
	path := fmt.Sprintf("/repos/%s/%s", url.PathEscape(owner), url.PathEscape(name))

	resp, err := httpretry.DoWithRetry(ctx, g.session, g.makeReq(ctx, http.MethodGet, path, nil))
	if err != nil {
		var se *httpretry.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return ports.RepoInfo{}, fmt.Errorf("github get repo %s/%s: %w", owner, name, ports.ErrNotFound)
		}
		return ports.RepoInfo{}, fmt.Errorf("github get repo %s/%s: %w", owner, name, err)
	}
	defer resp.Body.Close()

	var decoded repoResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.RepoInfo{}, fmt.Errorf("github get repo %s/%s: decode response: %w", owner, name, err)
	}

	return ports.RepoInfo{Owner: decoded.Owner.Login, Name: decoded.Name, HTMLURL: decoded.HTMLURL}, nil
}

func (g *GitHubHosting) CreateRepo(ctx context.Context, name, description string) (ports.RepoInfo, error) {
	body, err := json.Marshal(map[string]any{
		"name":        name,
		"description": description,
		"private":     false,
		"has_wiki":    false,
		"auto_init":   true,
	})
	if err != nil {
		return ports.RepoInfo{}, fmt.Errorf("github create repo %q: marshal body: %w", name, err)
	}

	resp, err := httpretry.DoWithRetry(ctx, g.session, g.makeReq(ctx, http.MethodPost, "/user/repos", body))
	if err != nil {
		var se *httpretry.StatusError
		// 422 "name already exists" is a create/create race; the caller
		// switches to update semantics.
		if errors.As(err, &se) && se.Code == http.StatusUnprocessableEntity &&
			strings.Contains(se.Body, "already exists") {
			return ports.RepoInfo{}, fmt.Errorf("github create repo %q: %w", name, ports.ErrAlreadyExists)
		}
		return ports.RepoInfo{}, fmt.Errorf("github create repo %q: %w", name, err)
	}
	defer resp.Body.Close()

	var decoded repoResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.RepoInfo{}, fmt.Errorf("github create repo %q: decode response: %w", name, err)
	}

	return ports.RepoInfo{Owner: decoded.Owner.Login, Name: decoded.Name, HTMLURL: decoded.HTMLURL}, nil
}

type contentResponse struct {
	SHA string `json:"sha"`
}

func (g *GitHubHosting) GetFileSHA(ctx context.Context, owner, name, path string) (string, error) {
	reqPath := fmt.Sprintf("/repos/%s/%s/contents/%s",
		url.PathEscape(owner), url.PathEscape(name), escapePath(path))

	resp, err := httpretry.DoWithRetry(ctx, g.session, g.makeReq(ctx, http.MethodGet, reqPath, nil))
	if err != nil {
		var se *httpretry.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return "", fmt.Errorf("github get file %s/%s/%s: %w", owner, name, path, ports.ErrNotFound)
		}
		return "", fmt.Errorf("github get file %s/%s/%s: %w", owner, name, path, err)
	}
	defer resp.Body.Close()

	var decoded contentResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("github get file %s/%s/%s: decode response: %w", owner, name, path, err)
	}
	return decoded.SHA, nil
}

// PutFile creates the file when sha is empty, otherwise performs a
// conditional update against that content version.
func (g *GitHubHosting) PutFile(
	ctx context.Context,
	owner, name, path, message string,
	content []byte,
	sha string,
) error {
	payload := map[string]any{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
		"branch":  "main",
	}
	if sha != "" {
		payload["sha"] = sha
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("github put file %s/%s/%s: marshal body: %w", owner, name, path, err)
	}

	reqPath := fmt.Sprintf("/repos/%s/%s/contents/%s",
		url.PathEscape(owner), url.PathEscape(name), escapePath(path))

	resp, err := httpretry.DoWithRetry(ctx, g.session, g.makeReq(ctx, http.MethodPut, reqPath, body))
	if err != nil {
		return fmt.Errorf("github put file %s/%s/%s: %w", owner, name, path, err)
	}
	resp.Body.Close()
	return nil
}

type pagesResponse struct {
	HTMLURL string `json:"html_url"`
}

// EnablePages requests Pages serving from the main branch root. A 409
// means Pages is already configured; the configuration is refreshed with
// a PUT and treated as success.
func (g *GitHubHosting) EnablePages(ctx context.Context, owner, name string) (string, error) {
	path := fmt.Sprintf("/repos/%s/%s/pages", url.PathEscape(owner), url.PathEscape(name))

	body, err := json.Marshal(map[string]any{
		"source": map[string]string{"branch": "main", "path": "/"},
	})
	if err != nil {
		return "", fmt.Errorf("github enable pages %s/%s: marshal body: %w", owner, name, err)
	}

	resp, err := httpretry.DoWithRetry(ctx, g.session, g.makeReq(ctx, http.MethodPost, path, body))
	if err != nil {
		var se *httpretry.StatusError
		if errors.As(err, &se) && se.Code == http.StatusConflict {
			putResp, putErr := httpretry.DoWithRetry(ctx, g.session, g.makeReq(ctx, http.MethodPut, path, body))
			if putErr != nil {
				return "", fmt.Errorf("github update pages %s/%s: %w", owner, name, putErr)
			}
			putResp.Body.Close()
		} else {
			return "", fmt.Errorf("github enable pages %s/%s: %w", owner, name, err)
		}
	} else {
		resp.Body.Close()
	}

	getResp, err := httpretry.DoWithRetry(ctx, g.session, g.makeReq(ctx, http.MethodGet, path, nil))
	if err != nil {
		// Pages can lag behind enablement; the URL is informational.
		return "", nil
	}
	defer getResp.Body.Close()

	var decoded pagesResponse
	if err := json.NewDecoder(getResp.Body).Decode(&decoded); err != nil {
		return "", nil
	}
	return decoded.HTMLURL, nil
}

// escapePath escapes each path segment while keeping separators.
func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
