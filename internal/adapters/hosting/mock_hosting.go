package hosting

import (
	"context"
	"fmt"

	"city-deployer-service/internal/ports"
)

type mockFile struct {
	Content []byte
	SHA     string
}

type mockRepo struct {
	Info         ports.RepoInfo
	Files        map[string]*mockFile
	PagesEnabled bool
}

// MockHosting is an in-memory hosting platform for tests. It versions
// file contents with incrementing SHAs and records the SHA passed to
// each conditional write.
type MockHosting struct {
	Login       string
	AuthErr     error
	Repos       map[string]*mockRepo
	CreateRaces int // CreateRepo calls that fail with ErrAlreadyExists first

	PutSHAs     []string
	PutPaths    []string
	CreateCalls int
	NetworkOps  int

	shaSeq int
}

func NewMockHosting(login string) *MockHosting {
	return &MockHosting{Login: login, Repos: map[string]*mockRepo{}}
}

func (m *MockHosting) AuthenticatedUser(ctx context.Context) (string, error) {
	if m.AuthErr != nil {
		return "", m.AuthErr
	}
	m.NetworkOps++
	return m.Login, nil
}

func (m *MockHosting) GetRepo(ctx context.Context, owner, name string) (ports.RepoInfo, error) {
	m.NetworkOps++
	repo, ok := m.Repos[name]
	if !ok {
		return ports.RepoInfo{}, fmt.Errorf("get repo %s/%s: %w", owner, name, ports.ErrNotFound)
	}
	return repo.Info, nil
}

func (m *MockHosting) CreateRepo(ctx context.Context, name, description string) (ports.RepoInfo, error) {
	m.NetworkOps++
	m.CreateCalls++

	if m.CreateRaces > 0 {
		m.CreateRaces--
		m.ensureRepo(name)
		return ports.RepoInfo{}, fmt.Errorf("create repo %q: %w", name, ports.ErrAlreadyExists)
	}
	if _, ok := m.Repos[name]; ok {
		return ports.RepoInfo{}, fmt.Errorf("create repo %q: %w", name, ports.ErrAlreadyExists)
	}

	repo := m.ensureRepo(name)
	return repo.Info, nil
}

func (m *MockHosting) GetFileSHA(ctx context.Context, owner, name, path string) (string, error) {
	m.NetworkOps++
	repo, ok := m.Repos[name]
	if !ok {
		return "", fmt.Errorf("get file %s: %w", path, ports.ErrNotFound)
	}
	f, ok := repo.Files[path]
	if !ok {
		return "", fmt.Errorf("get file %s: %w", path, ports.ErrNotFound)
	}
	return f.SHA, nil
}

func (m *MockHosting) PutFile(
	ctx context.Context,
	owner, name, path, message string,
	content []byte,
	sha string,
) error {
	m.NetworkOps++
	repo, ok := m.Repos[name]
	if !ok {
		return fmt.Errorf("put file %s: repo %q: %w", path, name, ports.ErrNotFound)
	}

	existing, exists := repo.Files[path]
	if exists && existing.SHA != sha {
		return fmt.Errorf("put file %s: sha mismatch (got %q, want %q)", path, sha, existing.SHA)
	}
	if !exists && sha != "" {
		return fmt.Errorf("put file %s: unexpected sha %q for new file", path, sha)
	}

	m.PutSHAs = append(m.PutSHAs, sha)
	m.PutPaths = append(m.PutPaths, path)

	m.shaSeq++
	repo.Files[path] = &mockFile{Content: content, SHA: fmt.Sprintf("sha-%d", m.shaSeq)}
	return nil
}

func (m *MockHosting) EnablePages(ctx context.Context, owner, name string) (string, error) {
	m.NetworkOps++
	repo, ok := m.Repos[name]
	if !ok {
		return "", fmt.Errorf("enable pages: repo %q: %w", name, ports.ErrNotFound)
	}
	repo.PagesEnabled = true
	return fmt.Sprintf("https://%s.github.io/%s/", m.Login, name), nil
}

func (m *MockHosting) ensureRepo(name string) *mockRepo {
	if repo, ok := m.Repos[name]; ok {
		return repo
	}
	repo := &mockRepo{
		Info: ports.RepoInfo{
			Owner:   m.Login,
			Name:    name,
			HTMLURL: fmt.Sprintf("https://github.com/%s/%s", m.Login, name),
		},
		Files: map[string]*mockFile{},
	}
	m.Repos[name] = repo
	return repo
}
