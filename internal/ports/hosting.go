package ports

import "context"

// RepoInfo describes an existing destination repository.
type RepoInfo struct {
	Owner   string
	Name    string
	HTMLURL string
}

// Hosting is the contract for the hosting platform API.
//
// Lookups return ErrNotFound for absent resources; CreateRepo returns
// ErrAlreadyExists when creation races with an existing repository.
type Hosting interface {
	// AuthenticatedUser returns the login of the credential owner.
	AuthenticatedUser(ctx context.Context) (string, error)

	GetRepo(ctx context.Context, owner, name string) (RepoInfo, error)
	CreateRepo(ctx context.Context, name, description string) (RepoInfo, error)

	// GetFileSHA returns the current content version token for a file,
	// required for conditional updates.
	GetFileSHA(ctx context.Context, owner, name, path string) (string, error)

	// PutFile creates the file when sha is empty and updates it
	// conditionally otherwise.
	PutFile(ctx context.Context, owner, name, path, message string, content []byte, sha string) error

	// EnablePages requests public serving for the repository and returns
	// the serving URL when known. Already-enabled is success.
	EnablePages(ctx context.Context, owner, name string) (string, error)
}
