package ports

import "errors"

var (
	// ErrNotFound reports that a looked-up resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists reports a create that raced with an existing
	// resource. Callers treat it as success and switch to update
	// semantics.
	ErrAlreadyExists = errors.New("already exists")

	// ErrCredentialMissing reports a missing hosting credential.
	// It is fatal for the whole run.
	ErrCredentialMissing = errors.New("hosting credential missing")
)
