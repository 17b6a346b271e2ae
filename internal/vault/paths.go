package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/iudanet/cvvault/internal/crypto"
	"github.com/iudanet/cvvault/internal/validation"
)

const (
	// DirPrefixLen is the number of PIN hash characters naming a user directory
	DirPrefixLen = 12
	// FileExt is the extension of envelope files
	FileExt = ".json"
)

// Resolver maps PIN hashes and document ids to filesystem paths.
// It never creates anything on disk.
type Resolver struct {
	root string
}

// NewResolver creates a resolver rooted at the vault directory
func NewResolver(root string) *Resolver {
	return &Resolver{root: root}
}

// Root returns the vault root directory
func (r *Resolver) Root() string {
	return r.root
}

// UserDir returns the directory holding the envelopes of pinHash
func (r *Resolver) UserDir(pinHash string) (string, error) {
	if !crypto.IsPinHash(pinHash) {
		return "", fmt.Errorf("invalid pin hash")
	}
	return filepath.Join(r.root, pinHash[:DirPrefixLen]), nil
}

// FilePath returns the envelope path of document id
func (r *Resolver) FilePath(pinHash, id string) (string, error) {
	dir, err := r.UserDir(pinHash)
	if err != nil {
		return "", err
	}
	if err := validation.ValidateDocumentID(id); err != nil {
		return "", err
	}
	return filepath.Join(dir, id+FileExt), nil
}

// Exists reports whether the envelope of document id is present
func (r *Resolver) Exists(pinHash, id string) (bool, error) {
	path, err := r.FilePath(pinHash, id)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}

	return info.Mode().IsRegular(), nil
}
