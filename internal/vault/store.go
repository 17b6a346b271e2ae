package vault

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"

	"github.com/iudanet/cvvault/internal/models"
	"github.com/iudanet/cvvault/internal/validation"
)

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

// Store provides the document lifecycle on top of the resolver and the
// envelope codec. It holds no per-user state and is safe for concurrent use.
// Concurrent writes to the same document are last-writer-wins.
type Store struct {
	resolver *Resolver
	logger   *slog.Logger
	now      func() time.Time
	newID    func() (string, error)
	// файловые операции подменяются в тестах
	writeFile func(path string, data []byte) error
	remove    func(path string) error
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source used for _meta timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator overrides the document id generator
func WithIDGenerator(newID func() (string, error)) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

// NewStore creates a store rooted at the vault directory
func NewStore(root string, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		resolver: NewResolver(root),
		logger:   logger,
		now:      time.Now,
		newID:    newDocumentID,

		writeFile: writeFileAtomic,
		remove:    os.Remove,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolver returns the path resolver used by the store
func (s *Store) Resolver() *Resolver {
	return s.resolver
}

// List returns the documents of pinHash, newest-modified first.
// Names live inside the ciphertext, so without the PIN the id stands in for
// the name. A missing directory yields an empty list.
func (s *Store) List(ctx context.Context, pinHash string) ([]models.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files, err := s.scan(pinHash)
	if err != nil {
		return nil, err
	}

	result := make([]models.FileInfo, 0, len(files))
	for _, f := range files {
		created := createdFromID(f.id)
		if created.IsZero() {
			created = f.modTime
		}
		result = append(result, models.FileInfo{
			ID:       f.id,
			Name:     f.id,
			Created:  created,
			Modified: f.modTime,
		})
	}

	sortNewestFirst(result)
	return result, nil
}

// ListDetailed decrypts every envelope of the user to report the stored
// _meta. Envelopes that do not open under this PIN are skipped.
func (s *Store) ListDetailed(ctx context.Context, creds Credentials) ([]models.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := creds.validate(); err != nil {
		return nil, err
	}

	files, err := s.scan(creds.PinHash)
	if err != nil {
		return nil, err
	}

	result := make([]models.FileInfo, 0, len(files))
	for _, f := range files {
		doc, err := s.read(f.path, creds.PIN)
		if err != nil {
			// Файл другого PIN с тем же префиксом каталога или повреждённый файл
			s.logger.WarnContext(ctx, "skipping document that does not open",
				slog.String("document_id", f.id), slog.Any("error", err))
			continue
		}
		result = append(result, models.FileInfo{
			ID:       f.id,
			Name:     doc.Meta.Name,
			Created:  doc.Meta.Created,
			Modified: doc.Meta.Modified,
		})
	}

	sortNewestFirst(result)
	return result, nil
}

// Create writes a new empty document named displayName and returns its id.
// The PIN and the name are validated before anything touches the disk.
func (s *Store) Create(ctx context.Context, creds Credentials, displayName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := creds.validate(); err != nil {
		return "", err
	}

	displayName = strings.TrimSpace(displayName)
	if err := validation.ValidateDisplayName(displayName); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	id, err := s.newID()
	if err != nil {
		return "", fmt.Errorf("generate document id: %w", err)
	}

	doc := models.NewDocument(displayName, s.timestamp())
	if err := s.write(creds, id, doc); err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "document created", slog.String("document_id", id))
	return id, nil
}

// Open decrypts document id
func (s *Store) Open(ctx context.Context, creds Credentials, id string) (*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := creds.validate(); err != nil {
		return nil, err
	}

	path, err := s.resolver.FilePath(creds.PinHash, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return s.read(path, creds.PIN)
}

// Save replaces document id with doc. The stored copy must open under the
// PIN; its created timestamp is kept and modified is set to now. An empty
// _meta.name keeps the stored name. On any error the previous envelope stays
// intact.
func (s *Store) Save(ctx context.Context, creds Credentials, id string, doc *models.Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidInput)
	}

	stored, err := s.Open(ctx, creds, id)
	if err != nil {
		return err
	}

	updated := *doc
	updated.Meta.Created = stored.Meta.Created
	updated.Meta.Name = strings.TrimSpace(updated.Meta.Name)
	if updated.Meta.Name == "" {
		updated.Meta.Name = stored.Meta.Name
	} else if err := validation.ValidateDisplayName(updated.Meta.Name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	updated.Meta.Modified = s.timestamp()

	if err := s.write(creds, id, &updated); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "document saved", slog.String("document_id", id))
	return nil
}

// Rename changes the display name of document id. The name lives inside the
// ciphertext, so this is a full decrypt and re-encrypt.
func (s *Store) Rename(ctx context.Context, creds Credentials, id, newName string) error {
	newName = strings.TrimSpace(newName)
	if err := validation.ValidateDisplayName(newName); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	doc, err := s.Open(ctx, creds, id)
	if err != nil {
		return err
	}

	doc.Meta.Name = newName
	doc.Meta.Modified = s.timestamp()

	if err := s.write(creds, id, doc); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "document renamed", slog.String("document_id", id))
	return nil
}

// Delete removes document id. It reports false if the file was already
// absent. No PIN is needed: knowing the directory is enough to delete.
func (s *Store) Delete(ctx context.Context, pinHash, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	path, err := s.resolver.FilePath(pinHash, id)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: remove document: %v", ErrStorage, err)
	}

	s.logger.InfoContext(ctx, "document deleted", slog.String("document_id", id))
	return true, nil
}

// Rekey re-encrypts every document of oldCreds under newCreds and moves them
// to the new PIN's directory. All documents are decrypted before anything is
// written. A failed write undoes the documents already written: copies in the
// new directory are removed, and envelopes rewritten in place (both PINs map to
// one directory) are sealed under the old PIN again. Once every document is
// written the rekey has succeeded; old envelopes that could not be removed are
// only logged, they no longer open under the new PIN. _meta is kept as is.
// It returns the number of documents moved.
func (s *Store) Rekey(ctx context.Context, oldCreds, newCreds Credentials) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := oldCreds.validate(); err != nil {
		return 0, err
	}
	if err := newCreds.validate(); err != nil {
		return 0, err
	}
	if oldCreds.PIN == newCreds.PIN {
		return 0, fmt.Errorf("%w: new PIN must differ from the current one", ErrInvalidInput)
	}

	files, err := s.scan(oldCreds.PinHash)
	if err != nil {
		return 0, err
	}

	docs := make([]*models.Document, len(files))
	for i, f := range files {
		doc, err := s.read(f.path, oldCreds.PIN)
		if err != nil {
			return 0, fmt.Errorf("document %s: %w", f.id, err)
		}
		docs[i] = doc
	}

	oldDir, _ := s.resolver.UserDir(oldCreds.PinHash)
	newDir, _ := s.resolver.UserDir(newCreds.PinHash)
	sameDir := oldDir == newDir

	if !sameDir {
		for _, f := range files {
			exists, err := s.resolver.Exists(newCreds.PinHash, f.id)
			if err != nil {
				return 0, fmt.Errorf("%w: %v", ErrStorage, err)
			}
			if exists {
				return 0, fmt.Errorf("%w: document %s already exists under the new PIN", ErrInvalidInput, f.id)
			}
		}
	}

	for i, f := range files {
		if err := s.write(newCreds, f.id, docs[i]); err != nil {
			if sameDir {
				s.restore(ctx, oldCreds, files[:i], docs[:i])
			} else {
				s.rollback(ctx, newCreds.PinHash, files[:i])
			}
			return 0, fmt.Errorf("document %s: %w", f.id, err)
		}
	}

	if !sameDir {
		for _, f := range files {
			if err := s.remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				s.logger.WarnContext(ctx, "failed to remove old envelope after rekey",
					slog.String("document_id", f.id), slog.Any("error", err))
			}
		}
	}

	s.logger.InfoContext(ctx, "vault rekeyed", slog.Int("documents", len(files)))
	return len(files), nil
}

// rollback удаляет копии, уже записанные в новый каталог
func (s *Store) rollback(ctx context.Context, pinHash string, files []envelopeFile) {
	for _, f := range files {
		if _, err := s.Delete(ctx, pinHash, f.id); err != nil {
			s.logger.ErrorContext(ctx, "failed to roll back rekeyed document",
				slog.String("document_id", f.id), slog.Any("error", err))
		}
	}
}

// restore снова шифрует старым PIN конверты, перезаписанные на месте
func (s *Store) restore(ctx context.Context, creds Credentials, files []envelopeFile, docs []*models.Document) {
	for i, f := range files {
		if err := s.write(creds, f.id, docs[i]); err != nil {
			s.logger.ErrorContext(ctx, "failed to restore rekeyed document",
				slog.String("document_id", f.id), slog.Any("error", err))
		}
	}
}

// read loads and decrypts one envelope file
func (s *Store) read(path, pin string) (*models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: read document: %v", ErrStorage, err)
	}

	return openDocument(data, pin)
}

// write seals doc and atomically replaces the envelope of id.
// The user directory is created on first write.
func (s *Store) write(creds Credentials, id string, doc *models.Document) error {
	path, err := s.resolver.FilePath(creds.PinHash, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	normalize(doc)
	data, err := sealDocument(doc, creds.PIN)
	if err != nil {
		return err
	}

	dir, _ := s.resolver.UserDir(creds.PinHash)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("%w: create user directory: %v", ErrStorage, err)
	}

	if err := s.writeFile(path, data); err != nil {
		return fmt.Errorf("%w: write document: %v", ErrStorage, err)
	}

	return nil
}

// writeFileAtomic writes data to a temp file in the same directory, syncs it
// and renames it over path. Readers see either the old or the new envelope.
func writeFileAtomic(path string, data []byte) error {
	f, err := renameio.NewPendingFile(path, renameio.WithStaticPermissions(filePerm))
	if err != nil {
		return err
	}
	defer func() { _ = f.Cleanup() }()

	if _, err := f.Write(data); err != nil {
		return err
	}

	return f.CloseAtomicallyReplace()
}

type envelopeFile struct {
	modTime time.Time
	id      string
	path    string
}

// scan lists the envelope files of pinHash. A missing directory is not an error.
func (s *Store) scan(pinHash string) ([]envelopeFile, error) {
	dir, err := s.resolver.UserDir(pinHash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []envelopeFile{}, nil
		}
		return nil, fmt.Errorf("%w: read user directory: %v", ErrStorage, err)
	}

	files := make([]envelopeFile, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		id, ok := strings.CutSuffix(name, FileExt)
		if !ok || validation.ValidateDocumentID(id) != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// удалён между ReadDir и Info
			continue
		}
		files = append(files, envelopeFile{
			id:      id,
			path:    dir + string(os.PathSeparator) + name,
			modTime: info.ModTime().UTC(),
		})
	}

	return files, nil
}

func (s *Store) timestamp() time.Time {
	// UTC без monotonic части, чтобы значение переживало JSON round trip
	return s.now().UTC().Round(0)
}

// normalize makes empty lists serialize as [] rather than null
func normalize(doc *models.Document) {
	if doc.Experience == nil {
		doc.Experience = []models.Experience{}
	}
	if doc.Education == nil {
		doc.Education = []models.Education{}
	}
	if doc.Skills == nil {
		doc.Skills = []string{}
	}
}

func sortNewestFirst(files []models.FileInfo) {
	slices.SortFunc(files, func(a, b models.FileInfo) int {
		if c := b.Modified.Compare(a.Modified); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}

func newDocumentID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// createdFromID extracts the creation time embedded in a UUIDv7 id.
// Other ids yield the zero time.
func createdFromID(id string) time.Time {
	u, err := uuid.Parse(id)
	if err != nil || u.Version() != 7 {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec).UTC()
}
