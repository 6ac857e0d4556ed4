// Package storage persists negotiation sessions as versioned JSON envelopes,
// one file per session.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/tbcolby/settlement-game/internal/model"
)

const (
	// SchemaVersion is the envelope version this build reads and writes.
	SchemaVersion = "1.0"

	fileMode        = 0o600
	dirMode         = 0o700
	fileExt         = ".json"
	tempFilePattern = ".session-*.json.tmp"
)

var (
	ErrNoSession      = errors.New("no session")
	ErrInvalidID      = errors.New("invalid session id")
	ErrInvalidSession = errors.New("invalid session file")

	errUnusable = errors.New("unusable session file")
)

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

type envelope struct {
	Version string        `json:"version"`
	Session model.Session `json:"session"`
	SavedAt time.Time     `json:"saved_at"`
}

type Store struct {
	dir string
	log *zap.Logger
	now func() time.Time
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

// New opens a store rooted at dir, creating the directory if needed.
func New(dir string, log *zap.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("data directory is empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve data directory: %w", err)
	}
	if err := os.MkdirAll(abs, dirMode); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{dir: filepath.Clean(abs), log: log, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Dir returns the absolute directory sessions are stored in.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(id string) (string, error) {
	if !validID.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return filepath.Join(s.dir, id+fileExt), nil
}

func (s *Store) Save(ctx context.Context, session model.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(session.ID)
	if err != nil {
		return err
	}
	mu := lockForPath(path)
	mu.Lock()
	defer mu.Unlock()
	return s.write(path, session)
}

// Load returns the stored session. A file with another schema version or
// that cannot be decoded is discarded and reported as ErrNoSession.
func (s *Store) Load(ctx context.Context, id string) (model.Session, error) {
	if err := ctx.Err(); err != nil {
		return model.Session{}, err
	}
	path, err := s.path(id)
	if err != nil {
		return model.Session{}, err
	}
	mu := lockForPath(path)
	mu.RLock()
	session, err := s.read(path)
	mu.RUnlock()
	if !errors.Is(err, errUnusable) {
		return session, err
	}

	// A writer may have replaced the file since it was read.
	mu.Lock()
	defer mu.Unlock()
	return s.readOrDiscard(path)
}

// Update loads a session, applies fn and saves the result while holding the
// session's write lock, so transitions on one session are serialized.
func (s *Store) Update(ctx context.Context, id string, fn func(model.Session) (model.Session, error)) (model.Session, error) {
	if err := ctx.Err(); err != nil {
		return model.Session{}, err
	}
	path, err := s.path(id)
	if err != nil {
		return model.Session{}, err
	}
	mu := lockForPath(path)
	mu.Lock()
	defer mu.Unlock()

	current, err := s.readOrDiscard(path)
	if err != nil {
		return model.Session{}, err
	}
	next, err := fn(current)
	if err != nil {
		return current, err
	}
	if next.ID != current.ID {
		return current, fmt.Errorf("%w: session id changed", ErrInvalidSession)
	}
	if err := s.write(path, next); err != nil {
		return current, err
	}
	return next, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(id)
	if err != nil {
		return err
	}
	mu := lockForPath(path)
	mu.Lock()
	defer mu.Unlock()

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNoSession
		}
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Exists reports whether a readable session of the current version is stored
// under id. It never discards files.
func (s *Store) Exists(ctx context.Context, id string) bool {
	if ctx.Err() != nil {
		return false
	}
	path, err := s.path(id)
	if err != nil {
		return false
	}
	mu := lockForPath(path)
	mu.RLock()
	defer mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return false
	}
	return env.Version == SchemaVersion && env.Session.ID != ""
}

// List returns the ids of stored sessions in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read data directory: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) || strings.HasPrefix(name, ".") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, fileExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// Export returns the stored session as indented JSON without its envelope.
func (s *Store) Export(ctx context.Context, id string) ([]byte, error) {
	session, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return data, nil
}

// ExportFileName is the suggested file name for an exported session.
func ExportFileName(id string, at time.Time) string {
	return fmt.Sprintf("settlement-game-%s-%d.json", id, at.UnixMilli())
}

// Import decodes an exported session, checks its basic structure and saves
// it, replacing any stored session with the same id.
func (s *Store) Import(ctx context.Context, data []byte) (model.Session, error) {
	session, err := Decode(data)
	if err != nil {
		return model.Session{}, err
	}
	if err := s.Save(ctx, session); err != nil {
		return model.Session{}, err
	}
	return session, nil
}

// Decode parses an exported session file.
func Decode(data []byte) (model.Session, error) {
	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return model.Session{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if session.ID == "" || session.PartyA.Name == "" || session.PartyB.Name == "" {
		return model.Session{}, fmt.Errorf("%w: id and both parties are required", ErrInvalidSession)
	}
	if !validID.MatchString(session.ID) {
		return model.Session{}, fmt.Errorf("%w: %q", ErrInvalidID, session.ID)
	}
	if session.AcceptedCards == nil {
		session.AcceptedCards = []model.PlayedCard{}
	}
	if session.Moves == nil {
		session.Moves = []model.Move{}
	}
	if session.Children == nil {
		session.Children = []model.Child{}
	}
	return session, nil
}

// read decodes the envelope at path. Files that exist but cannot be used
// are reported with errUnusable.
func (s *Store) read(path string) (model.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.Session{}, ErrNoSession
		}
		return model.Session{}, fmt.Errorf("read session file: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return model.Session{}, fmt.Errorf("%w: %v", errUnusable, err)
	}
	if env.Version != SchemaVersion {
		return model.Session{}, fmt.Errorf("%w: version %q, expected %q", errUnusable, env.Version, SchemaVersion)
	}
	return env.Session, nil
}

// readOrDiscard is read with unusable files removed. Callers hold the path's
// write lock.
func (s *Store) readOrDiscard(path string) (model.Session, error) {
	session, err := s.read(path)
	if !errors.Is(err, errUnusable) {
		return session, err
	}
	s.log.Warn("discarding unusable session file", zap.String("path", path), zap.Error(err))
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Error("remove session file", zap.String("path", path), zap.Error(err))
	}
	return model.Session{}, ErrNoSession
}

func (s *Store) write(path string, session model.Session) error {
	data, err := json.Marshal(envelope{Version: SchemaVersion, Session: session, SavedAt: s.now()})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp session file: %w", err)
	}
	if err := tempFile.Chmod(fileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp session file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp session file: %w", err)
	}
	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	cleanup = false
	return nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}
	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}
