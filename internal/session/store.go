package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/phuslu/log"

	"github.com/jonathan/people-crossref/internal/observability"
	"github.com/jonathan/people-crossref/internal/schemas"
	rootschemas "github.com/jonathan/people-crossref/schemas"
)

// CookieFileName is the fixed name of the stored session inside the session directory.
const CookieFileName = "cookies.json"

// Store persists the session cookie set between runs.
type Store interface {
	// Load returns the stored set. ok is false when nothing usable is stored.
	Load() (set CookieSet, ok bool, err error)
	// Save replaces the stored set.
	Save(set CookieSet) error
	// Clear removes the stored set.
	Clear() error
}

// Info describes the stored session file.
type Info struct {
	Path     string
	Exists   bool
	Valid    bool
	Cookies  int
	Modified time.Time
}

// FileStore keeps the cookie set as a JSON file in a session directory.
// Reads and writes hold an advisory lock on a sibling .lock file.
type FileStore struct {
	path   string
	lock   *flock.Flock
	logger *log.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store for dir/cookies.json. The directory is created on Save.
func NewFileStore(dir string, logger *log.Logger) *FileStore {
	if logger == nil {
		logger = observability.NopLogger()
	}
	path := filepath.Join(dir, CookieFileName)
	return &FileStore{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger,
	}
}

// Path returns the location of the cookie file.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the stored set. A missing, malformed or schema-invalid file is
// reported as "no stored session", not as an error.
func (s *FileStore) Load() (CookieSet, bool, error) {
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}

	unlock, err := s.acquire(false)
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	set, err := s.read()
	if err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("ignoring unusable stored session")
		return nil, false, nil
	}
	return set, true, nil
}

func (s *FileStore) read() (CookieSet, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	if err := schemas.ValidateJSONString(rootschemas.Session, string(data)); err != nil {
		return nil, err
	}

	var set CookieSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	return set, nil
}

// Save writes the set atomically, replacing any previous file.
func (s *FileStore) Save(set CookieSet) error {
	if set == nil {
		set = CookieSet{}
	}
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session cookies: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create session directory %s: %w", dir, err)
	}

	unlock, err := s.acquire(true)
	if err != nil {
		return err
	}
	defer unlock()

	tmp, err := os.CreateTemp(dir, CookieFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set session file mode: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close session file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	s.logger.Debug().Int("cookies", len(set)).Str("path", s.path).Msg("session saved")
	return nil
}

// Clear deletes the stored set. A missing file is not an error.
func (s *FileStore) Clear() error {
	if _, err := os.Stat(filepath.Dir(s.path)); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	unlock, err := s.acquire(true)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// Info reports whether a session is stored and how many cookies it holds.
func (s *FileStore) Info() (Info, error) {
	info := Info{Path: s.path}

	st, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return info, nil
	}
	if err != nil {
		return info, fmt.Errorf("failed to stat session file: %w", err)
	}
	info.Exists = true
	info.Modified = st.ModTime()

	unlock, err := s.acquire(false)
	if err != nil {
		return info, err
	}
	defer unlock()

	set, err := s.read()
	if err != nil {
		return info, nil
	}
	info.Valid = true
	info.Cookies = len(set)
	return info, nil
}

func (s *FileStore) acquire(exclusive bool) (func(), error) {
	var err error
	if exclusive {
		err = s.lock.Lock()
	} else {
		err = s.lock.RLock()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock session file: %w", err)
	}
	return func() { _ = s.lock.Unlock() }, nil
}
