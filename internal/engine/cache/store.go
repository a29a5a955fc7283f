package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// maxLoggedErrorLength truncates underlying error messages in diagnostics.
const maxLoggedErrorLength = 100

// Status describes the outcome of a lookup.
type Status int

// Lookup outcomes. Only StatusFresh is a hit.
const (
	StatusMissing Status = iota
	StatusFresh
	StatusExpired
	StatusCorrupt
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusFresh:
		return "fresh"
	case StatusExpired:
		return "expired"
	case StatusCorrupt:
		return "corrupt"
	default:
		return "missing"
	}
}

// Result is the detailed outcome of Lookup.
type Result struct {
	Status Status

	// Data is the stored payload. Set only for StatusFresh.
	Data json.RawMessage

	// CachedAt is the entry timestamp. Zero for missing and corrupt entries.
	CachedAt time.Time

	// Err is the parse or read error behind StatusCorrupt.
	Err error
}

// Hit reports whether the lookup returned a usable value.
func (r Result) Hit() bool {
	return r.Status == StatusFresh
}

// EntryInfo describes one file managed by the store.
type EntryInfo struct {
	File     string
	CachedAt time.Time
	Age      time.Duration
	Status   Status
	Size     int64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the diagnostic logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger.With().Str("component", "cache").Logger()
	}
}

// WithClock replaces time.Now, for tests and for pinning a run to one instant.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is a directory of JSON entries with a uniform freshness duration.
//
// Store keeps no in-memory copy of entries; every Get re-reads the file. It
// does no locking: it is meant for one writer per directory.
type Store struct {
	directory string
	freshness time.Duration
	now       func() time.Time
	logger    zerolog.Logger
}

// New creates a store rooted at directory, creating it and any parents.
// It fails when the directory cannot be created or the path is not a
// directory, and when freshness is not positive.
func New(directory string, freshness time.Duration, opts ...Option) (*Store, error) {
	if directory == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	if freshness <= 0 {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidFreshness, freshness)
	}

	if err := os.MkdirAll(directory, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	info, err := os.Stat(directory)
	if err != nil {
		return nil, fmt.Errorf("failed to stat cache directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("cache path %s is not a directory", directory)
	}

	s := &Store{
		directory: directory,
		freshness: freshness,
		now:       time.Now,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Directory returns the cache directory path.
func (s *Store) Directory() string {
	return s.directory
}

// Freshness returns the configured freshness duration.
func (s *Store) Freshness() time.Duration {
	return s.freshness
}

// Path returns the file backing key, or "" for the empty key.
func (s *Store) Path(key string) string {
	name := fileNameForKey(key)
	if name == "" {
		return ""
	}
	return filepath.Join(s.directory, name)
}

// Lookup reads the entry for key and classifies it. It never modifies the
// directory: expired and corrupt entries stay where they are.
func (s *Store) Lookup(key string) Result {
	path := s.Path(key)
	if path == "" {
		return Result{Status: StatusMissing}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{Status: StatusMissing}
		}
		s.warn("get", key, err, "error reading cache")
		return Result{Status: StatusCorrupt, Err: err}
	}

	var entry Entry
	if err = json.Unmarshal(raw, &entry); err != nil {
		s.warn("get", key, err, "error reading cache")
		return Result{Status: StatusCorrupt, Err: err}
	}

	if !entry.IsFresh(s.now(), s.freshness) {
		s.logger.Info().
			Str("key", key).
			Str("operation", "get").
			Str("cached_at", entry.CachedAt.Format("2006-01-02 15:04")).
			Msg("cache expired")
		return Result{Status: StatusExpired, CachedAt: entry.CachedAt}
	}

	s.logger.Info().
		Str("key", key).
		Str("operation", "get").
		Str("cached_at", entry.CachedAt.Format("2006-01-02 15:04")).
		Msg("using cached data")
	return Result{Status: StatusFresh, Data: entry.Data, CachedAt: entry.CachedAt}
}

// Get decodes the fresh payload for key into dst and reports whether it did.
// A payload that does not decode into dst counts as a corrupt miss.
func (s *Store) Get(key string, dst any) bool {
	res := s.Lookup(key)
	if !res.Hit() {
		return false
	}
	if err := json.Unmarshal(res.Data, dst); err != nil {
		s.warn("get", key, err, "cached payload does not match the expected shape")
		return false
	}
	return true
}

// Set stores payload under key, replacing any previous entry. Failures are
// logged and otherwise ignored: the cache is an optimization.
//
// The entry is written to a temporary file in the same directory and then
// renamed over the previous one.
func (s *Store) Set(key string, payload any) {
	path := s.Path(key)
	if path == "" {
		s.warn("set", key, errEmptyKey, "error writing cache")
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		s.warn("set", key, err, "error writing cache")
		return
	}

	// cached_at is persisted at microsecond resolution; stamp what will be read back.
	entry := &Entry{CachedAt: s.now().Truncate(time.Microsecond), Data: data}
	encoded, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		s.warn("set", key, err, "error writing cache")
		return
	}

	if err = writeFileAtomic(path, encoded); err != nil {
		s.warn("set", key, err, "error writing cache")
		return
	}

	s.logger.Info().Str("key", key).Str("operation", "set").Msg("cached data")
}

// Clear removes the entry for key. Removing an absent entry is a no-op.
func (s *Store) Clear(key string) {
	path := s.Path(key)
	if path == "" {
		s.warn("clear", key, errEmptyKey, "error clearing cache")
		return
	}
	if err := os.Remove(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.warn("clear", key, err, "error clearing cache")
		}
		return
	}
	s.logger.Info().Str("key", key).Str("operation", "clear").Msg("cleared cache")
}

// ClearAll removes every entry file in the directory and returns how many
// were removed. Files that do not follow the store's naming convention are
// left alone.
func (s *Store) ClearAll() int {
	names, err := s.entryFiles()
	if err != nil {
		s.warn("clear", "", err, "error listing cache directory")
		return 0
	}

	removed := 0
	for _, name := range names {
		if removeErr := os.Remove(filepath.Join(s.directory, name)); removeErr != nil {
			if !errors.Is(removeErr, os.ErrNotExist) {
				s.warn("clear", name, removeErr, "error clearing cache")
			}
			continue
		}
		removed++
	}

	s.logger.Info().Str("operation", "clear").Int("removed", removed).Msg("cleared all cache")
	return removed
}

// List describes every entry file in the directory, sorted by file name.
func (s *Store) List() ([]EntryInfo, error) {
	names, err := s.entryFiles()
	if err != nil {
		return nil, err
	}

	now := s.now()
	infos := make([]EntryInfo, 0, len(names))
	for _, name := range names {
		path := filepath.Join(s.directory, name)
		info := EntryInfo{File: name, Status: StatusCorrupt}

		if st, statErr := os.Stat(path); statErr == nil {
			info.Size = st.Size()
		}

		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			infos = append(infos, info)
			continue
		}

		var entry Entry
		if json.Unmarshal(raw, &entry) == nil {
			info.CachedAt = entry.CachedAt
			info.Age = entry.Age(now)
			info.Status = StatusExpired
			if entry.IsFresh(now, s.freshness) {
				info.Status = StatusFresh
			}
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (s *Store) entryFiles() ([]string, error) {
	dirEntries, err := os.ReadDir(s.directory)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var names []string
	for _, entry := range dirEntries {
		if entry.IsDir() || !isEntryFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) warn(operation, key string, err error, msg string) {
	s.logger.Warn().
		Str("key", key).
		Str("operation", operation).
		Str("error", truncate(err.Error(), maxLoggedErrorLength)).
		Msg(msg)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// writeFileAtomic writes data to a temp file next to path and renames it.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close cache file: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename cache file: %w", err)
	}
	return nil
}
