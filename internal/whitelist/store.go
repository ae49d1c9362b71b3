package whitelist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"ytcourier/internal/logging"
)

// ErrNotFound is returned by Remove when the identifier is not whitelisted.
var ErrNotFound = errors.New("not in whitelist")

// Identifier names a whitelist entry: either a numeric id or a lowercase
// username (never both).
type Identifier struct {
	ID       int64
	Username string
}

func (i Identifier) String() string {
	if i.Username != "" {
		return "@" + i.Username
	}
	return strconv.FormatInt(i.ID, 10)
}

// record is the persisted whitelist layout. Username values are nullable:
// a username added before its owner ever messaged the bot has no id yet.
type record struct {
	IDs       []int64           `json:"ids"`
	Usernames map[string]*int64 `json:"usernames"`
}

// Store holds the durable whitelist of authorized identities. The designated
// administrator is always authorized whether or not present in the sets.
// Every mutation persists the whole structure via temp-file-then-rename so a
// crash mid-write never leaves a half-updated file.
type Store struct {
	path    string
	adminID int64
	logger  *slog.Logger

	mu        sync.RWMutex
	ids       map[int64]struct{}
	usernames map[string]*int64
}

// Open loads the whitelist from path. When the file is absent the store is
// initialized with only the administrator id and persisted immediately; a
// failure to write that initial state is returned to the caller (the daemon
// treats it as fatal).
func Open(path string, adminID int64, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("whitelist path must not be empty")
	}

	s := &Store{
		path:      path,
		adminID:   adminID,
		logger:    logging.NewComponentLogger(logger, "whitelist"),
		ids:       make(map[int64]struct{}),
		usernames: make(map[string]*int64),
	}

	loaded, err := s.load()
	if err != nil {
		return nil, err
	}
	if !loaded {
		if adminID != 0 {
			s.ids[adminID] = struct{}{}
		}
		if err := s.save(); err != nil {
			return nil, fmt.Errorf("initialize whitelist: %w", err)
		}
		s.logger.Info("initialized whitelist", logging.String("path", path), logging.Int64("admin_id", adminID))
	}
	return s, nil
}

// IsAllowed reports whether the identity may use the bot. True for the
// administrator, any whitelisted id, and any whitelisted username. Pure read.
func (s *Store) IsAllowed(id int64, username string) bool {
	if id != 0 && id == s.adminID {
		return true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.ids[id]; ok && id != 0 {
		return true
	}
	if name := strings.ToLower(strings.TrimSpace(username)); name != "" {
		if _, ok := s.usernames[name]; ok {
			return true
		}
	}
	return false
}

// Add whitelists the identifier. Numeric arguments join the id set; anything
// else is treated as a username mapped to a null id until its owner is
// observed. Idempotent. The updated structure is persisted before success is
// reported.
func (s *Store) Add(arg string) (Identifier, error) {
	ident, err := parseIdentifier(arg)
	if err != nil {
		return Identifier{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ident.Username != "" {
		if _, exists := s.usernames[ident.Username]; !exists {
			s.usernames[ident.Username] = nil
		}
	} else {
		s.ids[ident.ID] = struct{}{}
	}

	if err := s.save(); err != nil {
		return Identifier{}, fmt.Errorf("persist whitelist: %w", err)
	}
	s.logger.Info("whitelisted", logging.String("identifier", ident.String()))
	return ident, nil
}

// Remove deletes the identifier from the whitelist. Returns ErrNotFound
// without persisting when it is absent. Removing the administrator's own id
// is allowed; the implicit-admin rule in IsAllowed keeps the admin
// authorized regardless.
func (s *Store) Remove(arg string) (Identifier, error) {
	ident, err := parseIdentifier(arg)
	if err != nil {
		return Identifier{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ident.Username != "" {
		if _, exists := s.usernames[ident.Username]; !exists {
			return Identifier{}, ErrNotFound
		}
		delete(s.usernames, ident.Username)
	} else {
		if _, exists := s.ids[ident.ID]; !exists {
			return Identifier{}, ErrNotFound
		}
		delete(s.ids, ident.ID)
	}

	if err := s.save(); err != nil {
		return Identifier{}, fmt.Errorf("persist whitelist: %w", err)
	}
	s.logger.Info("removed from whitelist", logging.String("identifier", ident.String()))
	return ident, nil
}

// TrackUsername records the observed username→id mapping for an inbound
// interaction. Resolution is best-effort: a whitelisted username gains its
// numeric id the first time that user messages the bot. Usernames that are
// not already whitelisted are never inserted (membership in the map grants
// access). Persists only when the mapping actually changed.
func (s *Store) TrackUsername(id int64, username string) error {
	name := strings.ToLower(strings.TrimSpace(username))
	if name == "" || id == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.usernames[name]
	if !ok {
		return nil
	}
	if existing != nil && *existing == id {
		return nil
	}
	observed := id
	s.usernames[name] = &observed

	if err := s.save(); err != nil {
		return fmt.Errorf("persist whitelist: %w", err)
	}
	s.logger.Debug("tracked username", logging.String("username", name), logging.Int64("user_id", id))
	return nil
}

// Snapshot returns the whitelisted ids (sorted) and a copy of the username
// map for display.
func (s *Store) Snapshot() ([]int64, map[string]*int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	usernames := make(map[string]*int64, len(s.usernames))
	for name, id := range s.usernames {
		if id != nil {
			v := *id
			usernames[name] = &v
		} else {
			usernames[name] = nil
		}
	}
	return ids, usernames
}

// AdminID returns the designated administrator id.
func (s *Store) AdminID() int64 {
	return s.adminID
}

func parseIdentifier(arg string) (Identifier, error) {
	cleaned := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(arg), "@"))
	if cleaned == "" {
		return Identifier{}, errors.New("identifier must not be empty")
	}
	if id, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
		if id <= 0 {
			return Identifier{}, fmt.Errorf("invalid user id %q", arg)
		}
		return Identifier{ID: id}, nil
	}
	return Identifier{Username: cleaned}, nil
}

// load reads the whitelist file. Returns false when the file does not exist.
func (s *Store) load() (bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read whitelist file: %w", err)
	}
	if len(data) == 0 {
		return false, nil
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return false, fmt.Errorf("parse whitelist file: %w", err)
	}

	for _, id := range rec.IDs {
		if id != 0 {
			s.ids[id] = struct{}{}
		}
	}
	for name, id := range rec.Usernames {
		if cleaned := strings.ToLower(strings.TrimSpace(name)); cleaned != "" {
			s.usernames[cleaned] = id
		}
	}

	s.logger.Debug("loaded whitelist",
		logging.Int("id_count", len(s.ids)),
		logging.Int("username_count", len(s.usernames)),
		logging.String("path", s.path))
	return true, nil
}

// save writes the whole structure atomically. Callers hold s.mu.
func (s *Store) save() error {
	rec := record{
		IDs:       make([]int64, 0, len(s.ids)),
		Usernames: s.usernames,
	}
	for id := range s.ids {
		rec.IDs = append(rec.IDs, id)
	}
	sort.Slice(rec.IDs, func(i, j int) bool { return rec.IDs[i] < rec.IDs[j] })

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal whitelist: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create whitelist directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
