package whitelist

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const adminID = int64(1000)

func openStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "allowed_users.json")
	s, err := Open(path, adminID, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func TestOpenInitializesWithAdmin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowed_users.json")
	s, err := Open(path, adminID, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("whitelist file should exist after init: %v", err)
	}
	ids, _ := s.Snapshot()
	if len(ids) != 1 || ids[0] != adminID {
		t.Errorf("initial ids = %v, want [%d]", ids, adminID)
	}
}

func TestAdminAlwaysAllowed(t *testing.T) {
	s := openStore(t)
	if _, err := s.Remove("1000"); err != nil {
		t.Fatalf("Remove admin failed: %v", err)
	}
	if !s.IsAllowed(adminID, "") {
		t.Error("admin must stay authorized after removal from the explicit set")
	}
}

func TestAddAndRemoveID(t *testing.T) {
	s := openStore(t)

	if s.IsAllowed(7788, "") {
		t.Fatal("unknown id should not be allowed")
	}

	ident, err := s.Add("7788")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if ident.ID != 7788 {
		t.Errorf("Add returned %v, want id 7788", ident)
	}
	if !s.IsAllowed(7788, "") {
		t.Error("id should be allowed after Add")
	}

	if _, err := s.Remove("7788"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if s.IsAllowed(7788, "") {
		t.Error("id should not be allowed after Remove")
	}
}

func TestAddRemoveRestoresPersistedState(t *testing.T) {
	s := openStore(t)
	before, err := os.ReadFile(s.path)
	if err != nil {
		t.Fatalf("read whitelist: %v", err)
	}

	if _, err := s.Add("4242"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := s.Remove("4242"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	after, err := os.ReadFile(s.path)
	if err != nil {
		t.Fatalf("read whitelist: %v", err)
	}
	if string(before) != string(after) {
		t.Errorf("add+remove should restore the file exactly\nbefore: %s\nafter: %s", before, after)
	}
}

func TestAddUsernameNormalizes(t *testing.T) {
	s := openStore(t)

	ident, err := s.Add("@SomeUser")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if ident.Username != "someuser" {
		t.Errorf("username should be lowercased without @, got %q", ident.Username)
	}

	if !s.IsAllowed(555, "SOMEUSER") {
		t.Error("username match should be case-insensitive")
	}
	if !s.IsAllowed(0, "someuser") {
		t.Error("username should authorize even before id resolution")
	}
}

func TestRemoveNotFound(t *testing.T) {
	s := openStore(t)

	if _, err := s.Remove("9999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove unknown id: err = %v, want ErrNotFound", err)
	}
	if _, err := s.Remove("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove unknown username: err = %v, want ErrNotFound", err)
	}
}

func TestTrackUsernameResolvesID(t *testing.T) {
	s := openStore(t)

	if _, err := s.Add("lurker"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	_, usernames := s.Snapshot()
	if usernames["lurker"] != nil {
		t.Fatal("fresh username mapping should be unresolved")
	}

	if err := s.TrackUsername(314, "Lurker"); err != nil {
		t.Fatalf("TrackUsername failed: %v", err)
	}
	_, usernames = s.Snapshot()
	if usernames["lurker"] == nil || *usernames["lurker"] != 314 {
		t.Errorf("username should resolve to 314, got %v", usernames["lurker"])
	}
}

func TestTrackUsernameIgnoresUnknownNames(t *testing.T) {
	s := openStore(t)

	if err := s.TrackUsername(99, "stranger"); err != nil {
		t.Fatalf("TrackUsername failed: %v", err)
	}
	if s.IsAllowed(0, "stranger") || s.IsAllowed(99, "") {
		t.Error("tracking must never grant access to unknown usernames")
	}
	_, usernames := s.Snapshot()
	if _, ok := usernames["stranger"]; ok {
		t.Error("unknown username must not be inserted")
	}
}

func TestTrackUsernameSkipsUnchanged(t *testing.T) {
	s := openStore(t)
	if _, err := s.Add("repeat"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := s.TrackUsername(314, "repeat"); err != nil {
		t.Fatalf("TrackUsername failed: %v", err)
	}
	info1, err := os.Stat(s.path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if err := s.TrackUsername(314, "repeat"); err != nil {
		t.Fatalf("TrackUsername failed: %v", err)
	}
	info2, err := os.Stat(s.path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info1.ModTime().Equal(info2.ModTime()) || info1.Size() != info2.Size() {
		t.Error("unchanged mapping should not rewrite the file")
	}
}

func TestPersistenceAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowed_users.json")
	s1, err := Open(path, adminID, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := s1.Add("2222"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := s1.Add("friend"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	s2, err := Open(path, adminID, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if !s2.IsAllowed(2222, "") {
		t.Error("id should persist across instances")
	}
	if !s2.IsAllowed(0, "friend") {
		t.Error("username should persist across instances")
	}
}

func TestPersistedLayout(t *testing.T) {
	s := openStore(t)
	if _, err := s.Add("55"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := s.Add("pending"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var rec struct {
		IDs       []int64           `json:"ids"`
		Usernames map[string]*int64 `json:"usernames"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("layout is not the expected JSON: %v", err)
	}
	if len(rec.IDs) != 2 {
		t.Errorf("ids = %v, want admin plus 55", rec.IDs)
	}
	if id, ok := rec.Usernames["pending"]; !ok || id != nil {
		t.Errorf("pending username should serialize as null, got %v", rec.Usernames)
	}
}

func TestParseIdentifierRejectsEmpty(t *testing.T) {
	if _, err := parseIdentifier("  @ "); err == nil {
		t.Error("blank identifier should be rejected")
	}
	if _, err := parseIdentifier("0"); err == nil {
		t.Error("zero id should be rejected")
	}
}
