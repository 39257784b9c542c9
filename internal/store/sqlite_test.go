package store

import (
	"path/filepath"
	"testing"
)

func testSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_LoadAbsent(t *testing.T) {
	s := testSQLiteStore(t)
	data, ok, err := s.Load(KindPortfolio, Scope{ChannelID: "ch1"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok || data != nil {
		t.Errorf("Load on fresh db = (%q, %v), want absent", data, ok)
	}
}

func TestSQLiteStore_SaveThenLoad(t *testing.T) {
	s := testSQLiteStore(t)
	scope := Scope{OwnerID: "bot-1", ChannelID: "ch1"}

	if err := s.Save(KindPortfolio, scope, []byte(`v1`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, ok, err := s.Load(KindPortfolio, scope)
	if err != nil || !ok {
		t.Fatalf("Load: %v, found=%v", err, ok)
	}
	if string(data) != "v1" {
		t.Errorf("Load = %q, want v1", data)
	}
}

func TestSQLiteStore_SaveOverwrites(t *testing.T) {
	s := testSQLiteStore(t)
	scope := Scope{OwnerID: "bot-1", ChannelID: "ch1"}

	if err := s.Save(KindFollowList, scope, []byte(`v1`)); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := s.Save(KindFollowList, scope, []byte(`v2`)); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	data, ok, err := s.Load(KindFollowList, scope)
	if err != nil || !ok {
		t.Fatalf("Load: %v, found=%v", err, ok)
	}
	if string(data) != "v2" {
		t.Errorf("Load = %q, want v2", data)
	}
}

func TestSQLiteStore_ChannelsAreSeparate(t *testing.T) {
	s := testSQLiteStore(t)

	if err := s.Save(KindPortfolio, Scope{ChannelID: "ch1"}, []byte(`one`)); err != nil {
		t.Fatalf("Save ch1: %v", err)
	}
	if err := s.Save(KindPortfolio, Scope{ChannelID: "ch2"}, []byte(`two`)); err != nil {
		t.Fatalf("Save ch2: %v", err)
	}
	data, ok, err := s.Load(KindPortfolio, Scope{ChannelID: "ch2"})
	if err != nil || !ok {
		t.Fatalf("Load ch2: %v, found=%v", err, ok)
	}
	if string(data) != "two" {
		t.Errorf("Load ch2 = %q, want two", data)
	}
}
