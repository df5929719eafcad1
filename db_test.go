package main

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "paperbot-test.db")
	db, err := InitDB(dbPath)
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUpsertMemberInsertAndUpdate(t *testing.T) {
	db := newTestDB(t)

	member := RosterMember{
		SlackID:   "U001",
		FirstName: "Jane",
		LastName:  "Smith",
		ORCID:     "0000-0001-2345-6789",
		Role:      "Grad student",
	}
	if err := UpsertMember(db, member); err != nil {
		t.Fatalf("UpsertMember insert failed: %v", err)
	}

	got, err := GetMemberBySlackID(db, "U001")
	if err != nil {
		t.Fatalf("GetMemberBySlackID failed: %v", err)
	}
	if got.FirstName != "Jane" || got.LastName != "Smith" || got.Role != "Grad student" {
		t.Fatalf("unexpected member: %+v", got)
	}

	member.Role = "Postdoc"
	member.Aliases = "J."
	if err := UpsertMember(db, member); err != nil {
		t.Fatalf("UpsertMember update failed: %v", err)
	}

	got, err = GetMemberBySlackID(db, "U001")
	if err != nil {
		t.Fatalf("GetMemberBySlackID after update failed: %v", err)
	}
	if got.Role != "Postdoc" || got.Aliases != "J." {
		t.Fatalf("expected updated member, got %+v", got)
	}

	members, err := LoadRosterMembers(db)
	if err != nil {
		t.Fatalf("LoadRosterMembers failed: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("upsert must not duplicate rows, got %d members", len(members))
	}
}

func TestGetMemberBySlackIDMissing(t *testing.T) {
	db := newTestDB(t)
	if _, err := GetMemberBySlackID(db, "U404"); err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestLedgerAppendAndLoadTitles(t *testing.T) {
	db := newTestDB(t)

	entries := []LedgerEntry{
		{
			Title:             "Paper A",
			FirstAuthor:       "Smith, Jane",
			Authors:           "Smith, Jane; Doe, John",
			Date:              time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			Publisher:         "ApJ",
			Link:              "https://ui.adsabs.harvard.edu/abs/2026ApJ...1S/abstract",
			RosterFirstAuthor: true,
			RosterCoauthors:   1,
		},
		{Title: "Paper B"},
	}
	inserted, err := AppendLedgerEntries(db, entries)
	if err != nil {
		t.Fatalf("AppendLedgerEntries failed: %v", err)
	}
	if inserted != 2 {
		t.Fatalf("expected 2 inserted, got %d", inserted)
	}

	titles, err := LoadSeenTitles(db)
	if err != nil {
		t.Fatalf("LoadSeenTitles failed: %v", err)
	}
	if len(titles) != 2 || !titles["Paper A"] || !titles["Paper B"] {
		t.Fatalf("unexpected titles: %v", titles)
	}
}

func TestLedgerRejectsDuplicateTitle(t *testing.T) {
	db := newTestDB(t)

	if _, err := AppendLedgerEntries(db, []LedgerEntry{{Title: "Paper A"}}); err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	if _, err := AppendLedgerEntries(db, []LedgerEntry{{Title: "Paper A"}}); err == nil {
		t.Fatal("expected unique title constraint to reject duplicate append")
	}
}

func TestAppendLedgerEntriesEmpty(t *testing.T) {
	db := newTestDB(t)
	inserted, err := AppendLedgerEntries(db, nil)
	if err != nil {
		t.Fatalf("AppendLedgerEntries(nil) failed: %v", err)
	}
	if inserted != 0 {
		t.Fatalf("expected 0 inserted, got %d", inserted)
	}
}

func TestLoadRosterWithAliasOverrides(t *testing.T) {
	db := newTestDB(t)

	if err := UpsertMember(db, RosterMember{
		SlackID:   "U001",
		FirstName: "Zhou",
		LastName:  "Li",
		ORCID:     "0000-0001-2345-6789",
	}); err != nil {
		t.Fatalf("UpsertMember failed: %v", err)
	}

	cfg := Config{AliasOverrides: []AliasOverride{{LastName: "Li", Alias: "Z"}}}
	roster, err := LoadRoster(db, cfg)
	if err != nil {
		t.Fatalf("LoadRoster failed: %v", err)
	}

	if _, ok := roster.Match("Li, Z."); !ok {
		t.Fatal("expected configured alias to match after roster load")
	}
	if member, ok := roster.BySlackID("U001"); !ok || member.LastName != "Li" {
		t.Fatalf("BySlackID lookup failed: %+v ok=%v", member, ok)
	}
}
