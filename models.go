package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type RosterMember struct {
	ID        int64
	SlackID   string // Slack user ID (immutable, keys profile upserts)
	FirstName string
	LastName  string
	Aliases   string // comma-separated extra first-name variants or initials
	ORCID     string
	Role      string
	UpdatedAt time.Time
}

type PaperRecord struct {
	Title     string
	Abstract  string
	Authors   []string // byline order, each "Last, First Middle"
	Date      time.Time
	Citations int
	Reads     int
	Keywords  []string
	Publisher string
	Link      string
}

// LedgerEntry is the persisted projection of an announced paper.
// Title is the dedup key: exact, case-sensitive.
type LedgerEntry struct {
	ID                int64
	Title             string
	FirstAuthor       string
	Authors           string // "; "-joined byline
	Date              time.Time
	Publisher         string
	Keywords          string // "; "-joined
	Link              string
	Abstract          string
	RosterFirstAuthor bool
	RosterCoauthors   int
	AnnouncedAt       time.Time
}

type MatchResult struct {
	IsFirstAuthor   bool
	RosterCoauthors int
	MatchedSlackIDs []string // byline order, deduplicated per member
}

// NewLedgerEntry projects a classified paper into its persisted form.
func NewLedgerEntry(paper PaperRecord, res MatchResult) LedgerEntry {
	firstAuthor := ""
	if len(paper.Authors) > 0 {
		firstAuthor = paper.Authors[0]
	}
	return LedgerEntry{
		Title:             paper.Title,
		FirstAuthor:       firstAuthor,
		Authors:           strings.Join(paper.Authors, "; "),
		Date:              paper.Date,
		Publisher:         paper.Publisher,
		Keywords:          strings.Join(paper.Keywords, "; "),
		Link:              paper.Link,
		Abstract:          paper.Abstract,
		RosterFirstAuthor: res.IsFirstAuthor,
		RosterCoauthors:   res.RosterCoauthors,
	}
}

// parsePubDate parses an ADS pubdate like "2026-06-00" or "2026-06-15".
// ADS uses 00 for an unknown month or day; both collapse to the first.
func parsePubDate(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) < 2 {
		return time.Time{}, fmt.Errorf("unexpected pubdate format %q", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("unexpected pubdate year in %q", s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("unexpected pubdate month in %q", s)
	}
	if month < 1 || month > 12 {
		month = 1
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

// SearchWindow returns the entdate range ending now and reaching back
// the configured number of weeks.
func SearchWindow(cfg Config, now time.Time) (time.Time, time.Time) {
	weeks := cfg.SearchWindowWeeks
	if weeks < 1 {
		weeks = 1
	}
	return now.AddDate(0, 0, -7*weeks), now
}
