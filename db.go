package main

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS members (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		slack_id   TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		last_name  TEXT NOT NULL,
		aliases    TEXT DEFAULT '',
		orcid      TEXT NOT NULL,
		role       TEXT DEFAULT '',
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_members_last_name ON members(last_name);

	CREATE TABLE IF NOT EXISTS papers (
		id                  INTEGER PRIMARY KEY AUTOINCREMENT,
		title               TEXT NOT NULL,
		first_author        TEXT DEFAULT '',
		authors             TEXT DEFAULT '',
		pub_date            DATETIME,
		publisher           TEXT DEFAULT '',
		keywords            TEXT DEFAULT '',
		link                TEXT DEFAULT '',
		abstract            TEXT DEFAULT '',
		roster_first_author INTEGER NOT NULL DEFAULT 0,
		roster_coauthors    INTEGER NOT NULL DEFAULT 0,
		announced_at        DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_papers_title ON papers(title);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// --- Roster store ---

func LoadRosterMembers(db *sql.DB) ([]RosterMember, error) {
	rows, err := db.Query(
		`SELECT id, slack_id, first_name, last_name, aliases, orcid, role, updated_at
		 FROM members ORDER BY last_name, first_name, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []RosterMember
	for rows.Next() {
		var m RosterMember
		err := rows.Scan(
			&m.ID, &m.SlackID, &m.FirstName, &m.LastName,
			&m.Aliases, &m.ORCID, &m.Role, &m.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// UpsertMember inserts a member or updates the existing record for the
// same Slack user. Members are never deleted, only updated.
func UpsertMember(db *sql.DB, m RosterMember) error {
	_, err := db.Exec(
		`INSERT INTO members (slack_id, first_name, last_name, aliases, orcid, role)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(slack_id) DO UPDATE SET
		   first_name = excluded.first_name,
		   last_name  = excluded.last_name,
		   aliases    = excluded.aliases,
		   orcid      = excluded.orcid,
		   role       = excluded.role,
		   updated_at = CURRENT_TIMESTAMP`,
		m.SlackID, m.FirstName, m.LastName, m.Aliases, m.ORCID, m.Role,
	)
	return err
}

func GetMemberBySlackID(db *sql.DB, slackID string) (RosterMember, error) {
	var m RosterMember
	err := db.QueryRow(
		`SELECT id, slack_id, first_name, last_name, aliases, orcid, role, updated_at
		 FROM members WHERE slack_id = ?`,
		slackID,
	).Scan(
		&m.ID, &m.SlackID, &m.FirstName, &m.LastName,
		&m.Aliases, &m.ORCID, &m.Role, &m.UpdatedAt,
	)
	return m, err
}

// --- Paper ledger ---

// LoadSeenTitles returns the set of already-announced paper titles.
func LoadSeenTitles(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query(`SELECT title FROM papers`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	titles := make(map[string]bool)
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		titles[title] = true
	}
	return titles, rows.Err()
}

// AppendLedgerEntries records announced papers in one transaction.
func AppendLedgerEntries(db *sql.DB, entries []LedgerEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO papers (title, first_author, authors, pub_date, publisher, keywords, link, abstract, roster_first_author, roster_coauthors)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, e := range entries {
		_, err := stmt.Exec(
			e.Title, e.FirstAuthor, e.Authors, e.Date, e.Publisher,
			e.Keywords, e.Link, e.Abstract, e.RosterFirstAuthor, e.RosterCoauthors,
		)
		if err != nil {
			return inserted, err
		}
		inserted++
	}

	return inserted, tx.Commit()
}

// LoadRoster builds the immutable classification snapshot from the member
// table plus the configured alias overrides.
func LoadRoster(db *sql.DB, cfg Config) (*Roster, error) {
	members, err := LoadRosterMembers(db)
	if err != nil {
		return nil, err
	}
	return NewRoster(members, cfg.AliasMap()), nil
}
