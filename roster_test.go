package main

import "testing"

func testRoster() *Roster {
	members := []RosterMember{
		{SlackID: "U1", FirstName: "Jane", LastName: "Smith", ORCID: "0000-0001-0000-0001"},
		{SlackID: "U2", FirstName: "Tom", LastName: "Wagg", ORCID: "0000-0001-0000-0002"},
		{SlackID: "U3", FirstName: "José", LastName: "González", ORCID: "0000-0001-0000-0003"},
		{SlackID: "U4", FirstName: "David", LastName: "Wang", Aliases: "Y.", ORCID: "0000-0001-0000-0004"},
	}
	return NewRoster(members, nil)
}

func TestRosterMatch(t *testing.T) {
	roster := testRoster()

	tests := []struct {
		name    string
		author  string
		wantID  string
		matched bool
	}{
		{name: "full first name", author: "Smith, Jane", wantID: "U1", matched: true},
		{name: "bare initial", author: "Smith, J.", wantID: "U1", matched: true},
		{name: "abbreviated first name", author: "Wagg, Tom", wantID: "U2", matched: true},
		{name: "longer byline form of roster name", author: "Wagg, Tommy", wantID: "U2", matched: true},
		{name: "middle names ignored", author: "Smith, Jane M.", wantID: "U1", matched: true},
		{name: "diacritics in byline", author: "González, José", wantID: "U3", matched: true},
		{name: "diacritics stripped in byline", author: "Gonzalez, Jose", wantID: "U3", matched: true},
		{name: "alias initial", author: "Wang, Yichen", wantID: "U4", matched: true},
		{name: "primary name still matches with alias", author: "Wang, David", wantID: "U4", matched: true},
		{name: "wrong first name", author: "Smith, Ann", matched: false},
		{name: "unknown last name", author: "Doe, John", matched: false},
		{name: "no comma", author: "Jane Smith", matched: false},
		{name: "two commas", author: "Smith, Jane, Jr.", matched: false},
		{name: "empty string", author: "", matched: false},
		{name: "comma only", author: ",", matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			member, ok := roster.Match(tt.author)
			if ok != tt.matched {
				t.Fatalf("Match(%q) matched=%v, want %v", tt.author, ok, tt.matched)
			}
			if ok && member.SlackID != tt.wantID {
				t.Fatalf("Match(%q) = %s, want %s", tt.author, member.SlackID, tt.wantID)
			}
		})
	}
}

func TestRosterMatchFirstEntryWins(t *testing.T) {
	// Two members sharing last name and first initial are indistinguishable;
	// the first roster entry wins.
	members := []RosterMember{
		{SlackID: "U1", FirstName: "James", LastName: "Lee", ORCID: "0000-0001-0000-0001"},
		{SlackID: "U2", FirstName: "Julia", LastName: "Lee", ORCID: "0000-0001-0000-0002"},
	}
	roster := NewRoster(members, nil)

	member, ok := roster.Match("Lee, J.")
	if !ok || member.SlackID != "U1" {
		t.Fatalf("expected ambiguous initial to resolve to first entry, got %+v ok=%v", member, ok)
	}

	if member, ok := roster.Match("Lee, Julia"); !ok || member.SlackID != "U2" {
		t.Fatalf("expected full name to resolve to Julia, got %+v ok=%v", member, ok)
	}
}

func TestRosterAliasOverrides(t *testing.T) {
	members := []RosterMember{
		{SlackID: "U1", FirstName: "Zhou", LastName: "Li", ORCID: "0000-0001-0000-0001"},
	}
	overrides := map[string][]string{"li": {"z"}}
	roster := NewRoster(members, overrides)

	if _, ok := roster.Match("Li, Z."); !ok {
		t.Fatal("expected configured alias initial to match")
	}
	if _, ok := roster.Match("Li, Zhou"); !ok {
		t.Fatal("expected primary first name to still match")
	}
}

func TestAliasMatchesInitialForms(t *testing.T) {
	// A single-letter roster alias accepts any first name with that initial.
	for _, candidate := range []string{"j", "jane", "james"} {
		if !aliasMatches("j", candidate) {
			t.Fatalf("expected alias 'j' to match %q", candidate)
		}
	}
	if aliasMatches("j", "ann") {
		t.Fatal("expected alias 'j' to reject 'ann'")
	}

	// A full-name alias accepts a bare initial with the same first letter.
	if !aliasMatches("jane", "j") {
		t.Fatal("expected alias 'jane' to match bare initial 'j'")
	}
	// And matches by prefix against full candidates.
	if !aliasMatches("jane", "janet") {
		t.Fatal("expected alias 'jane' to prefix-match 'janet'")
	}
	if aliasMatches("jane", "jan") {
		t.Fatal("expected alias 'jane' to reject shorter candidate 'jan'")
	}
}

func TestFirstNameToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jane", "jane"},
		{"Jane M.", "jane"},
		{"J.", "j"},
		{"J. R.", "j"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := firstNameToken(tt.in); got != tt.want {
			t.Fatalf("firstNameToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeLastName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Smith", "smith"},
		{"  Smith ", "smith"},
		{"González", "gonzalez"},
		{"Müller", "muller"},
		{"Þórsson", "þorsson"}, // no combining marks to strip in the thorn itself
	}
	for _, tt := range tests {
		if got := normalizeLastName(tt.in); got != tt.want {
			t.Fatalf("normalizeLastName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
