package main

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Roster is an immutable snapshot of the member table with lookup fields
// precomputed at load time. Classification calls never touch the database.
type Roster struct {
	byLast    map[string][]rosterEntry
	bySlackID map[string]RosterMember
	members   []RosterMember
}

type rosterEntry struct {
	member  RosterMember
	aliases []string // lowercased accepted first-name variants
}

// NewRoster builds a snapshot from member records plus configured alias
// overrides (keyed by normalized last name). Aliases are reduced to their
// comparison form at build time, so a stored initial like "Y." compares
// as "y".
func NewRoster(members []RosterMember, aliasOverrides map[string][]string) *Roster {
	r := &Roster{
		byLast:    make(map[string][]rosterEntry),
		bySlackID: make(map[string]RosterMember, len(members)),
		members:   members,
	}
	for _, m := range members {
		key := normalizeLastName(m.LastName)
		if key == "" {
			continue
		}
		aliases := firstNameVariants(m)
		aliases = append(aliases, aliasOverrides[key]...)
		for i, alias := range aliases {
			aliases[i] = firstNameToken(alias)
		}
		r.byLast[key] = append(r.byLast[key], rosterEntry{member: m, aliases: aliases})
		if m.SlackID != "" {
			r.bySlackID[m.SlackID] = m
		}
	}
	return r
}

func (r *Roster) Members() []RosterMember {
	return r.members
}

func (r *Roster) BySlackID(id string) (RosterMember, bool) {
	m, ok := r.bySlackID[id]
	return m, ok
}

// Match decides whether a free-text "Last, First Middle" author string
// refers to a roster member. Strings without exactly one comma are
// unparseable and never match. The first textual match wins: two members
// sharing a last name and first initial are indistinguishable, which is
// accepted behavior rather than something to resolve by scoring.
func (r *Roster) Match(author string) (RosterMember, bool) {
	last, first, ok := splitAuthor(author)
	if !ok {
		return RosterMember{}, false
	}
	entries, ok := r.byLast[normalizeLastName(last)]
	if !ok {
		return RosterMember{}, false
	}

	candidate := firstNameToken(first)
	if candidate == "" {
		return RosterMember{}, false
	}
	for _, e := range entries {
		for _, alias := range e.aliases {
			if aliasMatches(alias, candidate) {
				return e.member, true
			}
		}
	}
	return RosterMember{}, false
}

// splitAuthor splits a byline author into last and first segments.
// Exactly one comma is required; anything else is unparseable.
func splitAuthor(author string) (last, first string, ok bool) {
	if strings.Count(author, ",") != 1 {
		return "", "", false
	}
	parts := strings.SplitN(author, ",", 2)
	last = strings.TrimSpace(parts[0])
	first = strings.TrimSpace(parts[1])
	if last == "" || first == "" {
		return "", "", false
	}
	return last, first, true
}

// firstNameToken extracts the comparison token from a first-name segment:
// the first whitespace-separated token, lowercased, with a bare initial
// ("J.") reduced to its single letter.
func firstNameToken(first string) string {
	fields := strings.Fields(first)
	if len(fields) == 0 {
		return ""
	}
	token := strings.ToLower(fields[0])
	if len(token) == 2 && token[1] == '.' {
		return token[:1]
	}
	return token
}

// aliasMatches reports whether a roster alias accepts a candidate first
// name. Aliases may be full names or bare initials; initials on either
// side compare first characters only, full names match by prefix.
func aliasMatches(alias, candidate string) bool {
	if alias == "" || candidate == "" {
		return false
	}
	if len(alias) == 1 || len(candidate) == 1 {
		return alias[0] == candidate[0]
	}
	return strings.HasPrefix(candidate, alias)
}

// firstNameVariants lists the accepted lowercased first-name forms for a
// member: the recorded first name plus any comma-separated aliases.
func firstNameVariants(m RosterMember) []string {
	var out []string
	if name := strings.ToLower(strings.TrimSpace(m.FirstName)); name != "" {
		out = append(out, name)
	}
	for _, alias := range strings.Split(m.Aliases, ",") {
		alias = strings.ToLower(strings.TrimSpace(alias))
		if alias != "" {
			out = append(out, alias)
		}
	}
	return out
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeLastName lowercases a last name and strips diacritics so that
// byline spellings like "Gonzalez" match roster entries like "González".
func normalizeLastName(s string) string {
	stripped, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		stripped = s
	}
	return strings.ToLower(strings.TrimSpace(stripped))
}
