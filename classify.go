package main

// Classify walks a paper's byline in order and reports roster involvement:
// whether the first author is a roster member, how many byline positions
// match some member, and the Slack IDs of matched members in byline order.
// Pure function of the paper and the roster snapshot.
func Classify(paper PaperRecord, roster *Roster) MatchResult {
	var res MatchResult
	seen := make(map[string]bool)
	for i, author := range paper.Authors {
		member, ok := roster.Match(author)
		if !ok {
			continue
		}
		if i == 0 {
			res.IsFirstAuthor = true
		}
		res.RosterCoauthors++
		if !seen[member.SlackID] {
			seen[member.SlackID] = true
			res.MatchedSlackIDs = append(res.MatchedSlackIDs, member.SlackID)
		}
	}
	return res
}

// FilterNew returns the papers whose titles are not in the ledger's seen
// set, preserving input order. Titles compare by exact case-sensitive
// equality: a title whose punctuation or unicode drifts between fetches is
// treated as a distinct paper and will be re-announced. The ledger is not
// mutated; callers commit accepted papers separately after announcing.
func FilterNew(papers []PaperRecord, seenTitles map[string]bool) []PaperRecord {
	var out []PaperRecord
	for _, p := range papers {
		if seenTitles[p.Title] {
			continue
		}
		out = append(out, p)
	}
	return out
}
