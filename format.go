package main

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// FormatAuthorList renders a byline as a single italic mrkdwn line, with
// roster members reordered to "First Last" and bolded. Unparseable author
// strings pass through unmodified.
func FormatAuthorList(authors []string, roster *Roster) string {
	rendered := make([]string, 0, len(authors))
	for _, author := range authors {
		last, first, ok := splitAuthor(author)
		if !ok {
			rendered = append(rendered, author)
			continue
		}
		name := first + " " + last
		if _, matched := roster.Match(author); matched {
			name = "*" + name + "*"
		}
		rendered = append(rendered, name)
	}
	return "_Authors: " + strings.Join(rendered, ", ") + "_"
}

// GroupPapers partitions a batch into first-author papers and
// coauthor-only papers, preserving input order within each group.
func GroupPapers(papers []PaperRecord, roster *Roster) (firstAuthor, coauthor []PaperRecord) {
	for _, p := range papers {
		if Classify(p, roster).IsFirstAuthor {
			firstAuthor = append(firstAuthor, p)
		} else {
			coauthor = append(coauthor, p)
		}
	}
	return firstAuthor, coauthor
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// sanitizeTags strips <...> spans so paper titles cannot smuggle Slack
// user or channel references into posted messages.
func sanitizeTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// joinMentions renders Slack user IDs as mentions joined with commas and
// a final "and".
func joinMentions(ids []string) string {
	mentions := make([]string, 0, len(ids))
	for _, id := range ids {
		mentions = append(mentions, fmt.Sprintf("<@%s>", id))
	}
	switch len(mentions) {
	case 0:
		return ""
	case 1:
		return mentions[0]
	default:
		return strings.Join(mentions[:len(mentions)-1], ", ") + " and " + mentions[len(mentions)-1]
	}
}

func daySuffix(d int) string {
	if d >= 11 && d <= 13 {
		return "th"
	}
	switch d % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// formatDateOrdinal renders a date like "5th August 2026".
func formatDateOrdinal(t time.Time) string {
	return fmt.Sprintf("%d%s %s %d", t.Day(), daySuffix(t.Day()), t.Month(), t.Year())
}

// formatMonthYear renders a publication date like "August 2026".
func formatMonthYear(t time.Time) string {
	return fmt.Sprintf("%s %d", t.Month(), t.Year())
}
