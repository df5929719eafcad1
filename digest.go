package main

import (
	"database/sql"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/slack-go/slack"
)

// RoundUpResult tracks per-run counters for the publication round-up.
type RoundUpResult struct {
	MembersQueried int
	Fetched        int
	New            int
	Announced      int
	Errors         []string
}

// RunRoundUp queries ADS for every roster member with an ORCID, filters
// out papers already in the ledger, announces the rest to the papers
// channel, and records each paper after its announcement succeeds.
// Recording happens after announcing so a crash mid-run re-announces a
// paper rather than silently dropping it.
func RunRoundUp(cfg Config, db *sql.DB, api *slack.Client) (RoundUpResult, error) {
	var result RoundUpResult

	roster, err := LoadRoster(db, cfg)
	if err != nil {
		return result, fmt.Errorf("loading roster: %w", err)
	}
	seen, err := LoadSeenTitles(db)
	if err != nil {
		return result, fmt.Errorf("loading ledger titles: %w", err)
	}

	introPosted := false
	for _, member := range roster.Members() {
		if member.ORCID == "" {
			continue
		}
		result.MembersQueried++

		papers, err := SearchPapers(cfg, "orcid:"+member.ORCID, true)
		if err != nil {
			log.Printf("round-up search error orcid=%s: %v", member.ORCID, err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s %s: %v", member.FirstName, member.LastName, err))
			continue
		}
		result.Fetched += len(papers)

		fresh := FilterNew(papers, seen)
		result.New += len(fresh)

		for _, paper := range fresh {
			res := Classify(paper, roster)

			if !introPosted {
				intro := fmt.Sprintf("It's the %s, which means it's time for our paper round up! "+
					"Let's see what everyone's been publishing recently.",
					formatDateOrdinal(time.Now().In(cfg.Location)))
				_, _, err := api.PostMessage(cfg.PapersChannelID, slack.MsgOptionText(intro, false))
				if err != nil {
					log.Printf("round-up intro post error: %v", err)
				}
				introPosted = true
			}

			if err := announcePaper(api, cfg, roster, paper, res); err != nil {
				log.Printf("round-up announce error title=%q: %v", paper.Title, err)
				result.Errors = append(result.Errors, fmt.Sprintf("announce %q: %v", paper.Title, err))
				continue
			}
			result.Announced++

			// Mark seen in-memory too: the same paper can surface again
			// under a coauthor's ORCID later in this run.
			seen[paper.Title] = true
			if _, err := AppendLedgerEntries(db, []LedgerEntry{NewLedgerEntry(paper, res)}); err != nil {
				log.Printf("round-up ledger append error title=%q: %v", paper.Title, err)
				result.Errors = append(result.Errors, fmt.Sprintf("record %q: %v", paper.Title, err))
			}
		}
	}

	log.Printf("round-up done members=%d fetched=%d new=%d announced=%d errors=%d",
		result.MembersQueried, result.Fetched, result.New, result.Announced, len(result.Errors))
	return result, nil
}

var announceAdjectives = []string{"Splendid", "Tremendous", "Brilliant", "Excellent", "Fantastic", "Spectacular"}

// announcePaper posts the announcement blocks to the papers channel and
// replies in thread with the abstract.
func announcePaper(api *slack.Client, cfg Config, roster *Roster, paper PaperRecord, res MatchResult) error {
	adjective := announceAdjectives[rand.Intn(len(announceAdjectives))]
	mentions := joinMentions(res.MatchedSlackIDs)

	preface := fmt.Sprintf("Look what I found! :tada: %s work from %s :clap:", adjective, mentions)
	outro := fmt.Sprintf("I put the abstract in the thread for anyone interested in learning more "+
		"- again, a big congratulations to %s for this awesome paper", mentions)

	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, sanitizeTags(paper.Title), false, false),
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, preface, false, false), nil, nil,
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, FormatAuthorList(paper.Authors, roster), false, false), nil, nil,
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("<%s|*ADS Link*>", paper.Link), false, false), nil, nil,
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, outro, false, false), nil, nil,
		),
	}

	_, ts, err := api.PostMessage(cfg.PapersChannelID,
		slack.MsgOptionText("Congrats on your new paper!", false),
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionDisableLinkUnfurl(),
	)
	if err != nil {
		return err
	}

	abstract := paper.Abstract
	if abstract == "" {
		abstract = "(no abstract available)"
	}
	_, _, err = api.PostMessage(cfg.PapersChannelID,
		slack.MsgOptionText("Your paper abstract:", false),
		slack.MsgOptionBlocks(slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, abstract, false, false), nil, nil,
		)),
		slack.MsgOptionTS(ts),
	)
	if err != nil {
		log.Printf("announce abstract thread error title=%q: %v", paper.Title, err)
	}
	return nil
}

// StartRoundUpScheduler runs the round-up on a 5-field cron schedule
// (minute hour day-of-month month day-of-week), e.g. "32 9 * * 3" for
// Wednesdays at 09:32.
func StartRoundUpScheduler(cfg Config, db *sql.DB, api *slack.Client) {
	schedule := strings.TrimSpace(cfg.RoundUpSchedule)
	if schedule == "" {
		log.Println("Round-up disabled (round_up_schedule not set)")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid round_up_schedule '%s': %v, round-up disabled", schedule, err)
		return
	}
	log.Printf("Round-up scheduled (cron: %s)", schedule)

	go func() {
		for {
			now := time.Now().In(cfg.Location)
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next round-up at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)

			result, err := RunRoundUp(cfg, db, api)
			if err != nil {
				log.Printf("Round-up error: %v", err)
				continue
			}
			if result.Announced == 0 {
				log.Println("Round-up: no new papers")
			}
		}
	}()
}
