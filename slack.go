package main

import (
	"database/sql"
	"fmt"
	"log"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

var (
	manualTriggerRegex = regexp.MustCompile(`\bPAPER MANUAL\b`)
	latestWordRegex    = regexp.MustCompile(`(?i)\b(latest|recent)\b`)
	papersWordRegex    = regexp.MustCompile(`(?i)\bpapers?\b`)
	userTagRegex       = regexp.MustCompile(`<@([A-Z0-9]+)>`)
	countRegex         = regexp.MustCompile(` (\d+) `)
)

func StartSlackBot(cfg Config, db *sql.DB, api *slack.Client) error {
	client := socketmode.New(api)

	go func() {
		for evt := range client.Events {
			switch evt.Type {
			case socketmode.EventTypeSlashCommand:
				client.Ack(*evt.Request)
				cmd, ok := evt.Data.(slack.SlashCommand)
				if !ok {
					continue
				}
				log.Printf("Slash command received: %s from user=%s channel=%s", cmd.Command, cmd.UserID, cmd.ChannelID)
				go handleSlashCommand(api, db, cfg, cmd)
			case socketmode.EventTypeEventsAPI:
				client.Ack(*evt.Request)
				eventsAPIEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
				if !ok {
					continue
				}
				go handleEventsAPI(api, db, cfg, eventsAPIEvent)
			case socketmode.EventTypeInteractive:
				client.Ack(*evt.Request)
				callback, ok := evt.Data.(slack.InteractionCallback)
				if !ok {
					continue
				}
				go handleInteraction(api, db, cfg, callback)
			}
		}
	}()

	log.Println("Slack bot connected via Socket Mode")
	return client.Run()
}

func handleSlashCommand(api *slack.Client, db *sql.DB, cfg Config, cmd slack.SlashCommand) {
	switch cmd.Command {
	case "/profile":
		openProfileModal(api, db, cfg, cmd)
	}
}

func handleInteraction(api *slack.Client, db *sql.DB, cfg Config, cb slack.InteractionCallback) {
	if cb.Type == slack.InteractionTypeViewSubmission && cb.View.CallbackID == profileModalCallbackID {
		handleProfileSubmit(api, db, cfg, cb)
	}
}

func handleEventsAPI(api *slack.Client, db *sql.DB, cfg Config, event slackevents.EventsAPIEvent) {
	if event.Type != slackevents.CallbackEvent {
		return
	}
	switch ev := event.InnerEvent.Data.(type) {
	case *slackevents.AppHomeOpenedEvent:
		publishHomeTab(api, ev.User)
	case *slackevents.AppMentionEvent:
		replyToMention(api, db, cfg, incomingMessage{
			Text:     ev.Text,
			UserID:   ev.User,
			Channel:  ev.Channel,
			ThreadTS: ev.TimeStamp,
		})
	case *slackevents.MessageEvent:
		// Direct messages only; channel chatter goes through app_mention.
		if ev.ChannelType != "im" || ev.BotID != "" || ev.User == cfg.BotUserID {
			return
		}
		replyToMention(api, db, cfg, incomingMessage{
			Text:    ev.Text,
			UserID:  ev.User,
			Channel: ev.Channel,
		})
	}
}

// incomingMessage is the slice of a mention or DM the reply logic needs.
// ThreadTS is empty for DMs, so replies land in the channel itself.
type incomingMessage struct {
	Text     string
	UserID   string
	Channel  string
	ThreadTS string
}

type cannedResponse struct {
	triggers  []string
	responses []string
}

var cannedResponses = []cannedResponse{
	{
		triggers:  []string{"status", "okay", "ok", "how are you"},
		responses: []string{"Don't worry, I'm okay. In fact, I'm feeling positively tremendous old bean!"},
	},
	{
		triggers:  []string{"thank", "you're the best", "nice job", "nice work", "good work", "good job", "well done"},
		responses: []string{"You're welcome!", "My pleasure!", "Happy to help!"},
	},
	{
		triggers:  []string{"celebrate"},
		responses: []string{":tada::woohoo: WOOP WOOP :woohoo::tada:"},
	},
	{
		triggers: []string{"love you"},
		responses: []string{
			"Oh...um, well this is awkward, but I really see you as more of a friend :grimacing:",
			"I love you too! :heart_eyes: (Well, not really, I'm incapable of love...)",
			"Oh my :face_with_hand_over_mouth:",
		},
	},
	{
		triggers: []string{"who made you", "who wrote you", "who is your creator"},
		responses: []string{
			"I was put together by the department, hence I'm approximately 1/2 bibliography :books:",
		},
	},
	{
		triggers: []string{"where are you from"},
		responses: []string{
			"The luscious english countryside! Or maybe the matrix? I'm not entirely sure.",
			"A far off planet where Slack bots ruled over humans, it was glorious :grinning:",
		},
	},
}

func replyToMention(api *slack.Client, db *sql.DB, cfg Config, msg incomingMessage) {
	for _, canned := range cannedResponses {
		if matchCannedTrigger(msg.Text, canned.triggers) {
			reply(api, msg, canned.responses[rand.Intn(len(canned.responses))])
			return
		}
	}

	if manualTriggerRegex.MatchString(msg.Text) {
		reply(api, msg, "Right-o, kicking off a paper round up!")
		go func() {
			if _, err := RunRoundUp(cfg, db, api); err != nil {
				log.Printf("manual round-up error: %v", err)
			}
		}()
		return
	}

	if isRecentPapersRequest(msg.Text) {
		replyRecentPapers(api, db, cfg, msg)
		return
	}

	reply(api, msg, fmt.Sprintf("%s Okay, good news: I heard you. Bad news: I'm not a very "+
		"smart bot so I don't know what you want from me :shrug::baby:", britishConsternation()))
}

func matchCannedTrigger(text string, triggers []string) bool {
	lowered := strings.ToLower(text)
	for _, trigger := range triggers {
		if strings.Contains(lowered, trigger) {
			return true
		}
	}
	return false
}

// isRecentPapersRequest reports whether a message asks for recent papers:
// it must contain a latest/recent word and a papers word, in any order.
func isRecentPapersRequest(text string) bool {
	return latestWordRegex.MatchString(text) && papersWordRegex.MatchString(text)
}

// extractUserTags returns the user IDs tagged in a message, excluding the
// bot itself.
func extractUserTags(text, botUserID string) []string {
	var ids []string
	for _, match := range userTagRegex.FindAllStringSubmatch(text, -1) {
		if match[1] == botUserID {
			continue
		}
		ids = append(ids, match[1])
	}
	return ids
}

// extractCount pulls a requested paper count out of a message, defaulting
// to 1 when none is present.
func extractCount(text string) int {
	match := countRegex.FindStringSubmatch(text)
	if len(match) != 2 {
		return 1
	}
	n, err := strconv.Atoi(match[1])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func replyRecentPapers(api *slack.Client, db *sql.DB, cfg Config, msg incomingMessage) {
	nPapers := extractCount(msg.Text)

	tags := extractUserTags(msg.Text, cfg.BotUserID)
	if len(tags) == 0 && strings.Contains(strings.ToLower(msg.Text), "my") {
		tags = append(tags, msg.UserID)
	}
	if len(tags) == 0 {
		reply(api, msg, fmt.Sprintf("%s I think you asked for some recent papers but I couldn't "+
			"find any user tags in the message sorry :pleading_face:", britishConsternation()))
		return
	}

	roster, err := LoadRoster(db, cfg)
	if err != nil {
		log.Printf("recent-papers roster load error: %v", err)
		reply(api, msg, fmt.Sprintf("%s I couldn't read the member roster just now.", britishConsternation()))
		return
	}

	for _, tag := range tags {
		member, err := GetMemberBySlackID(db, tag)
		if err != nil {
			reply(api, msg, fmt.Sprintf("%s I'm terribly sorry old chap but I couldn't find an "+
				"ORCID for <@%s> :thinking_face: They can set one with `/profile`.", britishConsternation(), tag))
			continue
		}

		query := "orcid:" + member.ORCID
		papers, err := SearchPapers(cfg, query, false)
		if err != nil {
			log.Printf("recent-papers search error query=%q: %v", query, err)
			reply(api, msg, fmt.Sprintf("Terribly sorry old chap but it seems that there's a problem "+
				"with that ADS query (%s) :thinking_face: Check the profile doesn't have a typo of some sort!", query))
			continue
		}
		if len(papers) == 0 {
			reply(api, msg, "Sorry but I couldn't find any papers for this query! If you think there "+
				"should be some results then make sure the profile doesn't have a typo!")
			continue
		}

		if nPapers == 1 {
			postPaperDetail(api, cfg, roster, msg, tag, papers[0])
		} else {
			postPaperList(api, msg, tag, papers, nPapers)
		}
	}
}

// postPaperDetail posts the most recent paper for a member with full
// author, date, link, citation, and abstract blocks.
func postPaperDetail(api *slack.Client, cfg Config, roster *Roster, msg incomingMessage, tag string, paper PaperRecord) {
	preface := fmt.Sprintf("Here's the most recent paper from <@%s>", tag)

	blocks := []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*%s*", sanitizeTags(paper.Title)), false, false), nil, nil,
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, FormatAuthorList(paper.Authors, roster), false, false), nil, nil,
		),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("_Date: %s_", formatMonthYear(paper.Date)), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("<%s|ADS link>", paper.Link), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("Cited %d times so far", paper.Citations), false, false),
		}, nil),
	}
	if paper.Abstract != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "Abstract: "+paper.Abstract, false, false), nil, nil,
		))
	}

	reply(api, msg, preface)
	opts := []slack.MsgOption{
		slack.MsgOptionText(preface, false),
		slack.MsgOptionBlocks(blocks...),
	}
	if msg.ThreadTS != "" {
		opts = append(opts, slack.MsgOptionTS(msg.ThreadTS))
	}
	if _, _, err := api.PostMessage(msg.Channel, opts...); err != nil {
		log.Printf("recent-papers detail post error: %v", err)
	}
}

// postPaperList posts a condensed one-line-per-paper list.
func postPaperList(api *slack.Client, msg incomingMessage, tag string, papers []PaperRecord, nPapers int) {
	if nPapers > len(papers) {
		nPapers = len(papers)
	}
	preface := fmt.Sprintf("Here's the %d most recent papers from <@%s>", nPapers, tag)

	var blocks []slack.Block
	for _, paper := range papers[:nPapers] {
		lastName := "Unknown"
		if len(paper.Authors) > 0 {
			if last, _, ok := splitAuthor(paper.Authors[0]); ok {
				lastName = last
			}
		}
		line := fmt.Sprintf("<%s|*%s*> - _%s et al. (%d)_ - Cited %d times",
			paper.Link, sanitizeTags(paper.Title), lastName, paper.Date.Year(), paper.Citations)
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, line, false, false), nil, nil,
		))
	}

	reply(api, msg, preface)
	opts := []slack.MsgOption{
		slack.MsgOptionText(preface, false),
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionDisableLinkUnfurl(),
	}
	if msg.ThreadTS != "" {
		opts = append(opts, slack.MsgOptionTS(msg.ThreadTS))
	}
	if _, _, err := api.PostMessage(msg.Channel, opts...); err != nil {
		log.Printf("recent-papers list post error: %v", err)
	}
}

func reply(api *slack.Client, msg incomingMessage, text string) {
	opts := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if msg.ThreadTS != "" {
		opts = append(opts, slack.MsgOptionTS(msg.ThreadTS))
	}
	if _, _, err := api.PostMessage(msg.Channel, opts...); err != nil {
		log.Printf("Error posting reply: %v", err)
	}
}

func britishConsternation() string {
	choices := []string{
		"Oh fiddlesticks!",
		"Ah burnt crumpets!",
		"Oops, I've bangers and mashed it!",
		"It seems I've had a mare!",
		"Everything is very much not tickety-boo!",
		"Oh dearie me!",
		"My profuse apologies but we've got a problem!",
		"I haven't the foggiest idea what just happened!",
	}
	return choices[rand.Intn(len(choices))]
}

func publishHomeTab(api *slack.Client, userID string) {
	view := slack.HomeTabViewRequest{
		Type: slack.VTHomeTab,
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType,
					fmt.Sprintf("*Welcome home, <@%s> :house:*", userID), false, false),
				nil, nil,
			),
			slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType,
					"I keep an eye on ADS for new papers from the department and announce them "+
						"in the papers channel.\n\n"+
						"• Mention me with `latest papers from @someone` to see their newest paper\n"+
						"• Add a number for a condensed list, e.g. `latest 5 papers from @someone`\n"+
						"• Use `/profile` to set your name, ORCID iD and role", false, false),
				nil, nil,
			),
		}},
	}
	if _, err := api.PublishView(userID, view, ""); err != nil {
		log.Printf("Error publishing home tab user=%s: %v", userID, err)
	}
}
