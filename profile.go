package main

import (
	"database/sql"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/slack-go/slack"
)

const (
	profileModalCallbackID = "profile_modal"

	profileBlockFirstName  = "profile_first_name"
	profileBlockLastName   = "profile_last_name"
	profileBlockAliases    = "profile_aliases"
	profileBlockORCID      = "profile_orcid"
	profileBlockRole       = "profile_role"
	profileActionFirstName = "first_name_input"
	profileActionLastName  = "last_name_input"
	profileActionAliases   = "aliases_input"
	profileActionORCID     = "orcid_input"
	profileActionRole      = "role_input"
)

var orcidRegex = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{3}[\dX]$`)

// validORCID reports whether a string is a well-formed ORCID iD, with or
// without an https://orcid.org/ prefix.
func validORCID(s string) bool {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "https://orcid.org/")
	s = strings.TrimPrefix(s, "http://orcid.org/")
	return orcidRegex.MatchString(s)
}

// normalizeORCID strips any orcid.org URL prefix, leaving the bare iD.
func normalizeORCID(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "https://orcid.org/")
	s = strings.TrimPrefix(s, "http://orcid.org/")
	return s
}

func openProfileModal(api *slack.Client, db *sql.DB, cfg Config, cmd slack.SlashCommand) {
	// Prefill from the existing roster record when there is one.
	existing, err := GetMemberBySlackID(db, cmd.UserID)
	if err != nil && err != sql.ErrNoRows {
		log.Printf("profile modal load error user=%s: %v", cmd.UserID, err)
	}

	textInput := func(actionID, placeholder, initial string) *slack.PlainTextInputBlockElement {
		el := slack.NewPlainTextInputBlockElement(
			slack.NewTextBlockObject(slack.PlainTextType, placeholder, false, false),
			actionID,
		)
		if initial != "" {
			el = el.WithInitialValue(initial)
		}
		return el
	}
	inputBlock := func(blockID, label string, el *slack.PlainTextInputBlockElement, optional bool) *slack.InputBlock {
		block := slack.NewInputBlock(
			blockID,
			slack.NewTextBlockObject(slack.PlainTextType, label, false, false),
			nil,
			el,
		)
		block.Optional = optional
		return block
	}

	blocks := []slack.Block{
		inputBlock(profileBlockFirstName, "First name",
			textInput(profileActionFirstName, "Jane", existing.FirstName), false),
		inputBlock(profileBlockLastName, "Last name",
			textInput(profileActionLastName, "Smith", existing.LastName), false),
		inputBlock(profileBlockAliases, "Other first-name spellings (comma-separated)",
			textInput(profileActionAliases, "J., Janey", existing.Aliases), true),
		inputBlock(profileBlockORCID, "ORCID iD",
			textInput(profileActionORCID, "0000-0001-2345-6789", existing.ORCID), false),
		inputBlock(profileBlockRole, "Role",
			textInput(profileActionRole, "Grad student", existing.Role), true),
	}

	view := slack.ModalViewRequest{
		Type:       slack.VTModal,
		Title:      slack.NewTextBlockObject(slack.PlainTextType, "Your profile", false, false),
		Close:      slack.NewTextBlockObject(slack.PlainTextType, "Cancel", false, false),
		Submit:     slack.NewTextBlockObject(slack.PlainTextType, "Save", false, false),
		CallbackID: profileModalCallbackID,
		Blocks:     slack.Blocks{BlockSet: blocks},
	}
	if _, err := api.OpenView(cmd.TriggerID, view); err != nil {
		log.Printf("profile modal open error user=%s: %v", cmd.UserID, err)
		postEphemeralTo(api, cmd.ChannelID, cmd.UserID, fmt.Sprintf("Unable to open profile form: %v", err))
	}
}

func handleProfileSubmit(api *slack.Client, db *sql.DB, cfg Config, cb slack.InteractionCallback) {
	if cb.View.State == nil {
		return
	}
	values := cb.View.State.Values

	member := RosterMember{
		SlackID:   cb.User.ID,
		FirstName: strings.TrimSpace(values[profileBlockFirstName][profileActionFirstName].Value),
		LastName:  strings.TrimSpace(values[profileBlockLastName][profileActionLastName].Value),
		Aliases:   strings.TrimSpace(values[profileBlockAliases][profileActionAliases].Value),
		ORCID:     normalizeORCID(values[profileBlockORCID][profileActionORCID].Value),
		Role:      strings.TrimSpace(values[profileBlockRole][profileActionRole].Value),
	}

	if member.FirstName == "" || member.LastName == "" {
		log.Printf("profile submit rejected user=%s: missing name", cb.User.ID)
		return
	}
	if !validORCID(member.ORCID) {
		log.Printf("profile submit rejected user=%s: bad orcid %q", cb.User.ID, member.ORCID)
		openDM(api, cb.User.ID, fmt.Sprintf("%s That ORCID iD (%s) doesn't look right, it should be "+
			"like 0000-0001-2345-6789. Give `/profile` another go!", britishConsternation(), member.ORCID))
		return
	}

	if err := UpsertMember(db, member); err != nil {
		log.Printf("profile upsert error user=%s: %v", cb.User.ID, err)
		openDM(api, cb.User.ID, fmt.Sprintf("%s I couldn't save your profile, sorry. Try again later?", britishConsternation()))
		return
	}
	log.Printf("profile saved user=%s name=%s %s orcid=%s", cb.User.ID, member.FirstName, member.LastName, member.ORCID)
	openDM(api, cb.User.ID, fmt.Sprintf("Splendid! Your profile is saved, %s. I'll keep an eye on ADS for your papers :eyes:", member.FirstName))
}

func openDM(api *slack.Client, userID, text string) {
	channel, _, _, err := api.OpenConversation(&slack.OpenConversationParameters{
		Users: []string{userID},
	})
	if err != nil {
		log.Printf("Error opening DM with %s: %v", userID, err)
		return
	}
	if _, _, err := api.PostMessage(channel.ID, slack.MsgOptionText(text, false)); err != nil {
		log.Printf("Error sending DM to %s: %v", userID, err)
	}
}

func postEphemeralTo(api *slack.Client, channelID, userID, text string) {
	_, err := api.PostEphemeral(channelID, userID, slack.MsgOptionText(text, false))
	if err != nil {
		log.Printf("Error posting ephemeral: %v", err)
	}
}
