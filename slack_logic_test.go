package main

import (
	"reflect"
	"testing"
)

func TestIsRecentPapersRequest(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"show me the latest papers from <@U123>", true},
		{"recent paper by <@U123> please", true},
		{"papers, latest ones", true},
		{"what are the LATEST PAPERS", true},
		{"latest news please", false},
		{"any papers?", false},
		{"how are you", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isRecentPapersRequest(tt.text); got != tt.want {
			t.Errorf("isRecentPapersRequest(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestExtractUserTags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"single tag", "latest papers from <@U123>", []string{"U123"}},
		{"multiple tags", "papers from <@U123> and <@U456>", []string{"U123", "U456"}},
		{"excludes bot", "<@UBOT> latest papers from <@U123>", []string{"U123"}},
		{"no tags", "latest papers", nil},
		{"malformed tag", "latest papers from <@u123>", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractUserTags(tt.text, "UBOT")
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("extractUserTags(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractCount(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"latest 5 papers from <@U123>", 5},
		{"latest papers from <@U123>", 1},
		{"latest 0 papers", 1},
		{"give me 12 recent papers", 12},
		{"5 papers", 1}, // needs surrounding spaces
	}
	for _, tt := range tests {
		if got := extractCount(tt.text); got != tt.want {
			t.Errorf("extractCount(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestMatchCannedTrigger(t *testing.T) {
	triggers := []string{"thank", "well done"}
	if !matchCannedTrigger("Thanks for the round up!", triggers) {
		t.Error("expected case-insensitive substring match on 'thank'")
	}
	if !matchCannedTrigger("WELL DONE bot", triggers) {
		t.Error("expected match on 'well done'")
	}
	if matchCannedTrigger("latest papers please", triggers) {
		t.Error("unexpected match")
	}
}

func TestManualTriggerRegex(t *testing.T) {
	if !manualTriggerRegex.MatchString("<@UBOT> PAPER MANUAL") {
		t.Error("expected exact-case trigger to match")
	}
	if manualTriggerRegex.MatchString("paper manual") {
		t.Error("trigger is case-sensitive on purpose")
	}
	if manualTriggerRegex.MatchString("PAPERS MANUALLY") {
		t.Error("trigger requires word boundaries")
	}
}
