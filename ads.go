package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const adsPageSize = 200

type adsSearchResponse struct {
	Response adsResponseBody `json:"response"`
}

type adsResponseBody struct {
	NumFound int      `json:"numFound"`
	Docs     []adsDoc `json:"docs"`
}

type adsDoc struct {
	Title         []string `json:"title"`
	Abstract      string   `json:"abstract"`
	Author        []string `json:"author"`
	CitationCount int      `json:"citation_count"`
	ReadCount     int      `json:"read_count"`
	Doctype       string   `json:"doctype"`
	Bibcode       string   `json:"bibcode"`
	Pubdate       string   `json:"pubdate"`
	Keyword       []string `json:"keyword"`
	Pub           string   `json:"pub"`
}

// SearchPapers queries ADS and returns matching papers sorted newest
// first, filtered to the configured doctypes. When pastWindow is set the
// query is restricted to records entered within the search window.
func SearchPapers(cfg Config, query string, pastWindow bool) ([]PaperRecord, error) {
	if cfg.AstronomyCollection {
		query += " collection:astronomy"
	}
	if pastWindow {
		from, to := SearchWindow(cfg, time.Now().In(cfg.Location))
		query += fmt.Sprintf(" entdate:[%s TO %s]", from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	log.Printf("ads search query=%q", query)

	docs, err := searchADS(cfg, query)
	if err != nil {
		return nil, err
	}

	allowed := make(map[string]bool, len(cfg.AllowedDocTypes))
	for _, t := range cfg.AllowedDocTypes {
		allowed[t] = true
	}

	var papers []PaperRecord
	for _, doc := range docs {
		if !allowed[doc.Doctype] {
			continue
		}
		if len(doc.Title) == 0 {
			continue
		}
		date, err := parsePubDate(doc.Pubdate)
		if err != nil {
			log.Printf("ads skip bibcode=%s: %v", doc.Bibcode, err)
			continue
		}
		papers = append(papers, PaperRecord{
			Title:     doc.Title[0],
			Abstract:  doc.Abstract,
			Authors:   doc.Author,
			Date:      date,
			Citations: doc.CitationCount,
			Reads:     doc.ReadCount,
			Keywords:  doc.Keyword,
			Publisher: doc.Pub,
			Link:      fmt.Sprintf("https://ui.adsabs.harvard.edu/abs/%s/abstract", doc.Bibcode),
		})
	}
	log.Printf("ads search done total=%d kept=%d", len(docs), len(papers))
	return papers, nil
}

func searchADS(cfg Config, query string) ([]adsDoc, error) {
	fields := "title,abstract,author,citation_count,read_count,doctype,bibcode,pubdate,keyword,pub"

	var all []adsDoc
	start := 0

	for {
		apiURL := fmt.Sprintf("%s?q=%s&fl=%s&sort=%s&rows=%d&start=%d",
			cfg.ADSBaseURL, url.QueryEscape(query), url.QueryEscape(fields),
			url.QueryEscape("date desc"), adsPageSize, start)

		req, err := http.NewRequest("GET", apiURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+cfg.ADSToken)
		req.Header.Set("Accept", "application/json")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("executing request: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}

		if resp.StatusCode != 200 {
			return nil, fmt.Errorf("ADS API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}

		var result adsSearchResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("parsing response: %w", err)
		}

		all = append(all, result.Response.Docs...)

		start += len(result.Response.Docs)
		if len(result.Response.Docs) < adsPageSize || start >= result.Response.NumFound {
			break
		}
	}

	return all, nil
}
