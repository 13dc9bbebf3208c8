// Package caselaw backs the Tool Registry's grounded web-search tools
// (search_case_law, search_precedents_for_charges) and internal/citation's
// external verification fallback. Grounded on the teacher's
// internal/search/web.Client: an LLM query-optimization pass followed by a
// SerpAPI call, falling back to a goquery HTML scrape when no SerpAPI key
// is configured.
package caselaw

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/eliBenven/case-nexus/pkg/logger"
)

// Result is one grounded case-law hit, the wire shape the
// search_case_law tool returns (spec §4.3).
type Result struct {
	CaseName string `json:"case_name"`
	Citation string `json:"citation"`
	Court    string `json:"court"`
	Date     string `json:"date"`
	Snippet  string `json:"snippet"`
	URL      string `json:"url"`
}

// QueryOptimizer turns a free-text legal query into a better web search
// query. internal/llm.Provider satisfies this via llm.Complete; Client
// only depends on this narrow interface so it can be tested without a
// full Provider.
type QueryOptimizer interface {
	Optimize(ctx context.Context, query, court string) (string, error)
}

type Client struct {
	serpAPIKey string
	optimizer  QueryOptimizer // nil is fine; falls back to the raw query
	httpClient *http.Client
	maxResults int
}

func NewClient(serpAPIKey string, optimizer QueryOptimizer, maxResults int) *Client {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Client{
		serpAPIKey: serpAPIKey,
		optimizer:  optimizer,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		maxResults: maxResults,
	}
}

// Search runs a grounded case-law search for query, optionally narrowed
// to court. It is the shared implementation behind both the
// search_case_law tool and the citation verifier's external lookup
// (where query is the bare citation string).
func (c *Client) Search(ctx context.Context, query, court string) ([]Result, error) {
	optimized := query
	if c.optimizer != nil {
		if q, err := c.optimizer.Optimize(ctx, query, court); err == nil {
			optimized = q
		} else {
			logger.Warn("caselaw: query optimization failed, using raw query", zap.Error(err))
		}
	}

	if c.serpAPIKey != "" {
		return c.searchSerpAPI(ctx, optimized, court)
	}
	return c.searchScrape(ctx, optimized, court)
}

func (c *Client) searchSerpAPI(ctx context.Context, query, court string) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", c.serpAPIKey)
	params.Set("num", fmt.Sprintf("%d", c.maxResults))
	params.Set("engine", "google_scholar")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://serpapi.com/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build serpapi request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi case-law search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read serpapi response: %w", err)
	}

	var parsed struct {
		OrganicResults []struct {
			Title          string `json:"title"`
			Link           string `json:"link"`
			Snippet        string `json:"snippet"`
			PublicationInfo struct {
				Summary string `json:"summary"`
			} `json:"publication_info"`
		} `json:"organic_results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse serpapi response: %w", err)
	}

	results := make([]Result, 0, len(parsed.OrganicResults))
	for _, r := range parsed.OrganicResults {
		results = append(results, Result{
			CaseName: r.Title,
			Citation: extractCitation(r.Snippet + " " + r.PublicationInfo.Summary),
			Court:    court,
			Date:     extractDate(r.PublicationInfo.Summary),
			Snippet:  r.Snippet,
			URL:      r.Link,
		})
	}

	logger.Info("caselaw: serpapi search completed", zap.Int("results", len(results)))
	return results, nil
}

func (c *Client) searchScrape(ctx context.Context, query, court string) ([]Result, error) {
	searchQuery := fmt.Sprintf("site:courtlistener.com OR site:caselaw.findlaw.com OR site:justia.com %s %s", query, court)
	searchURL := "https://www.google.com/search?q=" + url.QueryEscape(searchQuery) + fmt.Sprintf("&num=%d", c.maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build scrape request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; CaseNexus/1.0)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape case-law search: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse search html: %w", err)
	}

	var results []Result
	doc.Find("div.g").Each(func(i int, s *goquery.Selection) {
		if i >= c.maxResults {
			return
		}
		title := strings.TrimSpace(s.Find("h3").Text())
		link, _ := s.Find("a").Attr("href")
		snippet := strings.TrimSpace(s.Find("div.VwiC3b").Text())
		if title == "" || link == "" {
			return
		}
		results = append(results, Result{
			CaseName: title,
			Citation: extractCitation(snippet),
			Court:    court,
			Date:     extractDate(snippet),
			Snippet:  snippet,
			URL:      link,
		})
	})

	logger.Info("caselaw: scrape search completed", zap.Int("results", len(results)))
	return results, nil
}

var (
	citationGuess = regexp.MustCompile(`\d+\s+[A-Z][A-Za-z.]+\s+\d+|\d+\s+U\.S\.\s+\d+|§\s*\d+-\d+-\d+`)
	dateGuess     = regexp.MustCompile(`(19|20)\d{2}`)
)

func extractCitation(text string) string {
	return citationGuess.FindString(text)
}

func extractDate(text string) string {
	return dateGuess.FindString(text)
}
