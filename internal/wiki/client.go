// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wiki retrieves character pages from a MediaWiki API and feeds them
// through extraction.
package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/lore-engine/internal/httputil"
	"github.com/pdiddy/lore-engine/internal/logger"
	"github.com/pdiddy/lore-engine/pkg/types"
)

// ErrPageMissing is returned by Page when the wiki has no such page.
var ErrPageMissing = errors.New("page missing")

// categoryPageSize is the largest cmlimit the API accepts for normal users.
const categoryPageSize = 500

// skippedNamespaces are member titles that never name a character.
var skippedNamespaces = []string{"Category:", "Template:", "File:"}

// Client talks to a MediaWiki api.php endpoint.
type Client struct {
	http    *http.Client
	cfg     types.FetchConfig
	limiter *rate.Limiter
	log     logger.Logger
}

// NewClient returns a Client for cfg. A nil httpClient uses a client with
// cfg's timeout. Requests are limited to cfg.RequestsPerSecond.
func NewClient(httpClient *http.Client, cfg types.FetchConfig, log logger.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if log == nil {
		log = logger.NewNop()
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Client{
		http:    httpClient,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		log:     log,
	}
}

type categoryResponse struct {
	Continue struct {
		CMContinue string `json:"cmcontinue"`
	} `json:"continue"`
	Query struct {
		CategoryMembers []struct {
			Title string `json:"title"`
		} `json:"categorymembers"`
	} `json:"query"`
}

// CategoryMembers lists the page titles in category, following continuation
// until the API reports no more. Subcategories, templates, and files are
// left out.
func (c *Client) CategoryMembers(ctx context.Context, category string) ([]string, error) {
	var titles []string
	cont := ""
	for {
		params := url.Values{
			"action":  {"query"},
			"list":    {"categorymembers"},
			"cmtitle": {category},
			"cmlimit": {strconv.Itoa(categoryPageSize)},
		}
		if cont != "" {
			params.Set("cmcontinue", cont)
		}

		var resp categoryResponse
		if err := c.get(ctx, params, &resp); err != nil {
			return titles, fmt.Errorf("listing %s: %w", category, err)
		}
		for _, m := range resp.Query.CategoryMembers {
			if !skippedTitle(m.Title) {
				titles = append(titles, m.Title)
			}
		}

		cont = resp.Continue.CMContinue
		if cont == "" {
			break
		}
	}
	c.log.Debug("listed category", logger.String("category", category), logger.Int("members", len(titles)))
	return titles, nil
}

type pageResponse struct {
	Query struct {
		Pages []struct {
			Title      string `json:"title"`
			Missing    bool   `json:"missing"`
			Invalid    bool   `json:"invalid"`
			Categories []struct {
				Title string `json:"title"`
			} `json:"categories"`
			Revisions []struct {
				Slots struct {
					Main struct {
						Content string `json:"content"`
					} `json:"main"`
				} `json:"slots"`
			} `json:"revisions"`
		} `json:"pages"`
	} `json:"query"`
}

// Page fetches the current wikitext and categories of title.
func (c *Client) Page(ctx context.Context, title string) (types.RawInput, error) {
	params := url.Values{
		"action":  {"query"},
		"titles":  {title},
		"prop":    {"revisions|categories"},
		"rvprop":  {"content"},
		"rvslots": {"main"},
		"cllimit": {"max"},
	}

	var resp pageResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return types.RawInput{}, fmt.Errorf("fetching %s: %w", title, err)
	}
	if len(resp.Query.Pages) == 0 {
		return types.RawInput{}, fmt.Errorf("fetching %s: %w", title, ErrPageMissing)
	}

	p := resp.Query.Pages[0]
	if p.Missing || p.Invalid || len(p.Revisions) == 0 {
		return types.RawInput{}, fmt.Errorf("fetching %s: %w", title, ErrPageMissing)
	}

	in := types.RawInput{Title: title, Markup: p.Revisions[0].Slots.Main.Content}
	for _, cat := range p.Categories {
		in.Categories = append(in.Categories, cat.Title)
	}
	return in, nil
}

// PageURL returns the human-facing URL of title.
func (c *Client) PageURL(title string) string {
	return PageURL(c.cfg.BaseURL, title)
}

// PageURL joins base and a title in the wiki's /page/ layout.
func PageURL(base, title string) string {
	return strings.TrimRight(base, "/") + "/page/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}

// get issues one rate-limited API request and decodes the JSON body into v.
func (c *Client) get(ctx context.Context, params url.Values, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	params.Set("format", "json")
	params.Set("formatversion", "2")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries, c.log)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("parsing API response: %w", err)
	}
	return nil
}

func skippedTitle(title string) bool {
	for _, ns := range skippedNamespaces {
		if strings.HasPrefix(title, ns) {
			return true
		}
	}
	return false
}
