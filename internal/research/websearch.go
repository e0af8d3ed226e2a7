package research

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"gorm.io/datatypes"

	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/platform/httpx"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
)

const (
	defaultWebSearchURL = "https://html.duckduckgo.com/html/"
	minParagraphLen     = 50
	noDescription       = "No description available"
)

// WebSearchSource scrapes DuckDuckGo's HTML results page.
type WebSearchSource struct {
	log     *logger.Logger
	client  *http.Client
	baseURL string
}

func NewWebSearchSource(baseLog *logger.Logger, client *http.Client, baseURL string) *WebSearchSource {
	if baseURL == "" {
		baseURL = defaultWebSearchURL
	}
	if client == nil {
		client = httpx.NewClient(0)
	}
	return &WebSearchSource{
		log:     baseLog.With("research_source", "WebSearchSource"),
		client:  client,
		baseURL: baseURL,
	}
}

func (s *WebSearchSource) SourceType() types.SourceType { return types.SourceTypeWebSearch }

func (s *WebSearchSource) CanHandle(rawURL string) bool {
	return strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://")
}

func (s *WebSearchSource) Search(ctx context.Context, query string, maxResults int) ([]*types.Source, error) {
	if maxResults <= 0 {
		return []*types.Source{}, nil
	}
	body, err := httpx.GetBody(ctx, s.client, s.baseURL+"?q="+url.QueryEscape(query), "text/html")
	if err != nil {
		return nil, sourceErr(s.SourceType(), "search", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, sourceErr(s.SourceType(), "search", fmt.Errorf("parse html: %w", err))
	}

	out := make([]*types.Source, 0, maxResults)
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(out) >= maxResults {
			return false
		}
		anchor := sel.Find(".result__a").First()
		title := collapseSpace(anchor.Text())
		href, _ := anchor.Attr("href")
		link := unwrapRedirect(href)
		if title == "" || !s.CanHandle(link) {
			return true
		}
		snippet := collapseSpace(sel.Find(".result__snippet").First().Text())
		out = append(out, &types.Source{
			Title:      title,
			URL:        link,
			SourceType: types.SourceTypeWebSearch,
			Summary:    snippet,
			Excerpt:    Truncate(snippet, 500),
			Metadata:   datatypes.JSON(`{"provider":"duckduckgo"}`),
		})
		return true
	})
	return out, nil
}

func (s *WebSearchSource) FetchDetails(ctx context.Context, rawURL string) (*types.Source, error) {
	if !s.CanHandle(rawURL) {
		return nil, nil
	}
	body, err := httpx.GetBody(ctx, s.client, rawURL, "text/html")
	if err != nil {
		return nil, sourceErr(s.SourceType(), "fetch_details", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, sourceErr(s.SourceType(), "fetch_details", fmt.Errorf("parse html: %w", err))
	}

	title := collapseSpace(doc.Find("title").First().Text())
	if title == "" {
		title = rawURL
	}
	desc, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	desc = collapseSpace(desc)
	if desc == "" {
		doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
			text := collapseSpace(p.Text())
			if len(text) > minParagraphLen {
				desc = Truncate(text, 1000)
				return false
			}
			return true
		})
	}
	if desc == "" {
		desc = noDescription
	}
	return &types.Source{
		Title:      title,
		URL:        rawURL,
		SourceType: types.SourceTypeWebSearch,
		Summary:    desc,
		Excerpt:    Truncate(desc, 500),
	}, nil
}

// unwrapRedirect resolves DuckDuckGo "/l/?uddg=<target>" links.
func unwrapRedirect(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
