package research

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"gorm.io/datatypes"

	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/platform/httpx"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
)

const defaultWikipediaURL = "https://en.wikipedia.org/w/api.php"

// WikipediaSource uses the MediaWiki opensearch and extracts APIs.
type WikipediaSource struct {
	log     *logger.Logger
	client  *http.Client
	baseURL string
}

func NewWikipediaSource(baseLog *logger.Logger, client *http.Client, baseURL string) *WikipediaSource {
	if baseURL == "" {
		baseURL = defaultWikipediaURL
	}
	if client == nil {
		client = httpx.NewClient(0)
	}
	return &WikipediaSource{
		log:     baseLog.With("research_source", "WikipediaSource"),
		client:  client,
		baseURL: baseURL,
	}
}

func (s *WikipediaSource) SourceType() types.SourceType { return types.SourceTypeWikipedia }

func (s *WikipediaSource) CanHandle(rawURL string) bool {
	return strings.Contains(rawURL, "wikipedia.org")
}

func (s *WikipediaSource) Search(ctx context.Context, query string, maxResults int) ([]*types.Source, error) {
	if maxResults <= 0 {
		return []*types.Source{}, nil
	}
	params := url.Values{}
	params.Set("action", "opensearch")
	params.Set("search", query)
	params.Set("limit", fmt.Sprint(maxResults))
	params.Set("format", "json")

	body, err := httpx.GetBody(ctx, s.client, s.baseURL+"?"+params.Encode(), "application/json")
	if err != nil {
		return nil, sourceErr(s.SourceType(), "search", err)
	}

	// [query, [titles], [descriptions], [urls]]
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, sourceErr(s.SourceType(), "search", fmt.Errorf("decode opensearch: %w", err))
	}
	if len(raw) < 4 {
		return nil, sourceErr(s.SourceType(), "search", fmt.Errorf("opensearch response has %d parts", len(raw)))
	}
	var titles, descs, urls []string
	if err := json.Unmarshal(raw[1], &titles); err != nil {
		return nil, sourceErr(s.SourceType(), "search", fmt.Errorf("decode titles: %w", err))
	}
	_ = json.Unmarshal(raw[2], &descs)
	if err := json.Unmarshal(raw[3], &urls); err != nil {
		return nil, sourceErr(s.SourceType(), "search", fmt.Errorf("decode urls: %w", err))
	}

	out := make([]*types.Source, 0, len(titles))
	for i, title := range titles {
		if len(out) >= maxResults {
			break
		}
		title = strings.TrimSpace(title)
		var link, desc string
		if i < len(urls) {
			link = strings.TrimSpace(urls[i])
		}
		if i < len(descs) {
			desc = strings.TrimSpace(descs[i])
		}
		if title == "" || link == "" {
			continue
		}
		out = append(out, &types.Source{
			Title:      title,
			URL:        link,
			SourceType: types.SourceTypeWikipedia,
			Summary:    desc,
			Excerpt:    Truncate(desc, 500),
			Metadata:   datatypes.JSON(`{"provider":"wikipedia"}`),
		})
	}
	return out, nil
}

type wikiQueryResponse struct {
	Query struct {
		Pages map[string]struct {
			PageID  int     `json:"pageid"`
			Title   string  `json:"title"`
			Extract string  `json:"extract"`
			FullURL string  `json:"fullurl"`
			Missing *string `json:"missing"`
		} `json:"pages"`
	} `json:"query"`
}

func (s *WikipediaSource) FetchDetails(ctx context.Context, rawURL string) (*types.Source, error) {
	title := wikiTitleFromURL(rawURL)
	if title == "" {
		return nil, nil
	}
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts|info")
	params.Set("exintro", "true")
	params.Set("explaintext", "true")
	params.Set("inprop", "url")
	params.Set("titles", title)
	params.Set("format", "json")

	body, err := httpx.GetBody(ctx, s.client, s.baseURL+"?"+params.Encode(), "application/json")
	if err != nil {
		return nil, sourceErr(s.SourceType(), "fetch_details", err)
	}
	var resp wikiQueryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, sourceErr(s.SourceType(), "fetch_details", fmt.Errorf("decode query: %w", err))
	}
	for _, page := range resp.Query.Pages {
		if page.Missing != nil || page.PageID <= 0 {
			continue
		}
		link := page.FullURL
		if link == "" {
			link = rawURL
		}
		pageTitle := page.Title
		if pageTitle == "" {
			pageTitle = title
		}
		extract := strings.TrimSpace(page.Extract)
		meta, _ := json.Marshal(map[string]interface{}{"provider": "wikipedia", "page_id": page.PageID})
		return &types.Source{
			Title:      pageTitle,
			URL:        link,
			SourceType: types.SourceTypeWikipedia,
			Summary:    Truncate(extract, 1000),
			Excerpt:    Truncate(extract, 500),
			Metadata:   datatypes.JSON(meta),
		}, nil
	}
	return nil, nil
}

func wikiTitleFromURL(rawURL string) string {
	i := strings.Index(rawURL, "/wiki/")
	if i < 0 {
		return ""
	}
	t := rawURL[i+len("/wiki/"):]
	if j := strings.IndexAny(t, "?#"); j >= 0 {
		t = t[:j]
	}
	if un, err := url.PathUnescape(t); err == nil {
		t = un
	}
	return strings.TrimSpace(strings.ReplaceAll(t, "_", " "))
}
