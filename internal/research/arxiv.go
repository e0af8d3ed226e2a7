package research

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"gorm.io/datatypes"

	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/platform/httpx"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
)

const defaultArxivURL = "http://export.arxiv.org/api/query"

var arxivIDPattern = regexp.MustCompile(`arxiv\.org/(?:abs|pdf)/(\d{4}\.\d{4,5})`)

type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
	Category  []struct {
		Term string `xml:"term,attr"`
	} `xml:"category"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// ArxivSource searches the arXiv Atom API.
type ArxivSource struct {
	log     *logger.Logger
	client  *http.Client
	baseURL string
}

func NewArxivSource(baseLog *logger.Logger, client *http.Client, baseURL string) *ArxivSource {
	if baseURL == "" {
		baseURL = defaultArxivURL
	}
	if client == nil {
		client = httpx.NewClient(0)
	}
	return &ArxivSource{
		log:     baseLog.With("research_source", "ArxivSource"),
		client:  client,
		baseURL: baseURL,
	}
}

func (s *ArxivSource) SourceType() types.SourceType { return types.SourceTypeArxiv }

func (s *ArxivSource) CanHandle(rawURL string) bool {
	return strings.Contains(rawURL, "arxiv.org")
}

func (s *ArxivSource) Search(ctx context.Context, query string, maxResults int) ([]*types.Source, error) {
	if maxResults <= 0 {
		return []*types.Source{}, nil
	}
	q := fmt.Sprintf("%s?search_query=%s&max_results=%d&sortBy=relevance&sortOrder=descending",
		s.baseURL, url.QueryEscape("all:"+query), maxResults)
	out, err := s.query(ctx, q)
	if err != nil {
		return nil, sourceErr(s.SourceType(), "search", err)
	}
	if len(out) > maxResults {
		out = out[:maxResults]
	}
	return out, nil
}

func (s *ArxivSource) FetchDetails(ctx context.Context, rawURL string) (*types.Source, error) {
	m := arxivIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return nil, nil
	}
	q := fmt.Sprintf("%s?id_list=%s&max_results=1", s.baseURL, url.QueryEscape(m[1]))
	out, err := s.query(ctx, q)
	if err != nil {
		return nil, sourceErr(s.SourceType(), "fetch_details", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (s *ArxivSource) query(ctx context.Context, rawURL string) ([]*types.Source, error) {
	body, err := httpx.GetBody(ctx, s.client, rawURL, "application/atom+xml")
	if err != nil {
		return nil, err
	}
	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("decode atom feed: %w", err)
	}
	out := make([]*types.Source, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		src := s.toSource(e)
		if src == nil {
			s.log.Debug("Skipping malformed arXiv entry", "id", e.ID)
			continue
		}
		out = append(out, src)
	}
	return out, nil
}

func (s *ArxivSource) toSource(e arxivEntry) *types.Source {
	title := collapseSpace(e.Title)
	id := strings.TrimSpace(e.ID)
	if title == "" || id == "" {
		return nil
	}
	summary := collapseSpace(e.Summary)
	names := make([]string, 0, len(e.Authors))
	for _, a := range e.Authors {
		if n := strings.TrimSpace(a.Name); n != "" {
			names = append(names, n)
		}
	}
	published := strings.TrimSpace(e.Published)
	if len(published) > 10 {
		published = published[:10]
	}
	meta := map[string]interface{}{"provider": "arxiv"}
	if m := arxivIDPattern.FindStringSubmatch(id); m != nil {
		meta["arxiv_id"] = m[1]
	}
	if len(e.Category) > 0 {
		cats := make([]string, 0, len(e.Category))
		for _, c := range e.Category {
			cats = append(cats, c.Term)
		}
		meta["categories"] = cats
	}
	metaJSON, _ := json.Marshal(meta)

	return &types.Source{
		Title:           title,
		URL:             id,
		SourceType:      types.SourceTypeArxiv,
		Summary:         summary,
		Authors:         strings.Join(names, ", "),
		PublicationDate: published,
		Excerpt:         Truncate(summary, 500),
		Metadata:        datatypes.JSON(metaJSON),
	}
}
