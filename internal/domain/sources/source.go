package sources

import (
	"time"

	"gorm.io/datatypes"
)

type SourceType string

const (
	SourceTypeArxiv         SourceType = "ARXIV"
	SourceTypeWikipedia     SourceType = "WIKIPEDIA"
	SourceTypeWebSearch     SourceType = "WEB_SEARCH"
	SourceTypeOpenLibrary   SourceType = "OPEN_LIBRARY"
	SourceTypeYouTube       SourceType = "YOUTUBE"
	SourceTypeCoursera      SourceType = "COURSERA"
	SourceTypeKhanAcademy   SourceType = "KHAN_ACADEMY"
	SourceTypeMITOCW        SourceType = "MIT_OCW"
	SourceTypeTextbook      SourceType = "TEXTBOOK"
	SourceTypeResearchPaper SourceType = "RESEARCH_PAPER"
	SourceTypeBlog          SourceType = "BLOG"
	SourceTypeDocumentation SourceType = "DOCUMENTATION"
	SourceTypeOther         SourceType = "OTHER"
)

var allSourceTypes = []SourceType{
	SourceTypeArxiv, SourceTypeWikipedia, SourceTypeWebSearch, SourceTypeOpenLibrary,
	SourceTypeYouTube, SourceTypeCoursera, SourceTypeKhanAcademy, SourceTypeMITOCW,
	SourceTypeTextbook, SourceTypeResearchPaper, SourceTypeBlog, SourceTypeDocumentation,
	SourceTypeOther,
}

func (t SourceType) Valid() bool {
	for _, v := range allSourceTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Source is an external reference used as research input. URL is the
// business key; rows are shared across domains and never owned by one.
type Source struct {
	ID              uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Title           string         `gorm:"column:title;not null" json:"title"`
	URL             string         `gorm:"column:url;not null;uniqueIndex:idx_source_url" json:"url"`
	SourceType      SourceType     `gorm:"column:source_type;not null;index" json:"source_type"`
	Summary         string         `gorm:"column:summary;type:text" json:"summary,omitempty"`
	Authors         string         `gorm:"column:authors" json:"authors,omitempty"`
	PublicationDate string         `gorm:"column:publication_date" json:"publication_date,omitempty"`
	RelevanceScore  *float64       `gorm:"column:relevance_score" json:"relevance_score,omitempty"`
	Excerpt         string         `gorm:"column:excerpt;type:text" json:"excerpt,omitempty"`
	Metadata        datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Source) TableName() string { return "source" }
