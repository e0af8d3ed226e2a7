package taxonomy

import (
	"time"

	"github.com/yungbote/skilltree-backend/internal/domain/sources"
)

// Domain is the root node of a skill taxonomy.
type Domain struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"column:name;not null;uniqueIndex:idx_domain_name" json:"name"`
	Description string `gorm:"column:description;type:text" json:"description,omitempty"`
	// Truncated AI response kept for audit.
	Prompt    string         `gorm:"column:prompt;type:text" json:"prompt,omitempty"`
	Sources   []DomainSource `gorm:"foreignKey:DomainID;constraint:OnDelete:CASCADE" json:"sources,omitempty"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Domain) TableName() string { return "domain" }

type DomainSource struct {
	ID                uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	DomainID          uint            `gorm:"column:domain_id;not null;index" json:"domain_id"`
	Domain            *Domain         `gorm:"constraint:OnDelete:CASCADE;foreignKey:DomainID;references:ID" json:"-"`
	SourceID          uint            `gorm:"column:source_id;not null;index" json:"source_id"`
	Source            *sources.Source `gorm:"constraint:OnDelete:CASCADE;foreignKey:SourceID;references:ID" json:"source,omitempty"`
	RelevanceScore    float64         `gorm:"column:relevance_score;not null" json:"relevance_score"`
	RelevantExcerpt   string          `gorm:"column:relevant_excerpt;type:text" json:"relevant_excerpt,omitempty"`
	UsedForGeneration bool            `gorm:"column:used_for_generation;not null;default:false" json:"used_for_generation"`
	CreatedAt         time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (DomainSource) TableName() string { return "domain_source" }
