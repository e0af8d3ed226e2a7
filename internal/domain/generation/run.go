package generation

import "time"

type RunState string

const (
	RunStarted           RunState = "STARTED"
	RunResearched        RunState = "RESEARCHED"
	RunProviderValidated RunState = "PROVIDER_VALIDATED"
	RunGenerated         RunState = "GENERATED"
	RunPersisted         RunState = "PERSISTED"
	RunFailed            RunState = "FAILED"
)

func (s RunState) Terminal() bool { return s == RunPersisted || s == RunFailed }

// GenerationRun records one execution of the domain generation pipeline.
type GenerationRun struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Topic        string     `gorm:"column:topic;not null;index" json:"topic"`
	AgentType    string     `gorm:"column:agent_type;not null" json:"agent_type"`
	MaxSources   int        `gorm:"column:max_sources;not null" json:"max_sources"`
	State        RunState   `gorm:"column:state;not null;index" json:"state"`
	DomainID     *uint      `gorm:"column:domain_id;index" json:"domain_id,omitempty"`
	SourcesFound int        `gorm:"column:sources_found;not null;default:0" json:"sources_found"`
	LinksCreated int        `gorm:"column:links_created;not null;default:0" json:"links_created"`
	Error        string     `gorm:"column:error;type:text" json:"error,omitempty"`
	StartedAt    time.Time  `gorm:"column:started_at;not null" json:"started_at"`
	FinishedAt   *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (GenerationRun) TableName() string { return "generation_run" }
