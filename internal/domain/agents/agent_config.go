package agents

import (
	"strings"
	"time"
)

type AgentType string

const (
	AgentGemini      AgentType = "GEMINI"
	AgentOpenAI      AgentType = "OPENAI"
	AgentClaude      AgentType = "CLAUDE"
	AgentHuggingFace AgentType = "HUGGINGFACE"
	AgentCohere      AgentType = "COHERE"
	AgentCustom      AgentType = "CUSTOM"
)

var AllAgentTypes = []AgentType{AgentGemini, AgentOpenAI, AgentClaude, AgentHuggingFace, AgentCohere, AgentCustom}

func ParseAgentType(s string) (AgentType, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, t := range AllAgentTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

const (
	DefaultMaxTokens   = 4096
	DefaultTemperature = 0.7
	DefaultRateLimit   = 60
)

// AIAgentConfig holds per-vendor settings. EncryptedCredentials is sealed
// with the credentials key and never serialized.
type AIAgentConfig struct {
	ID                   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	AgentType            AgentType `gorm:"column:agent_type;not null;uniqueIndex:idx_ai_agent_config_type" json:"agent_type"`
	APIEndpoint          string    `gorm:"column:api_endpoint" json:"api_endpoint,omitempty"`
	DefaultModel         string    `gorm:"column:default_model" json:"default_model,omitempty"`
	SystemPrompt         string    `gorm:"column:system_prompt;type:text" json:"system_prompt,omitempty"`
	Active               bool      `gorm:"column:active;not null" json:"active"`
	EncryptedCredentials string    `gorm:"column:encrypted_credentials;type:text" json:"-"`
	MaxTokens            int       `gorm:"column:max_tokens;not null;default:4096" json:"max_tokens"`
	Temperature          float64   `gorm:"column:temperature;not null" json:"temperature"`
	// Requests per minute.
	RateLimit int       `gorm:"column:rate_limit;not null;default:60" json:"rate_limit"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (AIAgentConfig) TableName() string { return "ai_agent_config" }

func (c *AIAgentConfig) HasCredentials() bool {
	return c != nil && strings.TrimSpace(c.EncryptedCredentials) != ""
}
