package agents

import (
	"context"
	"testing"

	"github.com/yungbote/skilltree-backend/internal/data/repos/testutil"
	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/platform/dbctx"
)

func TestAIAgentConfigRepoUpsert(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewAIAgentConfigRepo(db, testutil.Logger(t))

	missing, err := repo.GetByType(dbc, types.AgentClaude)
	if err != nil || missing != nil {
		t.Fatalf("GetByType(missing): got=%v err=%v", missing, err)
	}

	cfg, err := repo.Upsert(dbc, &types.AIAgentConfig{
		AgentType:            types.AgentClaude,
		DefaultModel:         "claude-sonnet-4-5",
		Active:               true,
		EncryptedCredentials: "k1",
		MaxTokens:            2048,
		Temperature:          0.2,
		RateLimit:            30,
	})
	if err != nil {
		t.Fatalf("Upsert(create): %v", err)
	}
	if cfg.ID == 0 || !cfg.Active {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	updated, err := repo.Upsert(dbc, &types.AIAgentConfig{
		AgentType:            types.AgentClaude,
		DefaultModel:         "claude-haiku-4-5",
		Active:               false,
		EncryptedCredentials: "k2",
		MaxTokens:            1024,
		Temperature:          0,
		RateLimit:            10,
	})
	if err != nil {
		t.Fatalf("Upsert(update): %v", err)
	}
	if updated.ID != cfg.ID {
		t.Fatalf("expected same row, got %d want %d", updated.ID, cfg.ID)
	}
	if updated.Active || updated.DefaultModel != "claude-haiku-4-5" || updated.Temperature != 0 {
		t.Fatalf("update not applied: %+v", updated)
	}

	all, err := repo.List(dbc)
	if err != nil || len(all) != 1 {
		t.Fatalf("List: got=%d err=%v", len(all), err)
	}
}
