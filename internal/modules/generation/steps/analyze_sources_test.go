package steps

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/skilltree-backend/internal/ai"
	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/services"
)

func TestAnalyzeSources(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a, err := e.sources.CreateSource(ctx, &types.Source{Title: "Alpha", URL: "https://a.example"})
	require.NoError(t, err)
	b, err := e.sources.CreateSource(ctx, &types.Source{Title: "Beta", URL: "https://b.example"})
	require.NoError(t, err)

	deps := AnalyzeSourcesDeps{
		Log:       e.log,
		Providers: ai.NewRegistry(&stubProvider{agent: types.AgentClaude, available: true}),
		Sources:   e.sources,
		Metrics:   e.metrics,
	}
	out, err := AnalyzeSources(ctx, deps, AnalyzeSourcesInput{
		AgentType:        types.AgentClaude,
		SourceIDs:        []uint{a.ID, b.ID},
		ExtractionPrompt: "list key skills",
	})
	require.NoError(t, err)
	assert.Equal(t, "list key skills: Alpha,Beta", out.Analysis)
	assert.ElementsMatch(t, []uint{a.ID, b.ID}, out.SourceIDs)
}

func TestAnalyzeSourcesErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	src, err := e.sources.CreateSource(ctx, &types.Source{Title: "Alpha", URL: "https://a.example"})
	require.NoError(t, err)

	deps := AnalyzeSourcesDeps{
		Log:       e.log,
		Providers: ai.NewRegistry(&stubProvider{agent: types.AgentClaude, available: false}),
		Sources:   e.sources,
	}

	_, err = AnalyzeSources(ctx, deps, AnalyzeSourcesInput{AgentType: types.AgentClaude, ExtractionPrompt: "x"})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = AnalyzeSources(ctx, deps, AnalyzeSourcesInput{AgentType: types.AgentClaude, SourceIDs: []uint{src.ID}, ExtractionPrompt: " "})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = AnalyzeSources(ctx, deps, AnalyzeSourcesInput{AgentType: types.AgentClaude, SourceIDs: []uint{9999}, ExtractionPrompt: "x"})
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = AnalyzeSources(ctx, deps, AnalyzeSourcesInput{AgentType: types.AgentClaude, SourceIDs: []uint{src.ID}, ExtractionPrompt: "x"})
	assert.ErrorIs(t, err, ai.ErrProviderUnavailable)
}
