package generation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/skilltree-backend/internal/ai"
	"github.com/yungbote/skilltree-backend/internal/data/repos"
	"github.com/yungbote/skilltree-backend/internal/data/repos/testutil"
	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/services"
)

func TestCompletedResponse(t *testing.T) {
	r := CompletedResponse(GenerateDomainOutput{
		Domain:       &types.Domain{ID: 7, Name: "Quantum Computing"},
		RunID:        3,
		SourcesFound: 5,
		LinksCreated: 4,
	})
	assert.Equal(t, uint(7), r.DomainID)
	assert.Equal(t, "Quantum Computing", r.DomainName)
	assert.Equal(t, 4, r.SourcesUsed)
	assert.Equal(t, 0, r.CategoriesCreated)
	assert.Equal(t, StatusCompleted, r.Status)
	assert.Equal(t, uint(3), r.RunID)
}

func TestFailedResponse(t *testing.T) {
	r := FailedResponse("Topology", 9, errors.New("dial tcp 10.0.0.5:5432: connection refused"))
	assert.Equal(t, Response{
		DomainID:   0,
		DomainName: "Topology",
		Status:     StatusFailed,
		RunID:      9,
		Code:       CodeGenerationFailed,
		Error:      "domain generation failed",
	}, r)
	assert.NotContains(t, r.Error, "10.0.0.5")
}

func TestFailureCode(t *testing.T) {
	cases := map[string]struct {
		err  error
		want string
	}{
		"not found": {
			err:  &ai.ProviderError{AgentType: types.AgentType("COHERE"), Err: ai.ErrProviderNotFound},
			want: CodeProviderNotFound,
		},
		"unavailable": {
			err:  &ai.ProviderError{AgentType: types.AgentClaude, Err: ai.ErrProviderUnavailable},
			want: CodeProviderUnavailable,
		},
		"call failed": {
			err:  &ai.CallError{AgentType: types.AgentOpenAI, Op: "generate_content", Err: errors.New("429 from upstream")},
			want: CodeProviderCallFailed,
		},
		"call timed out": {
			err:  &ai.CallError{AgentType: types.AgentOpenAI, Op: "generate_content", Err: context.DeadlineExceeded},
			want: CodeTimeout,
		},
		"canceled":   {err: fmt.Errorf("research: %w", context.Canceled), want: CodeCanceled},
		"name taken": {err: &services.DomainCreationError{Name: "Go", Err: services.ErrDomainNameTaken}, want: CodeDomainNameTaken},
		"invalid":    {err: fmt.Errorf("%w: topic is required", services.ErrInvalidInput), want: CodeInvalidInput},
		"other":      {err: errors.New("boom"), want: CodeGenerationFailed},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, FailureCode(tc.err))
			assert.NotEmpty(t, FailedResponse("Go", 0, tc.err).Error)
		})
	}
}

func TestResolveAgentType(t *testing.T) {
	at, ok := ResolveAgentType("", types.AgentGemini)
	assert.True(t, ok)
	assert.Equal(t, types.AgentGemini, at)

	at, ok = ResolveAgentType("claude", types.AgentGemini)
	assert.True(t, ok)
	assert.Equal(t, types.AgentClaude, at)

	_, ok = ResolveAgentType("SKYNET", types.AgentGemini)
	assert.False(t, ok)
}

func TestUsecasesRuns(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	u := New(UsecasesDeps{Log: log, Runs: repos.NewGenerationRunRepo(gdb, log)})
	ctx := context.Background()

	_, err := u.GetRun(ctx, 42)
	assert.ErrorIs(t, err, services.ErrNotFound)

	runs, err := u.ListRuns(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, runs)

	empty := New(UsecasesDeps{Log: log})
	runs, err = empty.ListRuns(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
