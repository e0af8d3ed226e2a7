package steps

import (
	"context"
	"time"

	"github.com/yungbote/skilltree-backend/internal/data/repos"
	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/platform/dbctx"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
)

// runRecorder mirrors pipeline state into the generation_run table. Every
// write is best effort: errors are logged and the run continues.
type runRecorder struct {
	repo  repos.GenerationRunRepo
	log   *logger.Logger
	ctx   context.Context
	runID uint
	state types.RunState
}

// newRunRecorder detaches from ctx cancellation so a timed-out run can still
// be marked FAILED.
func newRunRecorder(ctx context.Context, log *logger.Logger, repo repos.GenerationRunRepo) *runRecorder {
	return &runRecorder{repo: repo, log: log, ctx: context.WithoutCancel(ctx), state: types.RunStarted}
}

func (r *runRecorder) start(in GenerateDomainInput, now time.Time) {
	if r.repo == nil {
		return
	}
	run, err := r.repo.Create(dbctx.Context{Ctx: r.ctx}, &types.GenerationRun{
		Topic:      in.Topic,
		AgentType:  string(in.AgentType),
		MaxSources: in.MaxSources,
		State:      types.RunStarted,
		StartedAt:  now,
	})
	if err != nil {
		r.log.Warn("Generation run record create failed", "topic", in.Topic, "error", err)
		return
	}
	r.runID = run.ID
}

func (r *runRecorder) advance(state types.RunState, fields map[string]interface{}) {
	r.state = state
	if r.repo == nil || r.runID == 0 {
		return
	}
	updates := map[string]interface{}{"state": state}
	for k, v := range fields {
		updates[k] = v
	}
	if state.Terminal() {
		updates["finished_at"] = time.Now().UTC()
	}
	if err := r.repo.UpdateFields(dbctx.Context{Ctx: r.ctx}, r.runID, updates); err != nil {
		r.log.Warn("Generation run record update failed", "run_id", r.runID, "state", state, "error", err)
	}
}

func (r *runRecorder) fail(err error) {
	r.advance(types.RunFailed, map[string]interface{}{"error": err.Error()})
}
