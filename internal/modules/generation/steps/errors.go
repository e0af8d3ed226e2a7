package steps

import (
	"fmt"

	types "github.com/yungbote/skilltree-backend/internal/domain"
)

// Error is a fatal pipeline failure. State is the last state the run reached
// before failing.
type Error struct {
	State types.RunState
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("generation failed after %s: %v", e.State, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
