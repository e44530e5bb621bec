package runtime

import (
	"fmt"
	"strings"

	"github.com/justapithecus/sigsplit/types"
)

// DetermineOutcome classifies a run error. A nil error is a success whose
// message summarizes what was produced.
func DetermineOutcome(err error, chunks, rows int) *types.RunOutcome {
	if err == nil {
		return &types.RunOutcome{
			Status:  types.OutcomeSuccess,
			Message: fmt.Sprintf("merged %d rows from %d chunks", rows, chunks),
		}
	}
	return &types.RunOutcome{
		Status:  types.ClassifyError(err),
		Message: singleLine(err.Error()),
	}
}

// singleLine folds a message onto one line for the diagnostic channel.
func singleLine(s string) string {
	s = strings.TrimSpace(s)
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\r", " ")), " ")
}
