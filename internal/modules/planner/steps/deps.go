// Package steps implements the planner stages: priority ranking, schedule
// synthesis (initial and repair), and validation. Stages call the
// generative backend through the Oracle seam so tests can script it.
package steps

import (
	"context"

	"github.com/yungbote/studyplanner-backend/internal/platform/logger"
)

// Oracle is the generative capability the steps depend on. The production
// implementation is openai.Client; tests substitute scripted fakes.
type Oracle interface {
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error)
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

type Deps struct {
	Log *logger.Logger
	AI  Oracle
	Cfg Config

	// Runs records one entry per oracle generation attempt; optional.
	Runs *RunLog
}
