// Package planner orchestrates the study-schedule pipeline: rank course
// priorities, synthesize a candidate schedule, validate it, and feed
// violations back into bounded repair attempts.
package planner

import (
	"context"
	"errors"
	"time"

	"github.com/yungbote/studyplanner-backend/internal/domain"
	"github.com/yungbote/studyplanner-backend/internal/modules/planner/steps"
	"github.com/yungbote/studyplanner-backend/internal/platform/logger"
)

var (
	ErrNoCatalog    = errors.New("planner: catalog has no eligible courses")
	ErrNoPriorities = errors.New("planner: priority ranking produced no entries")
	ErrNoCandidate  = errors.New("planner: no schedule candidate produced")
)

// Config and its loaders live with the steps so each step can consume the
// knobs it needs without an import cycle.
type Config = steps.Config

func DefaultConfig() Config { return steps.DefaultConfig() }

func LoadConfig(path string) (Config, error) { return steps.LoadConfig(path) }

// Result is the terminal state of one pipeline run. Schedule and Issues are
// always populated from the last attempt, clean or not, so callers can emit
// a best-effort plan when the attempt budget runs out.
type Result struct {
	Schedule   domain.Schedule
	Priorities domain.PriorityTable
	Issues     []steps.Issue
	Attempts   int
	Clean      bool
	Elapsed    time.Duration
}

// Errors returns the blocking issues of the final candidate.
func (r Result) Errors() []steps.Issue { return steps.Errors(r.Issues) }

// Warnings returns the non-blocking issues of the final candidate.
func (r Result) Warnings() []steps.Issue { return steps.Warnings(r.Issues) }

type Pipeline struct {
	log    *logger.Logger
	ai     steps.Oracle
	cfg    Config
	runlog *steps.RunLog
}

func New(log *logger.Logger, ai steps.Oracle, cfg Config) *Pipeline {
	return &Pipeline{log: log, ai: ai, cfg: cfg, runlog: steps.NewRunLog()}
}

// Runs exposes the per-attempt audit records accumulated so far.
func (p *Pipeline) Runs() []steps.RunRecord { return p.runlog.Records() }

// Run executes the full generate-validate-repair loop for one catalog.
//
// The first generation failing is fatal. A repair call failing mid-loop is
// not: the previous candidate and its issues stand, and the loop ends there.
// Warnings never trigger a repair; only errors are fed back.
func (p *Pipeline) Run(ctx context.Context, catalog domain.CourseCatalog) (Result, error) {
	started := time.Now()
	if len(catalog.EligibleCodes()) == 0 {
		return Result{}, ErrNoCatalog
	}

	deps := steps.Deps{Log: p.log, AI: p.ai, Cfg: p.cfg, Runs: p.runlog}

	priorities := steps.DeterminePriorities(ctx, deps, catalog)
	if len(priorities) == 0 {
		return Result{}, ErrNoPriorities
	}

	schedule, err := steps.GenerateSchedule(ctx, deps, catalog, priorities)
	if err != nil {
		return Result{}, err
	}

	issues := steps.ValidateSchedule(catalog, schedule, p.cfg)
	attempts := 1

	for attempts < p.cfg.MaxAttempts {
		errs := steps.Errors(issues)
		if len(errs) == 0 {
			break
		}
		p.log.Info("schedule validation failed, repairing",
			"attempt", attempts,
			"errors", len(errs),
			"warnings", len(issues)-len(errs))

		repaired, rErr := steps.RepairSchedule(ctx, deps, catalog, priorities, schedule, steps.IssueStrings(errs))
		if rErr != nil {
			p.log.Warn("schedule repair failed, keeping previous candidate", "attempt", attempts, "error", rErr)
			break
		}
		schedule = repaired
		issues = steps.ValidateSchedule(catalog, schedule, p.cfg)
		attempts++
	}

	if len(schedule) == 0 && catalog.TotalEligibleTopics() > 0 {
		return Result{Priorities: priorities, Issues: issues, Attempts: attempts}, ErrNoCandidate
	}

	clean := len(steps.Errors(issues)) == 0
	res := Result{
		Schedule:   schedule,
		Priorities: priorities,
		Issues:     issues,
		Attempts:   attempts,
		Clean:      clean,
		Elapsed:    time.Since(started),
	}
	p.log.Info("pipeline finished",
		"attempts", attempts,
		"clean", clean,
		"errors", len(steps.Errors(issues)),
		"warnings", len(steps.Warnings(issues)),
		"elapsed_ms", res.Elapsed.Milliseconds())
	return res, nil
}
