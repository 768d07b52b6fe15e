/*
Package schedule maps runner names to research runs. The registry is built
once from configuration: one runner per schedule class plus one per custom
query, replacing any need to synthesize entry points at runtime.
*/
package schedule

import (
	"context"
	"fmt"

	"github.com/phuslu/log"

	"github.com/shanehull/inforanger/internal/config"
	"github.com/shanehull/inforanger/internal/research"
	"github.com/shanehull/inforanger/internal/types"
)

// Result is the coarse outcome of one runner invocation.
type Result struct {
	OK      bool
	Message string
}

// RunnerFunc executes one scheduled batch.
type RunnerFunc func(ctx context.Context) Result

// Registry holds the statically enumerated runners.
type Registry struct {
	order   []string
	runners map[string]RunnerFunc
}

// Build creates the registry from configuration: daily, weekly and monthly
// runners over their query lists, then one runner per custom query keyed by
// its name.
func Build(cfg *config.Config, orch *research.Orchestrator) *Registry {
	r := &Registry{runners: make(map[string]RunnerFunc)}

	for _, class := range []types.ScheduleClass{
		types.ScheduleDaily,
		types.ScheduleWeekly,
		types.ScheduleMonthly,
	} {
		queries := cfg.Queries(class)
		r.add(string(class), newRunner(orch, string(class), queries))
	}

	for _, q := range cfg.Queries(types.ScheduleCustom) {
		r.add(q.Name, newRunner(orch, q.Name, []types.Query{q}))
	}

	return r
}

func (r *Registry) add(name string, fn RunnerFunc) {
	r.order = append(r.order, name)
	r.runners[name] = fn
}

// Names returns all runner names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Run invokes the named runner. Unknown names are an error.
func (r *Registry) Run(ctx context.Context, name string) (Result, error) {
	fn, ok := r.runners[name]
	if !ok {
		return Result{}, fmt.Errorf("unknown schedule %q (available: %v)", name, r.order)
	}
	return fn(ctx), nil
}

func newRunner(orch *research.Orchestrator, name string, queries []types.Query) RunnerFunc {
	return func(ctx context.Context) Result {
		if len(queries) == 0 {
			return Result{OK: true, Message: fmt.Sprintf("no %s queries configured", name)}
		}

		log.Info().Str("schedule", name).Int("queries", len(queries)).Msg("starting research run")
		summary := orch.Run(ctx, queries)

		delivered, degraded, failed := summary.Counts()
		msg := fmt.Sprintf("%s research completed: %d delivered, %d degraded, %d failed",
			name, delivered, degraded, failed)
		return Result{OK: failed == 0, Message: msg}
	}
}
