package planwx

import (
	"context"

	t "github.com/planwx/planwx-core/internal/types"
)

// External collaborators. This core defines their boundary contracts only;
// concrete implementations live elsewhere and are injected via options.

// ScheduleExtractor turns free text plus a fallback activity label into a
// structured schedule. Fields it cannot determine come back empty and are
// defaulted here.
type ScheduleExtractor interface {
	Extract(ctx context.Context, freeText, defaultActivity string) (t.Schedule, error)
}

// RecommendationGenerator turns a location, schedule and window summary into
// human-readable advice. This core has no opinion about its output format.
type RecommendationGenerator interface {
	Recommend(ctx context.Context, coords t.Coordinates, sched t.Schedule, summary t.WindowSummary) (string, error)
}

// RuleEvaluator produces advisory strings from a single observation. Pure
// function of the struct, no shared state with this core.
type RuleEvaluator interface {
	Evaluate(obs t.Observation) []string
}
