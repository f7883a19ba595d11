package race

import "context"

// ResultFeed delivers scraped stage results. The feed is an external
// collaborator; the core never writes to it.
type ResultFeed interface {
	GetStageResult(ctx context.Context, raceSlug string, stage, year int) (StageResult, bool, error)
}
