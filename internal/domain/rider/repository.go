package rider

import "context"

// Catalog describes rider reference data lookups. The catalog is
// read-only to this service; rider identity is owned elsewhere.
type Catalog interface {
	GetByID(ctx context.Context, riderID string) (Rider, bool, error)
	ListByIDs(ctx context.Context, riderIDs []string) ([]Rider, error)
	GetSeasonRanking(ctx context.Context, riderID string, season int) (SeasonRanking, bool, error)
}
