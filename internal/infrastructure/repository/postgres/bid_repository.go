package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/veloleague/veloleague/internal/domain/auction"
	qb "github.com/veloleague/veloleague/internal/platform/querybuilder"
)

type BidRepository struct {
	db *sqlx.DB
}

func NewBidRepository(db *sqlx.DB) *BidRepository {
	return &BidRepository{db: db}
}

func (r *BidRepository) GetByID(ctx context.Context, bidID string) (auction.Bid, bool, error) {
	query, args, err := qb.Select("*").From("auction_bids").
		Where(
			qb.Eq("public_id", bidID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return auction.Bid{}, false, fmt.Errorf("build get bid query: %w", err)
	}

	var row bidTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return auction.Bid{}, false, nil
		}
		return auction.Bid{}, false, fmt.Errorf("get bid by id: %w", err)
	}

	return bidFromRow(row), true, nil
}

func (r *BidRepository) ListByGameAndRider(ctx context.Context, gameID, riderID string) ([]auction.Bid, error) {
	query, args, err := qb.Select("*").From("auction_bids").
		Where(
			qb.Eq("game_id", gameID),
			qb.Eq("rider_id", riderID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("placed_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list bids by rider query: %w", err)
	}

	return r.selectBids(ctx, query, args)
}

func (r *BidRepository) ListByGameAndWindow(ctx context.Context, gameID, userID string, from, to time.Time) ([]auction.Bid, error) {
	conditions := []qb.Condition{
		qb.Eq("game_id", gameID),
		qb.Expr("placed_at >= ?", from),
		qb.Expr("placed_at <= ?", to),
		qb.IsNull("deleted_at"),
	}
	if userID != "" {
		conditions = append(conditions, qb.Eq("user_id", userID))
	}

	query, args, err := qb.Select("*").From("auction_bids").
		Where(conditions...).
		OrderBy("placed_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list bids by window query: %w", err)
	}

	return r.selectBids(ctx, query, args)
}

func (r *BidRepository) ListActiveByUser(ctx context.Context, gameID, userID string) ([]auction.Bid, error) {
	query, args, err := qb.Select("*").From("auction_bids").
		Where(
			qb.Eq("game_id", gameID),
			qb.Eq("user_id", userID),
			qb.Eq("status", string(auction.BidStatusActive)),
			qb.IsNull("deleted_at"),
		).
		OrderBy("placed_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list active bids query: %w", err)
	}

	return r.selectBids(ctx, query, args)
}

func (r *BidRepository) Insert(ctx context.Context, bid auction.Bid) error {
	query, args, err := qb.InsertModel("auction_bids", bidInsertModel{
		PublicID: bid.ID,
		GameID:   bid.GameID,
		UserID:   bid.UserID,
		RiderID:  bid.RiderID,
		Amount:   bid.Amount,
		Status:   string(bid.Status),
		PlacedAt: bid.PlacedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert bid query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert bid: %w", err)
	}
	return nil
}

func (r *BidRepository) UpdateStatus(ctx context.Context, bidID string, status auction.BidStatus) error {
	query, args, err := qb.Update("auction_bids").
		Set("status", string(status)).
		Set("updated_at", time.Now().UTC()).
		Where(
			qb.Eq("public_id", bidID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update bid status query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update bid status: %w", err)
	}
	return nil
}

func (r *BidRepository) UpdateAmount(ctx context.Context, bidID string, amount int64, placedAt time.Time) error {
	query, args, err := qb.Update("auction_bids").
		Set("amount", amount).
		Set("placed_at", placedAt).
		Set("updated_at", time.Now().UTC()).
		Where(
			qb.Eq("public_id", bidID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update bid amount query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update bid amount: %w", err)
	}
	return nil
}

func (r *BidRepository) selectBids(ctx context.Context, query string, args []any) ([]auction.Bid, error) {
	var rows []bidTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select bids: %w", err)
	}

	out := make([]auction.Bid, 0, len(rows))
	for _, row := range rows {
		out = append(out, bidFromRow(row))
	}
	return out, nil
}

func bidFromRow(row bidTableModel) auction.Bid {
	return auction.Bid{
		ID:       row.PublicID,
		GameID:   row.GameID,
		UserID:   row.UserID,
		RiderID:  row.RiderID,
		Amount:   row.Amount,
		Status:   auction.BidStatus(row.Status),
		PlacedAt: row.PlacedAt,
	}
}
