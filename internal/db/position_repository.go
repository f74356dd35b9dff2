package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/model"
)

// PositionRepository is the append-only position ledger. Records are never
// updated or deleted; the latest entered_at per crawler is the current room.
type PositionRepository struct {
	pool *pgxpool.Pool
}

// NewPositionRepository creates a new position repository.
func NewPositionRepository(pool *pgxpool.Pool) *PositionRepository {
	return &PositionRepository{pool: pool}
}

// AppendMove appends a position record and applies the caller's energy
// charge inside one transaction, so a failed move leaves neither a position
// nor an energy deduction behind. charge may be nil.
func (r *PositionRepository) AppendMove(ctx context.Context, crawlerID, roomID int64, enteredAt time.Time, charge func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning move transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO crawler_positions (crawler_id, room_id, entered_at) VALUES ($1, $2, $3)`,
		crawlerID, roomID, enteredAt); err != nil {
		return fmt.Errorf("appending position for crawler %d: %w", crawlerID, err)
	}
	if charge != nil {
		if err := charge(ctx, tx); err != nil {
			return fmt.Errorf("charging energy for crawler %d: %w", crawlerID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing move for crawler %d: %w", crawlerID, err)
	}
	return nil
}

// Append appends a position record outside any transaction (initial placement).
func (r *PositionRepository) Append(ctx context.Context, crawlerID, roomID int64, enteredAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO crawler_positions (crawler_id, room_id, entered_at) VALUES ($1, $2, $3)`,
		crawlerID, roomID, enteredAt)
	if err != nil {
		return fmt.Errorf("appending position for crawler %d: %w", crawlerID, err)
	}
	return nil
}

// Latest returns the crawler's most recent position record.
// Returns nil, nil if the crawler has never been positioned.
func (r *PositionRepository) Latest(ctx context.Context, crawlerID int64) (*model.PositionRecord, error) {
	var rec model.PositionRecord
	err := r.pool.QueryRow(ctx,
		`SELECT id, crawler_id, room_id, entered_at
		 FROM crawler_positions WHERE crawler_id = $1
		 ORDER BY entered_at DESC, id DESC LIMIT 1`, crawlerID,
	).Scan(&rec.ID, &rec.CrawlerID, &rec.RoomID, &rec.EnteredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying latest position for crawler %d: %w", crawlerID, err)
	}
	return &rec, nil
}

// HasVisited reports whether the crawler has any prior record for the room.
func (r *PositionRepository) HasVisited(ctx context.Context, crawlerID, roomID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM crawler_positions WHERE crawler_id = $1 AND room_id = $2)`,
		crawlerID, roomID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking visit history for crawler %d room %d: %w", crawlerID, roomID, err)
	}
	return exists, nil
}

// VisitedRoomIDs returns the distinct rooms the crawler has ever entered,
// ordered by first visit.
func (r *PositionRepository) VisitedRoomIDs(ctx context.Context, crawlerID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT room_id FROM crawler_positions
		 WHERE crawler_id = $1 GROUP BY room_id ORDER BY MIN(entered_at)`, crawlerID)
	if err != nil {
		return nil, fmt.Errorf("querying visited rooms for crawler %d: %w", crawlerID, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning visited room id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating visited room rows: %w", err)
	}
	return ids, nil
}
