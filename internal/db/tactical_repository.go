package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/model"
)

// TacticalRepository handles persisted tactical entity rows. Regeneration
// uses deactivate-then-insert versioning so readers racing a regeneration
// see either the old or the new active set, never a partial one.
type TacticalRepository struct {
	pool *pgxpool.Pool
}

// NewTacticalRepository creates a new tactical repository.
func NewTacticalRepository(pool *pgxpool.Pool) *TacticalRepository {
	return &TacticalRepository{pool: pool}
}

// ActiveByRoom loads the active tactical entities of a room.
func (r *TacticalRepository) ActiveByRoom(ctx context.Context, roomID int64) ([]*model.TacticalEntityRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, room_id, entity_type, entity_data, pos_x, pos_y, is_active, created_at, updated_at
		 FROM tactical_entities WHERE room_id = $1 AND is_active ORDER BY id`, roomID)
	if err != nil {
		return nil, fmt.Errorf("querying tactical entities for room %d: %w", roomID, err)
	}
	defer rows.Close()

	var records []*model.TacticalEntityRecord
	for rows.Next() {
		var (
			rec  model.TacticalEntityRecord
			data []byte
		)
		if err := rows.Scan(&rec.ID, &rec.RoomID, &rec.EntityType, &data,
			&rec.PosX, &rec.PosY, &rec.IsActive, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning tactical entity row: %w", err)
		}
		if err := json.Unmarshal(data, &rec.EntityData); err != nil {
			return nil, fmt.Errorf("decoding tactical entity %d payload: %w", rec.ID, err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tactical entity rows: %w", err)
	}
	return records, nil
}

// InsertBatch inserts new tactical rows, filling in their generated ids.
// Used for first-time loot and NPC generation; those rows then stay
// byte-stable across regenerations.
func (r *TacticalRepository) InsertBatch(ctx context.Context, records []*model.TacticalEntityRecord) error {
	for _, rec := range records {
		data, err := json.Marshal(rec.EntityData)
		if err != nil {
			return fmt.Errorf("encoding tactical entity payload: %w", err)
		}
		err = r.pool.QueryRow(ctx,
			`INSERT INTO tactical_entities (room_id, entity_type, entity_data, pos_x, pos_y, is_active, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6)
			 RETURNING id`,
			rec.RoomID, rec.EntityType, data, rec.PosX, rec.PosY, time.Now(),
		).Scan(&rec.ID)
		if err != nil {
			return fmt.Errorf("inserting tactical entity for room %d: %w", rec.RoomID, err)
		}
		rec.IsActive = true
	}
	return nil
}

// ReplaceByType deactivates a room's active rows of one entity type and
// inserts the replacement set in a single transaction. Mob rows go through
// here on every regeneration since their stored state is never trusted.
func (r *TacticalRepository) ReplaceByType(ctx context.Context, roomID int64, entityType model.EntityType, records []*model.TacticalEntityRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning tactical replace for room %d: %w", roomID, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE tactical_entities SET is_active = FALSE, updated_at = $3
		 WHERE room_id = $1 AND entity_type = $2 AND is_active`,
		roomID, entityType, time.Now()); err != nil {
		return fmt.Errorf("deactivating %s entities for room %d: %w", entityType, roomID, err)
	}

	for _, rec := range records {
		data, err := json.Marshal(rec.EntityData)
		if err != nil {
			return fmt.Errorf("encoding tactical entity payload: %w", err)
		}
		err = tx.QueryRow(ctx,
			`INSERT INTO tactical_entities (room_id, entity_type, entity_data, pos_x, pos_y, is_active, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6)
			 RETURNING id`,
			rec.RoomID, rec.EntityType, data, rec.PosX, rec.PosY, time.Now(),
		).Scan(&rec.ID)
		if err != nil {
			return fmt.Errorf("inserting %s entity for room %d: %w", entityType, roomID, err)
		}
		rec.IsActive = true
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing tactical replace for room %d: %w", roomID, err)
	}
	return nil
}

// DeleteRoom hard-deletes every tactical row of a room, active or not.
// Used by forced regeneration.
func (r *TacticalRepository) DeleteRoom(ctx context.Context, roomID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tactical_entities WHERE room_id = $1`, roomID)
	if err != nil {
		return fmt.Errorf("deleting tactical entities for room %d: %w", roomID, err)
	}
	return nil
}
