package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/model"
)

// MobRepository handles mob instance rows. All lifecycle transitions are
// expressed as conditional UPDATEs so they stay correct when several nodes
// process the same mobs concurrently.
type MobRepository struct {
	pool *pgxpool.Pool
}

// NewMobRepository creates a new mob repository.
func NewMobRepository(pool *pgxpool.Pool) *MobRepository {
	return &MobRepository{pool: pool}
}

const mobColumns = `id, room_id, template_id, display_name, rarity, current_health, max_health,
	pos_x, pos_y, is_alive, is_active, last_killed_at, respawn_at`

func scanMob(row pgx.Row) (*model.MobInstance, error) {
	var m model.MobInstance
	err := row.Scan(&m.ID, &m.RoomID, &m.TemplateID, &m.DisplayName, &m.Rarity,
		&m.CurrentHealth, &m.MaxHealth, &m.PosX, &m.PosY,
		&m.IsAlive, &m.IsActive, &m.LastKilledAt, &m.RespawnAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Insert inserts a freshly spawned mob instance.
func (r *MobRepository) Insert(ctx context.Context, m *model.MobInstance) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO mob_instances
		 (id, room_id, template_id, display_name, rarity, current_health, max_health,
		  pos_x, pos_y, is_alive, is_active, last_killed_at, respawn_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		m.ID, m.RoomID, m.TemplateID, m.DisplayName, m.Rarity,
		m.CurrentHealth, m.MaxHealth, m.PosX, m.PosY,
		m.IsAlive, m.IsActive, m.LastKilledAt, m.RespawnAt)
	if err != nil {
		return fmt.Errorf("inserting mob %s: %w", m.ID, err)
	}
	return nil
}

// ByID loads a mob instance. Returns nil, nil if it does not exist.
func (r *MobRepository) ByID(ctx context.Context, mobID uuid.UUID) (*model.MobInstance, error) {
	m, err := scanMob(r.pool.QueryRow(ctx,
		`SELECT `+mobColumns+` FROM mob_instances WHERE id = $1`, mobID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying mob %s: %w", mobID, err)
	}
	return m, nil
}

// ByRoom loads all active mob instances in a room (alive and dead).
func (r *MobRepository) ByRoom(ctx context.Context, roomID int64) ([]*model.MobInstance, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+mobColumns+` FROM mob_instances WHERE room_id = $1 AND is_active ORDER BY id`, roomID)
	if err != nil {
		return nil, fmt.Errorf("querying mobs for room %d: %w", roomID, err)
	}
	defer rows.Close()

	var mobs []*model.MobInstance
	for rows.Next() {
		m, err := scanMob(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning mob row: %w", err)
		}
		mobs = append(mobs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mob rows: %w", err)
	}
	return mobs, nil
}

// CountInRoom counts active mob instances in a room, alive or awaiting
// respawn. Dead mobs still occupy their spawn slot.
func (r *MobRepository) CountInRoom(ctx context.Context, roomID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM mob_instances WHERE room_id = $1 AND is_active`, roomID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting mobs for room %d: %w", roomID, err)
	}
	return n, nil
}

// UpdateHealth sets a living mob's health. The WHERE clause keeps the write
// from resurrecting a mob another writer already killed.
func (r *MobRepository) UpdateHealth(ctx context.Context, mobID uuid.UUID, health int32) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE mob_instances SET current_health = $2 WHERE id = $1 AND is_alive`,
		mobID, health)
	if err != nil {
		return fmt.Errorf("updating health for mob %s: %w", mobID, err)
	}
	return nil
}

// MarkDead performs the kill transition: clear the alive flag, zero the
// health and stamp the respawn window. Returns false if the mob was already
// dead (another writer won the race).
func (r *MobRepository) MarkDead(ctx context.Context, mobID uuid.UUID, killedAt, respawnAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE mob_instances
		 SET is_alive = FALSE, current_health = 0, last_killed_at = $2, respawn_at = $3
		 WHERE id = $1 AND is_alive`,
		mobID, killedAt, respawnAt)
	if err != nil {
		return false, fmt.Errorf("marking mob %s dead: %w", mobID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ReviveDue transitions every dead mob whose respawn window has elapsed back
// to alive with full health and cleared timers, and returns the revived
// instances. The is_alive predicate makes the operation idempotent: a mob
// already revived by a concurrent or repeated run matches zero rows.
func (r *MobRepository) ReviveDue(ctx context.Context, now time.Time) ([]*model.MobInstance, error) {
	rows, err := r.pool.Query(ctx,
		`UPDATE mob_instances
		 SET is_alive = TRUE, current_health = max_health, last_killed_at = NULL, respawn_at = NULL
		 WHERE NOT is_alive AND is_active AND respawn_at IS NOT NULL AND respawn_at <= $1
		 RETURNING `+mobColumns, now)
	if err != nil {
		return nil, fmt.Errorf("reviving due mobs: %w", err)
	}
	defer rows.Close()

	var revived []*model.MobInstance
	for rows.Next() {
		m, err := scanMob(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning revived mob row: %w", err)
		}
		revived = append(revived, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating revived mob rows: %w", err)
	}
	return revived, nil
}
