package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/model"
)

// RoomRepository reads the generated dungeon graph: floors, rooms and
// directed connections. The graph is authored by the floor generator and
// never mutated by this subsystem.
type RoomRepository struct {
	pool *pgxpool.Pool
}

// NewRoomRepository creates a new room repository.
func NewRoomRepository(pool *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

const roomColumns = `id, floor_id, x, y, type, name, description, is_safe, has_loot, faction_id`

func scanRoom(row pgx.Row) (*model.Room, error) {
	var r model.Room
	err := row.Scan(&r.ID, &r.FloorID, &r.X, &r.Y, &r.Type, &r.Name, &r.Description, &r.IsSafe, &r.HasLoot, &r.FactionID)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// RoomByID loads a room by ID. Returns nil, nil if the room does not exist.
func (r *RoomRepository) RoomByID(ctx context.Context, roomID int64) (*model.Room, error) {
	room, err := scanRoom(r.pool.QueryRow(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE id = $1`, roomID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying room %d: %w", roomID, err)
	}
	return room, nil
}

// RoomsByFloor loads all rooms of a floor ordered by id.
func (r *RoomRepository) RoomsByFloor(ctx context.Context, floorID int64) ([]*model.Room, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE floor_id = $1 ORDER BY id`, floorID)
	if err != nil {
		return nil, fmt.Errorf("querying rooms for floor %d: %w", floorID, err)
	}
	defer rows.Close()

	var rooms []*model.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning room row: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating room rows: %w", err)
	}
	return rooms, nil
}

// ConnectionsFrom loads the outgoing connections of a room ordered by id.
// Duplicate directions are not structurally forbidden; callers take the
// first match, so the lowest id wins.
func (r *RoomRepository) ConnectionsFrom(ctx context.Context, roomID int64) ([]*model.Connection, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, from_room_id, to_room_id, direction, is_locked, key_required
		 FROM room_connections WHERE from_room_id = $1 ORDER BY id`, roomID)
	if err != nil {
		return nil, fmt.Errorf("querying connections from room %d: %w", roomID, err)
	}
	defer rows.Close()

	var conns []*model.Connection
	for rows.Next() {
		var c model.Connection
		if err := rows.Scan(&c.ID, &c.FromRoomID, &c.ToRoomID, &c.Direction, &c.IsLocked, &c.KeyRequired); err != nil {
			return nil, fmt.Errorf("scanning connection row: %w", err)
		}
		conns = append(conns, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating connection rows: %w", err)
	}
	return conns, nil
}

// FloorByID loads a floor by ID. Returns nil, nil if it does not exist.
func (r *RoomRepository) FloorByID(ctx context.Context, floorID int64) (*model.Floor, error) {
	var f model.Floor
	err := r.pool.QueryRow(ctx,
		`SELECT id, number, name FROM floors WHERE id = $1`, floorID,
	).Scan(&f.ID, &f.Number, &f.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying floor %d: %w", floorID, err)
	}
	return &f, nil
}

// FloorByNumber loads a floor by its number. Returns nil, nil if absent.
func (r *RoomRepository) FloorByNumber(ctx context.Context, number int32) (*model.Floor, error) {
	var f model.Floor
	err := r.pool.QueryRow(ctx,
		`SELECT id, number, name FROM floors WHERE number = $1`, number,
	).Scan(&f.ID, &f.Number, &f.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying floor number %d: %w", number, err)
	}
	return &f, nil
}

// EntranceRoom loads the entrance room of a floor. Returns nil, nil if the
// floor has no entrance (incomplete generation).
func (r *RoomRepository) EntranceRoom(ctx context.Context, floorID int64) (*model.Room, error) {
	room, err := scanRoom(r.pool.QueryRow(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE floor_id = $1 AND type = $2 ORDER BY id LIMIT 1`,
		floorID, model.RoomEntrance))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying entrance for floor %d: %w", floorID, err)
	}
	return room, nil
}
