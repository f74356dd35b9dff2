package testutil

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/model"
)

// InsertFloor inserts a floor row and returns its id.
func InsertFloor(tb testing.TB, pool *pgxpool.Pool, number int32, name string) int64 {
	tb.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO floors (number, name) VALUES ($1, $2) RETURNING id`,
		number, name,
	).Scan(&id)
	if err != nil {
		tb.Fatalf("inserting floor %d: %v", number, err)
	}
	return id
}

// InsertRoom inserts a room row and returns its id. The room's ID field is
// ignored; the generated id is filled in.
func InsertRoom(tb testing.TB, pool *pgxpool.Pool, room *model.Room) int64 {
	tb.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO rooms (floor_id, x, y, type, name, description, is_safe, has_loot, faction_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		room.FloorID, room.X, room.Y, room.Type, room.Name, room.Description,
		room.IsSafe, room.HasLoot, room.FactionID,
	).Scan(&id)
	if err != nil {
		tb.Fatalf("inserting room %q: %v", room.Name, err)
	}
	room.ID = id
	return id
}

// InsertConnection inserts a directed connection between two rooms.
func InsertConnection(tb testing.TB, pool *pgxpool.Pool, from, to int64, direction string, locked bool) int64 {
	tb.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO room_connections (from_room_id, to_room_id, direction, is_locked)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		from, to, direction, locked,
	).Scan(&id)
	if err != nil {
		tb.Fatalf("inserting connection %d -> %d: %v", from, to, err)
	}
	return id
}

// InsertTemplate inserts an enemy template row and returns its id.
func InsertTemplate(tb testing.TB, pool *pgxpool.Pool, name string, minFloor, maxFloor, maxHealth int32) int64 {
	tb.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO enemy_templates (name, min_floor, max_floor, max_health, attack, defense, speed, exp_reward, credits_reward)
		 VALUES ($1, $2, $3, $4, 5, 2, 8, 12, 4) RETURNING id`,
		name, minFloor, maxFloor, maxHealth,
	).Scan(&id)
	if err != nil {
		tb.Fatalf("inserting template %q: %v", name, err)
	}
	return id
}
