package world

import (
	"context"
	"fmt"

	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/cache"
	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/model"
)

// RoomStore is the source of truth for the generated dungeon graph.
// Implemented by db.RoomRepository.
type RoomStore interface {
	RoomByID(ctx context.Context, roomID int64) (*model.Room, error)
	RoomsByFloor(ctx context.Context, floorID int64) ([]*model.Room, error)
	ConnectionsFrom(ctx context.Context, roomID int64) ([]*model.Connection, error)
	FloorByID(ctx context.Context, floorID int64) (*model.Floor, error)
	FloorByNumber(ctx context.Context, number int32) (*model.Floor, error)
	EntranceRoom(ctx context.Context, floorID int64) (*model.Room, error)
}

// Graph serves reads of the static room graph through the best-effort
// cache. The graph is immutable post-generation, so graph keys use the
// long floor-level TTL and are never invalidated.
type Graph struct {
	rooms RoomStore
	cache cache.Cache
}

// NewGraph creates a graph view over the room store.
func NewGraph(rooms RoomStore, c cache.Cache) *Graph {
	return &Graph{rooms: rooms, cache: c}
}

// RoomByID returns a room, or nil if it does not exist.
func (g *Graph) RoomByID(ctx context.Context, roomID int64) (*model.Room, error) {
	key := cache.KeyRoom(roomID)
	if room, ok := cache.Lookup[*model.Room](ctx, g.cache, key); ok {
		return room, nil
	}
	room, err := g.rooms.RoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room != nil {
		cache.Store(ctx, g.cache, key, room, cache.TTLFloor)
	}
	return room, nil
}

// RoomsByFloor returns all rooms of a floor.
func (g *Graph) RoomsByFloor(ctx context.Context, floorID int64) ([]*model.Room, error) {
	key := cache.KeyFloorRooms(floorID)
	if rooms, ok := cache.Lookup[[]*model.Room](ctx, g.cache, key); ok {
		return rooms, nil
	}
	rooms, err := g.rooms.RoomsByFloor(ctx, floorID)
	if err != nil {
		return nil, err
	}
	cache.Store(ctx, g.cache, key, rooms, cache.TTLFloor)
	return rooms, nil
}

// ConnectionsFrom returns a room's outgoing connections.
func (g *Graph) ConnectionsFrom(ctx context.Context, roomID int64) ([]*model.Connection, error) {
	key := cache.KeyConnections(roomID)
	if conns, ok := cache.Lookup[[]*model.Connection](ctx, g.cache, key); ok {
		return conns, nil
	}
	conns, err := g.rooms.ConnectionsFrom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	cache.Store(ctx, g.cache, key, conns, cache.TTLFloor)
	return conns, nil
}

// FloorByID returns a floor, or nil if it does not exist.
func (g *Graph) FloorByID(ctx context.Context, floorID int64) (*model.Floor, error) {
	return g.rooms.FloorByID(ctx, floorID)
}

// FloorByNumber returns the floor with the given number, or nil.
func (g *Graph) FloorByNumber(ctx context.Context, number int32) (*model.Floor, error) {
	return g.rooms.FloorByNumber(ctx, number)
}

// EntranceRoom returns a floor's entrance room, or nil if generation left
// the floor without one.
func (g *Graph) EntranceRoom(ctx context.Context, floorID int64) (*model.Room, error) {
	return g.rooms.EntranceRoom(ctx, floorID)
}

// AvailableDirections returns the direction labels a crawler can take from
// the room: one per outgoing connection, plus the synthetic staircase
// direction in stairs rooms.
func (g *Graph) AvailableDirections(ctx context.Context, room *model.Room) ([]string, error) {
	conns, err := g.ConnectionsFrom(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("loading connections for room %d: %w", room.ID, err)
	}
	directions := make([]string, 0, len(conns)+1)
	for _, c := range conns {
		directions = append(directions, c.Direction)
	}
	if room.Type == model.RoomStairs {
		directions = append(directions, model.DirectionStaircase)
	}
	return directions, nil
}

// connectionFor returns the first outgoing connection matching the
// direction. Duplicate directions are not structurally forbidden; the
// lowest connection id wins.
func (g *Graph) connectionFor(ctx context.Context, roomID int64, direction string) (*model.Connection, error) {
	conns, err := g.ConnectionsFrom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	for _, c := range conns {
		if c.Direction == direction {
			return c, nil
		}
	}
	return nil, nil
}
