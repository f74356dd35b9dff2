package world

import (
	"context"
	"fmt"

	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/cache"
	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/model"
)

// Placeholder shown for rooms detected by scan but never entered. Scanned
// rooms reveal position and type only; name, description and loot flags
// stay hidden until a physical visit.
const scanPlaceholder = "Unidentified room detected by scan."

// maxScanRange caps the scan radius. The scan cache key includes the range,
// so move invalidation sweeps every range up to this cap; both sides must
// agree on it.
const maxScanRange = 10

// ExploredRoom is a visited room annotated with whether the crawler is
// currently in it.
type ExploredRoom struct {
	Room          model.Room `json:"room"`
	IsCurrentRoom bool       `json:"isCurrentRoom"`
}

// ScannedRoom is a room within scan range of the crawler's position.
type ScannedRoom struct {
	Room       model.Room `json:"room"`
	IsExplored bool       `json:"isExplored"`
	Distance   int32      `json:"distance"`
}

// Bounds is the axis-aligned bounding box of a floor's room coordinates.
type Bounds struct {
	MinX int32 `json:"minX"`
	MaxX int32 `json:"maxX"`
	MinY int32 `json:"minY"`
	MaxY int32 `json:"maxY"`
}

// Exploration derives fog-of-war views from the room graph and the position
// ledger.
type Exploration struct {
	graph     *Graph
	positions PositionStore
	cache     cache.Cache
}

// NewExploration creates an exploration index.
func NewExploration(graph *Graph, positions PositionStore, c cache.Cache) *Exploration {
	return &Exploration{graph: graph, positions: positions, cache: c}
}

// ExploredRooms returns the distinct rooms the crawler has ever visited,
// ordered by first visit, with the current room flagged.
func (e *Exploration) ExploredRooms(ctx context.Context, crawlerID int64) ([]ExploredRoom, error) {
	key := cache.KeyExplored(crawlerID)
	if explored, ok := cache.Lookup[[]ExploredRoom](ctx, e.cache, key); ok {
		return explored, nil
	}

	ids, err := e.positions.VisitedRoomIDs(ctx, crawlerID)
	if err != nil {
		return nil, err
	}
	latest, err := e.positions.Latest(ctx, crawlerID)
	if err != nil {
		return nil, err
	}
	var currentRoomID int64
	if latest != nil {
		currentRoomID = latest.RoomID
	}

	explored := make([]ExploredRoom, 0, len(ids))
	for _, id := range ids {
		room, err := e.graph.RoomByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("loading visited room %d: %w", id, err)
		}
		if room == nil {
			// Ledger outlives nothing in a generated dungeon, but a missing
			// room must not break the whole view.
			continue
		}
		explored = append(explored, ExploredRoom{
			Room:          *room,
			IsCurrentRoom: room.ID == currentRoomID,
		})
	}

	cache.Store(ctx, e.cache, key, explored, cache.TTLExploration)
	return explored, nil
}

// ScannedRooms returns the rooms on the crawler's current floor within
// Manhattan distance scanRange of its position. Rooms never visited are
// masked to the scan placeholder.
func (e *Exploration) ScannedRooms(ctx context.Context, crawlerID int64, scanRange int32) ([]ScannedRoom, error) {
	if scanRange < 0 {
		scanRange = 0
	}
	if scanRange > maxScanRange {
		scanRange = maxScanRange
	}
	key := cache.KeyScanned(crawlerID, scanRange)
	if scanned, ok := cache.Lookup[[]ScannedRoom](ctx, e.cache, key); ok {
		return scanned, nil
	}

	latest, err := e.positions.Latest(ctx, crawlerID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, ErrNotPositioned
	}
	current, err := e.graph.RoomByID(ctx, latest.RoomID)
	if err != nil {
		return nil, fmt.Errorf("loading current room %d: %w", latest.RoomID, err)
	}
	if current == nil {
		return nil, fmt.Errorf("room %d: %w", latest.RoomID, ErrDestinationMissing)
	}

	floorRooms, err := e.graph.RoomsByFloor(ctx, current.FloorID)
	if err != nil {
		return nil, fmt.Errorf("loading rooms of floor %d: %w", current.FloorID, err)
	}
	visitedIDs, err := e.positions.VisitedRoomIDs(ctx, crawlerID)
	if err != nil {
		return nil, err
	}
	visited := make(map[int64]struct{}, len(visitedIDs))
	for _, id := range visitedIDs {
		visited[id] = struct{}{}
	}

	var scanned []ScannedRoom
	for _, room := range floorRooms {
		dist := abs32(room.X-current.X) + abs32(room.Y-current.Y)
		if dist > scanRange {
			continue
		}
		_, seen := visited[room.ID]
		view := *room
		if !seen {
			view.Name = "Unknown"
			view.Description = scanPlaceholder
			view.HasLoot = false
		}
		scanned = append(scanned, ScannedRoom{Room: view, IsExplored: seen, Distance: dist})
	}

	cache.Store(ctx, e.cache, key, scanned, cache.TTLExploration)
	return scanned, nil
}

// FloorBounds returns the bounding box over a floor's room coordinates.
// An empty floor yields the zero box.
func (e *Exploration) FloorBounds(ctx context.Context, floorID int64) (Bounds, error) {
	key := cache.KeyFloorBounds(floorID)
	if bounds, ok := cache.Lookup[Bounds](ctx, e.cache, key); ok {
		return bounds, nil
	}

	rooms, err := e.graph.RoomsByFloor(ctx, floorID)
	if err != nil {
		return Bounds{}, fmt.Errorf("loading rooms of floor %d: %w", floorID, err)
	}
	if len(rooms) == 0 {
		return Bounds{}, nil
	}

	bounds := Bounds{MinX: rooms[0].X, MaxX: rooms[0].X, MinY: rooms[0].Y, MaxY: rooms[0].Y}
	for _, room := range rooms[1:] {
		bounds.MinX = min(bounds.MinX, room.X)
		bounds.MaxX = max(bounds.MaxX, room.X)
		bounds.MinY = min(bounds.MinY, room.Y)
		bounds.MaxY = max(bounds.MaxY, room.Y)
	}

	cache.Store(ctx, e.cache, key, bounds, cache.TTLFloor)
	return bounds, nil
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
