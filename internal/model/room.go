package model

// RoomType classifies a room within a floor layout.
type RoomType string

const (
	RoomNormal   RoomType = "normal"
	RoomSafe     RoomType = "safe"
	RoomEntrance RoomType = "entrance"
	RoomStairs   RoomType = "stairs"
	RoomTreasure RoomType = "treasure"
	RoomBoss     RoomType = "boss"
	RoomTrap     RoomType = "trap"
)

// Direction labels for connections. Directions are free-form strings authored
// by the floor generator; these are the common ones plus the synthetic
// staircase direction resolved at move time.
const (
	DirectionNorth     = "north"
	DirectionSouth     = "south"
	DirectionEast      = "east"
	DirectionWest      = "west"
	DirectionStaircase = "staircase"
)

// Floor represents a dungeon floor. Floors are numbered from 1 downward.
type Floor struct {
	ID     int64
	Number int32
	Name   string
}

// Room is a node in the dungeon graph. Immutable after generation.
type Room struct {
	ID          int64
	FloorID     int64
	X           int32
	Y           int32
	Type        RoomType
	Name        string
	Description string
	IsSafe      bool
	HasLoot     bool
	FactionID   *int64
}

// CanHoldMobs reports whether hostiles may ever be placed in the room.
// Safe rooms and entrances never hold hostiles.
func (r *Room) CanHoldMobs() bool {
	return !r.IsSafe && r.Type != RoomEntrance
}

// Connection is a directed, optionally locked edge between two rooms.
type Connection struct {
	ID          int64
	FromRoomID  int64
	ToRoomID    int64
	Direction   string
	IsLocked    bool
	KeyRequired *int64
}
