// Package dungeon bundles the exploration subsystem behind one facade for
// its in-process consumers: the crawler aggregate, the encounter system and
// the presentation layer.
package dungeon

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/model"
	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/spawn"
	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/tactical"
	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/world"
)

// Service is the exploration subsystem's API surface.
type Service struct {
	graph       *world.Graph
	mover       *world.Mover
	exploration *world.Exploration
	registry    *spawn.Registry
	board       *tactical.Board

	scanRange int32
}

// NewService assembles the facade. scanRange caps scan radius requests.
func NewService(
	graph *world.Graph,
	mover *world.Mover,
	exploration *world.Exploration,
	registry *spawn.Registry,
	board *tactical.Board,
	scanRange int32,
) *Service {
	if scanRange <= 0 {
		scanRange = 3
	}
	return &Service{
		graph:       graph,
		mover:       mover,
		exploration: exploration,
		registry:    registry,
		board:       board,
		scanRange:   scanRange,
	}
}

// EnsurePosition returns the crawler's current room, seeding a first-time
// crawler at the floor-1 entrance.
func (s *Service) EnsurePosition(ctx context.Context, crawlerID int64) (*model.Room, error) {
	return s.mover.EnsurePosition(ctx, crawlerID)
}

// CurrentRoom returns the crawler's current room.
func (s *Service) CurrentRoom(ctx context.Context, crawlerID int64) (*model.Room, error) {
	return s.mover.CurrentRoom(ctx, crawlerID)
}

// AvailableDirections lists the crawler's exits from its current room.
func (s *Service) AvailableDirections(ctx context.Context, crawlerID int64) ([]string, error) {
	room, err := s.mover.CurrentRoom(ctx, crawlerID)
	if err != nil {
		return nil, err
	}
	return s.graph.AvailableDirections(ctx, room)
}

// Move resolves a directional move and reports its cost tier.
func (s *Service) Move(ctx context.Context, crawlerID int64, direction string) (*world.MoveResult, error) {
	return s.mover.Move(ctx, crawlerID, direction)
}

// ExploredRooms returns the crawler's visited rooms.
func (s *Service) ExploredRooms(ctx context.Context, crawlerID int64) ([]world.ExploredRoom, error) {
	return s.exploration.ExploredRooms(ctx, crawlerID)
}

// ScannedRooms returns the rooms within scan range of the crawler,
// clamped to the configured maximum radius.
func (s *Service) ScannedRooms(ctx context.Context, crawlerID int64, scanRange int32) ([]world.ScannedRoom, error) {
	if scanRange <= 0 || scanRange > s.scanRange {
		scanRange = s.scanRange
	}
	return s.exploration.ScannedRooms(ctx, crawlerID, scanRange)
}

// FloorBounds returns the bounding box of a floor's rooms.
func (s *Service) FloorBounds(ctx context.Context, floorID int64) (world.Bounds, error) {
	return s.exploration.FloorBounds(ctx, floorID)
}

// RoomView generates the tactical view of the crawler's current room.
func (s *Service) RoomView(ctx context.Context, crawlerID int64) ([]model.TacticalEntity, error) {
	room, err := s.mover.CurrentRoom(ctx, crawlerID)
	if err != nil {
		return nil, err
	}
	view, err := s.board.Generate(ctx, room, false)
	if err != nil {
		return nil, fmt.Errorf("generating tactical view of room %d: %w", room.ID, err)
	}
	return view, nil
}

// RegenerateRoom rebuilds a room's tactical board from scratch.
func (s *Service) RegenerateRoom(ctx context.Context, roomID int64) ([]model.TacticalEntity, error) {
	room, err := s.graph.RoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, fmt.Errorf("room %d: %w", roomID, world.ErrDestinationMissing)
	}
	return s.board.Generate(ctx, room, true)
}

// DamageMob applies encounter damage to a mob, reporting a lethal hit.
func (s *Service) DamageMob(ctx context.Context, mobID uuid.UUID, amount int32) (bool, error) {
	return s.registry.Damage(ctx, mobID, amount)
}

// KillMob kills a mob outright.
func (s *Service) KillMob(ctx context.Context, mobID uuid.UUID) error {
	return s.registry.Kill(ctx, mobID)
}

// RoomMobs returns the live mob instances of a room.
func (s *Service) RoomMobs(ctx context.Context, roomID int64) ([]*model.MobInstance, error) {
	return s.registry.RoomMobs(ctx, roomID)
}
