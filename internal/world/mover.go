package world

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/cache"
	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/model"
)

// PositionStore is the source of truth for the append-only position ledger.
// Implemented by db.PositionRepository.
type PositionStore interface {
	AppendMove(ctx context.Context, crawlerID, roomID int64, enteredAt time.Time, charge func(ctx context.Context, tx pgx.Tx) error) error
	Append(ctx context.Context, crawlerID, roomID int64, enteredAt time.Time) error
	Latest(ctx context.Context, crawlerID int64) (*model.PositionRecord, error)
	HasVisited(ctx context.Context, crawlerID, roomID int64) (bool, error)
	VisitedRoomIDs(ctx context.Context, crawlerID int64) ([]int64, error)
}

// EnergyPolicy is the strategy charged with deducting a move's energy cost.
// Apply runs inside the same transaction as the position append; returning
// an error aborts the whole move. The crawler aggregate supplies the real
// policy, this subsystem only reports the tier.
type EnergyPolicy interface {
	Apply(ctx context.Context, tx pgx.Tx, crawlerID int64, tier model.CostTier) error
}

// NoEnergyPolicy charges nothing. Used when the crawler aggregate does its
// own bookkeeping from the reported tier.
type NoEnergyPolicy struct{}

// Apply implements EnergyPolicy.
func (NoEnergyPolicy) Apply(context.Context, pgx.Tx, int64, model.CostTier) error {
	return nil
}

// MoveResult reports a completed move.
type MoveResult struct {
	Room *model.Room
	Tier model.CostTier
	Cost int32
}

// Mover resolves crawler movement against the room graph and appends to the
// position ledger. Two near-simultaneous moves for the same crawler resolve
// last-write-wins by ledger timestamp; the mover does not serialize a single
// crawler's requests.
type Mover struct {
	graph     *Graph
	positions PositionStore
	cache     cache.Cache
	energy    EnergyPolicy
}

// NewMover creates a mover. A nil energy policy defaults to NoEnergyPolicy.
func NewMover(graph *Graph, positions PositionStore, c cache.Cache, energy EnergyPolicy) *Mover {
	if energy == nil {
		energy = NoEnergyPolicy{}
	}
	return &Mover{graph: graph, positions: positions, cache: c, energy: energy}
}

// CurrentRoom resolves the crawler's current room from the latest ledger
// entry. Returns ErrNotPositioned if the crawler has no entry.
func (m *Mover) CurrentRoom(ctx context.Context, crawlerID int64) (*model.Room, error) {
	key := cache.KeyCurrentRoom(crawlerID)
	if room, ok := cache.Lookup[*model.Room](ctx, m.cache, key); ok {
		return room, nil
	}

	rec, err := m.positions.Latest(ctx, crawlerID)
	if err != nil {
		return nil, fmt.Errorf("resolving position of crawler %d: %w", crawlerID, err)
	}
	if rec == nil {
		return nil, ErrNotPositioned
	}
	room, err := m.graph.RoomByID(ctx, rec.RoomID)
	if err != nil {
		return nil, fmt.Errorf("loading current room %d: %w", rec.RoomID, err)
	}
	if room == nil {
		slog.Error("position ledger references missing room", "crawler", crawlerID, "room", rec.RoomID)
		return nil, fmt.Errorf("room %d: %w", rec.RoomID, ErrDestinationMissing)
	}

	cache.Store(ctx, m.cache, key, room, cache.TTLCurrentRoom)
	return room, nil
}

// EnsurePosition returns the crawler's current room, placing the crawler at
// the floor-1 entrance first if it has never been positioned.
func (m *Mover) EnsurePosition(ctx context.Context, crawlerID int64) (*model.Room, error) {
	room, err := m.CurrentRoom(ctx, crawlerID)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, ErrNotPositioned) {
		return nil, err
	}

	floor, err := m.graph.FloorByNumber(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("loading floor 1: %w", err)
	}
	if floor == nil {
		return nil, fmt.Errorf("floor 1: %w", ErrNoDeeperFloor)
	}
	entrance, err := m.graph.EntranceRoom(ctx, floor.ID)
	if err != nil {
		return nil, fmt.Errorf("loading floor 1 entrance: %w", err)
	}
	if entrance == nil {
		slog.Error("floor has no entrance room", "floor", floor.Number)
		return nil, fmt.Errorf("floor %d: %w", floor.Number, ErrNoEntrance)
	}

	if err := m.positions.Append(ctx, crawlerID, entrance.ID, time.Now()); err != nil {
		return nil, err
	}
	m.invalidateCrawler(ctx, crawlerID)

	slog.Info("placed crawler at dungeon entrance", "crawler", crawlerID, "room", entrance.ID)
	return entrance, nil
}

// Move resolves a directional move for the crawler. Expected validation
// failures (ErrNoExit, ErrLocked, ErrNoDeeperFloor, ErrInvalidTransition,
// ErrNotPositioned) are returned as-is for the caller to report; a failed
// move leaves position and energy untouched.
func (m *Mover) Move(ctx context.Context, crawlerID int64, direction string) (*MoveResult, error) {
	current, err := m.CurrentRoom(ctx, crawlerID)
	if err != nil {
		return nil, err
	}

	if direction == model.DirectionStaircase {
		return m.descend(ctx, crawlerID, current)
	}

	conn, err := m.graph.connectionFor(ctx, current.ID, direction)
	if err != nil {
		return nil, fmt.Errorf("resolving exits of room %d: %w", current.ID, err)
	}
	if conn == nil {
		return nil, fmt.Errorf("room %d direction %q: %w", current.ID, direction, ErrNoExit)
	}
	if conn.IsLocked {
		return nil, fmt.Errorf("room %d direction %q: %w", current.ID, direction, ErrLocked)
	}

	dest, err := m.graph.RoomByID(ctx, conn.ToRoomID)
	if err != nil {
		return nil, fmt.Errorf("loading destination room %d: %w", conn.ToRoomID, err)
	}
	if dest == nil {
		slog.Error("connection references missing room",
			"connection", conn.ID, "from", conn.FromRoomID, "to", conn.ToRoomID)
		return nil, fmt.Errorf("room %d: %w", conn.ToRoomID, ErrDestinationMissing)
	}

	visited, err := m.positions.HasVisited(ctx, crawlerID, dest.ID)
	if err != nil {
		return nil, err
	}
	tier := model.CostFirstVisit
	if visited {
		tier = model.CostRevisit
	}

	return m.commit(ctx, crawlerID, dest, tier)
}

// descend resolves the synthetic staircase move to the next floor's entrance.
func (m *Mover) descend(ctx context.Context, crawlerID int64, current *model.Room) (*MoveResult, error) {
	if current.Type != model.RoomStairs {
		return nil, fmt.Errorf("room %d: %w", current.ID, ErrInvalidTransition)
	}

	floor, err := m.graph.FloorByID(ctx, current.FloorID)
	if err != nil {
		return nil, fmt.Errorf("loading floor %d: %w", current.FloorID, err)
	}
	if floor == nil {
		slog.Error("room references missing floor", "room", current.ID, "floor", current.FloorID)
		return nil, fmt.Errorf("floor %d: %w", current.FloorID, ErrDestinationMissing)
	}

	next, err := m.graph.FloorByNumber(ctx, floor.Number+1)
	if err != nil {
		return nil, fmt.Errorf("loading floor %d: %w", floor.Number+1, err)
	}
	if next == nil {
		return nil, fmt.Errorf("below floor %d: %w", floor.Number, ErrNoDeeperFloor)
	}

	entrance, err := m.graph.EntranceRoom(ctx, next.ID)
	if err != nil {
		return nil, fmt.Errorf("loading entrance of floor %d: %w", next.Number, err)
	}
	if entrance == nil {
		slog.Error("floor has no entrance room", "floor", next.Number)
		return nil, fmt.Errorf("floor %d: %w", next.Number, ErrNoEntrance)
	}

	return m.commit(ctx, crawlerID, entrance, model.CostFloorTransition)
}

// commit appends the position record with the energy charge in one
// transaction, then invalidates the mover's crawler-scoped cache keys
// before reporting success.
func (m *Mover) commit(ctx context.Context, crawlerID int64, dest *model.Room, tier model.CostTier) (*MoveResult, error) {
	charge := func(ctx context.Context, tx pgx.Tx) error {
		return m.energy.Apply(ctx, tx, crawlerID, tier)
	}
	if err := m.positions.AppendMove(ctx, crawlerID, dest.ID, time.Now(), charge); err != nil {
		return nil, err
	}
	m.invalidateCrawler(ctx, crawlerID)

	slog.Debug("crawler moved",
		"crawler", crawlerID, "room", dest.ID, "tier", tier, "cost", tier.Energy())
	return &MoveResult{Room: dest, Tier: tier, Cost: tier.Energy()}, nil
}

func (m *Mover) invalidateCrawler(ctx context.Context, crawlerID int64) {
	keys := []string{
		cache.KeyCurrentRoom(crawlerID),
		cache.KeyExplored(crawlerID),
	}
	for r := int32(0); r <= maxScanRange; r++ {
		keys = append(keys, cache.KeyScanned(crawlerID, r))
	}
	cache.Invalidate(ctx, m.cache, keys...)
}
