package world

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/model"
)

// fakeRoomStore serves a hand-built graph from memory.
type fakeRoomStore struct {
	rooms  map[int64]*model.Room
	conns  map[int64][]*model.Connection
	floors map[int64]*model.Floor
}

func newFakeRoomStore() *fakeRoomStore {
	return &fakeRoomStore{
		rooms:  make(map[int64]*model.Room),
		conns:  make(map[int64][]*model.Connection),
		floors: make(map[int64]*model.Floor),
	}
}

func (s *fakeRoomStore) addFloor(id int64, number int32) *model.Floor {
	f := &model.Floor{ID: id, Number: number}
	s.floors[id] = f
	return f
}

func (s *fakeRoomStore) addRoom(room *model.Room) *model.Room {
	s.rooms[room.ID] = room
	return room
}

func (s *fakeRoomStore) connect(from, to int64, direction string, locked bool) {
	s.conns[from] = append(s.conns[from], &model.Connection{
		ID:         int64(len(s.conns[from]) + 1),
		FromRoomID: from,
		ToRoomID:   to,
		Direction:  direction,
		IsLocked:   locked,
	})
}

func (s *fakeRoomStore) RoomByID(_ context.Context, roomID int64) (*model.Room, error) {
	return s.rooms[roomID], nil
}

func (s *fakeRoomStore) RoomsByFloor(_ context.Context, floorID int64) ([]*model.Room, error) {
	var rooms []*model.Room
	for _, r := range s.rooms {
		if r.FloorID == floorID {
			rooms = append(rooms, r)
		}
	}
	return rooms, nil
}

func (s *fakeRoomStore) ConnectionsFrom(_ context.Context, roomID int64) ([]*model.Connection, error) {
	return s.conns[roomID], nil
}

func (s *fakeRoomStore) FloorByID(_ context.Context, floorID int64) (*model.Floor, error) {
	return s.floors[floorID], nil
}

func (s *fakeRoomStore) FloorByNumber(_ context.Context, number int32) (*model.Floor, error) {
	for _, f := range s.floors {
		if f.Number == number {
			return f, nil
		}
	}
	return nil, nil
}

func (s *fakeRoomStore) EntranceRoom(_ context.Context, floorID int64) (*model.Room, error) {
	for _, r := range s.rooms {
		if r.FloorID == floorID && r.Type == model.RoomEntrance {
			return r, nil
		}
	}
	return nil, nil
}

// fakePositionStore is an in-memory append-only ledger.
type fakePositionStore struct {
	mu      sync.Mutex
	records []model.PositionRecord
	nextID  int64
}

func newFakePositionStore() *fakePositionStore {
	return &fakePositionStore{}
}

func (s *fakePositionStore) append(crawlerID, roomID int64, enteredAt time.Time) {
	s.nextID++
	s.records = append(s.records, model.PositionRecord{
		ID:        s.nextID,
		CrawlerID: crawlerID,
		RoomID:    roomID,
		EnteredAt: enteredAt,
	})
}

func (s *fakePositionStore) AppendMove(ctx context.Context, crawlerID, roomID int64, enteredAt time.Time, charge func(ctx context.Context, tx pgx.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if charge != nil {
		if err := charge(ctx, nil); err != nil {
			return err
		}
	}
	s.append(crawlerID, roomID, enteredAt)
	return nil
}

func (s *fakePositionStore) Append(_ context.Context, crawlerID, roomID int64, enteredAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.append(crawlerID, roomID, enteredAt)
	return nil
}

func (s *fakePositionStore) Latest(_ context.Context, crawlerID int64) (*model.PositionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *model.PositionRecord
	for i := range s.records {
		rec := &s.records[i]
		if rec.CrawlerID != crawlerID {
			continue
		}
		if latest == nil || rec.EnteredAt.After(latest.EnteredAt) ||
			(rec.EnteredAt.Equal(latest.EnteredAt) && rec.ID > latest.ID) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (s *fakePositionStore) HasVisited(_ context.Context, crawlerID, roomID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].CrawlerID == crawlerID && s.records[i].RoomID == roomID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakePositionStore) VisitedRoomIDs(_ context.Context, crawlerID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[int64]struct{})
	var ids []int64
	for i := range s.records {
		rec := &s.records[i]
		if rec.CrawlerID != crawlerID {
			continue
		}
		if _, ok := seen[rec.RoomID]; ok {
			continue
		}
		seen[rec.RoomID] = struct{}{}
		ids = append(ids, rec.RoomID)
	}
	return ids, nil
}

func (s *fakePositionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// testTime returns a fixed base time offset by n seconds, so ledger
// ordering in tests does not depend on the wall clock.
func testTime(n int) time.Time {
	return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Second)
}

// newTestDungeon builds the three-room floor used across the movement
// tests: Entrance(1) -east- A(2) -east- Stairs(3), plus the reverse west
// connections.
func newTestDungeon() *fakeRoomStore {
	store := newFakeRoomStore()
	store.addFloor(1, 1)
	store.addRoom(&model.Room{ID: 1, FloorID: 1, X: 0, Y: 0, Type: model.RoomEntrance, Name: "Entrance", IsSafe: true})
	store.addRoom(&model.Room{ID: 2, FloorID: 1, X: 1, Y: 0, Type: model.RoomNormal, Name: "Hall", Description: "A dusty hall.", HasLoot: true})
	store.addRoom(&model.Room{ID: 3, FloorID: 1, X: 2, Y: 0, Type: model.RoomStairs, Name: "Stairwell"})
	store.connect(1, 2, model.DirectionEast, false)
	store.connect(2, 1, model.DirectionWest, false)
	store.connect(2, 3, model.DirectionEast, false)
	store.connect(3, 2, model.DirectionWest, false)
	return store
}

// addSecondFloor appends floor 2 with an entrance.
func addSecondFloor(store *fakeRoomStore) *model.Room {
	store.addFloor(2, 2)
	return store.addRoom(&model.Room{ID: 10, FloorID: 2, X: 0, Y: 0, Type: model.RoomEntrance, Name: "Lower Entrance", IsSafe: true})
}
