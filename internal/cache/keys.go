package cache

import (
	"fmt"
	"time"
)

// Per-class TTLs. The TTL is the staleness bound for its key class, not a
// correctness guarantee: a read racing an invalidation may repopulate stale
// data, which expires within the bound.
const (
	TTLOccupancy   = 120 * time.Second  // room mob lists churn with combat
	TTLCurrentRoom = 300 * time.Second  // crawler-scoped current room
	TTLExploration = 600 * time.Second  // crawler-scoped visited sets
	TTLTactical    = 1800 * time.Second // tactical boards, faction data
	TTLFloor       = 3600 * time.Second // floor-level aggregates
)

// Key builders. One builder per key class keeps invalidation sites and
// read sites agreeing on the exact key.

func KeyRoom(roomID int64) string {
	return fmt.Sprintf("room:%d", roomID)
}

func KeyConnections(roomID int64) string {
	return fmt.Sprintf("room:%d:connections", roomID)
}

func KeyRoomMobs(roomID int64) string {
	return fmt.Sprintf("room:%d:mobs", roomID)
}

func KeyTactical(roomID int64) string {
	return fmt.Sprintf("room:%d:tactical", roomID)
}

func KeyCurrentRoom(crawlerID int64) string {
	return fmt.Sprintf("crawler:%d:room", crawlerID)
}

func KeyExplored(crawlerID int64) string {
	return fmt.Sprintf("crawler:%d:explored", crawlerID)
}

func KeyScanned(crawlerID int64, scanRange int32) string {
	return fmt.Sprintf("crawler:%d:scan:%d", crawlerID, scanRange)
}

func KeyFloorRooms(floorID int64) string {
	return fmt.Sprintf("floor:%d:rooms", floorID)
}

func KeyFloorBounds(floorID int64) string {
	return fmt.Sprintf("floor:%d:bounds", floorID)
}
