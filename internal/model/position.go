package model

import "time"

// PositionRecord is one entry of the append-only position ledger.
// Records are never updated or deleted; a crawler's current room is the
// record with the latest EnteredAt.
type PositionRecord struct {
	ID        int64
	CrawlerID int64
	RoomID    int64
	EnteredAt time.Time
}

// CostTier classifies the energy cost of a completed move.
type CostTier string

const (
	CostFirstVisit      CostTier = "first-visit"
	CostRevisit         CostTier = "revisit"
	CostFloorTransition CostTier = "floor-transition"
)

// Energy returns the energy units a tier costs. The values are policy
// constants reported to the crawler aggregate, which owns the actual
// energy bookkeeping.
func (t CostTier) Energy() int32 {
	switch t {
	case CostFirstVisit:
		return 10
	case CostRevisit:
		return 5
	case CostFloorTransition:
		return 15
	default:
		return 0
	}
}
