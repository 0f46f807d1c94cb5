// Package lifecycle classifies account lifecycle transitions caused by a
// trade commit: an evaluation passing its target, an account breaching its
// loss floor, or a funded account reaching its payout goal.
package lifecycle

import (
	"github.com/prop-journal/internal/models"
	"github.com/prop-journal/internal/stats"
)

// Kind identifies a lifecycle transition
type Kind string

const (
	KindRankUp    Kind = "RANK_UP"
	KindTargetHit Kind = "TARGET_HIT"
	KindBreach    Kind = "BREACH"
	KindPayout    Kind = "PAYOUT"
)

// Bucket groups event kinds for resolution ordering. Celebrations are
// resolved first, then breaches, then payouts.
type Bucket int

const (
	BucketCelebration Bucket = iota
	BucketBreach
	BucketPayout
	bucketCount
)

// Bucket returns the resolution bucket for the kind
func (k Kind) Bucket() Bucket {
	switch k {
	case KindBreach:
		return BucketBreach
	case KindPayout:
		return BucketPayout
	default:
		return BucketCelebration
	}
}

// Event is a detected lifecycle transition. Events exist only for the
// duration of one commit's resolution queue; they are never persisted.
type Event struct {
	Kind    Kind           `json:"kind"`
	Account models.Account `json:"account"`
	Before  stats.Stats    `json:"stats_before"`
	After   stats.Stats    `json:"stats_after"`
}
