package businessflow

import (
	"math/rand"
	"strconv"
	"sync"
	"time"
)

// BucketAssignment is the outcome of a sticky bucket decision: the value in
// [0, 1) used for channel selection and the token the caller should hand
// back to the visitor.
type BucketAssignment struct {
	Value float64
	Token string
	IsNew bool
}

// StickyBucketAssigner gives every visitor a stable position in [0, 1) so
// repeated visits land on the same channel as long as the weight table does
// not change.
type StickyBucketAssigner interface {
	AssignBucket(existingToken string) BucketAssignment
}

type StickyBucketAssignerImpl struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewStickyBucketAssigner() StickyBucketAssigner {
	return &StickyBucketAssignerImpl{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewStickyBucketAssignerWithSource injects a deterministic source for tests.
func NewStickyBucketAssignerWithSource(rnd *rand.Rand) StickyBucketAssigner {
	return &StickyBucketAssignerImpl{rnd: rnd}
}

// AssignBucket reuses the decoded token when it parses to a float in [0, 1)
// and draws a fresh value otherwise. A malformed or out-of-range token is
// treated the same as no token at all.
func (a *StickyBucketAssignerImpl) AssignBucket(existingToken string) BucketAssignment {
	if existingToken != "" {
		if v, err := strconv.ParseFloat(existingToken, 64); err == nil && v >= 0 && v < 1 {
			return BucketAssignment{Value: v, Token: existingToken}
		}
	}

	a.mu.Lock()
	v := a.rnd.Float64()
	a.mu.Unlock()

	return BucketAssignment{Value: v, Token: FormatBucketToken(v), IsNew: true}
}

// FormatBucketToken renders a bucket value with the shortest representation
// that round-trips exactly through ParseFloat.
func FormatBucketToken(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
