package businessflow

import (
	"fmt"
	"math"
	"sort"
)

// ChannelQuota is the exact integer share of one channel in a bulk
// allocation.
type ChannelQuota struct {
	ChannelID uint
	Count     int
}

// Allocate splits total units across channels proportionally to weight using
// the largest remainder method with the Hare quota. Floors of the exact
// proportional shares are handed out first, then the leftover units go to
// the channels with the largest fractional remainders. Ties keep input
// order, so callers get a reproducible split. The returned counts always sum
// to exactly total.
func Allocate(channels []ChannelWeight, total int) ([]ChannelQuota, error) {
	if len(channels) == 0 {
		return nil, NewValidationError("EmptyChannelList", "Channel list is empty", ErrEmptyChannelList)
	}
	if total < 0 {
		return nil, NewValidationError("NegativeTotal", "Total to allocate cannot be negative", ErrNegativeTotal)
	}

	var totalWeight float64
	for _, c := range channels {
		if c.Weight < 0 {
			return nil, NewValidationError("NegativeWeight", "Channel weights cannot be negative", ErrNegativeWeight)
		}
		totalWeight += c.Weight
	}
	if totalWeight <= 0 {
		return nil, NewValidationError("ZeroTotalWeight", "Total channel weight is zero", ErrZeroTotalWeight)
	}

	type share struct {
		count     int
		remainder float64
	}

	shares := make([]share, len(channels))
	assigned := 0
	for i, c := range channels {
		exact := c.Weight / totalWeight * float64(total)
		floor := int(math.Floor(exact))
		shares[i] = share{count: floor, remainder: exact - float64(floor)}
		assigned += floor
	}

	order := make([]int, len(shares))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return shares[order[a]].remainder > shares[order[b]].remainder
	})

	for i := 0; i < total-assigned && i < len(order); i++ {
		shares[order[i]].count++
	}

	out := make([]ChannelQuota, len(channels))
	sum := 0
	for i, c := range channels {
		out[i] = ChannelQuota{ChannelID: c.ChannelID, Count: shares[i].count}
		sum += shares[i].count
	}
	if sum != total {
		return nil, NewInternalError("AllocationMismatch", fmt.Sprintf("allocated %d units instead of %d", sum, total), nil)
	}

	return out, nil
}
