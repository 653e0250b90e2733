package businessflow

// ChannelWeight pairs a channel with its relative share for one traffic
// source. Weights are relative, not percentages; only their ratios matter.
type ChannelWeight struct {
	ChannelID uint
	Weight    float64
}

// SelectChannel maps a bucket value in [0, 1) onto the weight table with a
// cumulative walk. The mapping is deterministic: the same table in the same
// order and the same value always yield the same channel, which is what
// makes sticky buckets sticky.
func SelectChannel(table []ChannelWeight, bucketValue float64) (uint, error) {
	if len(table) == 0 {
		return 0, NewValidationError("NoEligibleChannel", "No eligible channel for selection", ErrNoEligibleChannel)
	}

	var total float64
	for _, cw := range table {
		if cw.Weight < 0 {
			return 0, NewValidationError("NegativeWeight", "Channel weights cannot be negative", ErrNegativeWeight)
		}
		total += cw.Weight
	}
	if total <= 0 {
		return 0, NewValidationError("ZeroTotalWeight", "Total channel weight is zero", ErrZeroTotalWeight)
	}

	// A cursor that reaches exactly zero belongs to the channel whose weight
	// consumed it, so band boundaries stay with the earlier channel.
	cursor := bucketValue * total
	for _, cw := range table {
		cursor -= cw.Weight
		if cursor <= 0 {
			return cw.ChannelID, nil
		}
	}

	// Accumulated float error at bucketValue near 1.0 can walk past the end;
	// the last channel absorbs the remainder.
	return table[len(table)-1].ChannelID, nil
}
