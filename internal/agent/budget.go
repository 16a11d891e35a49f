package agent

// Budget tracks tool-call spending within one dispatch round. The counter
// only ever grows; continuation approval raises the threshold by the
// original increment instead of resetting the count, so with threshold T
// the pauses fall at T, 2T, 3T and so on.
type Budget struct {
	count     int
	threshold int
	increment int
}

// DefaultBudgetThreshold is the number of tool calls allowed before the
// first continuation pause.
const DefaultBudgetThreshold = 5

// NewBudget creates a budget. threshold <= 0 uses the default.
func NewBudget(threshold int) *Budget {
	if threshold <= 0 {
		threshold = DefaultBudgetThreshold
	}
	return &Budget{threshold: threshold, increment: threshold}
}

// Spend records n executed tool calls, including denied and errored ones.
func (b *Budget) Spend(n int) {
	b.count += n
}

// Exhausted reports whether the loop must pause for continuation approval
// before the next model turn.
func (b *Budget) Exhausted() bool {
	return b.count >= b.threshold
}

// Raise lifts the threshold by the increment after a continuation approval.
func (b *Budget) Raise() {
	b.threshold += b.increment
}

// Count returns the cumulative number of executed tool calls this round.
func (b *Budget) Count() int {
	return b.count
}

// Threshold returns the current pause threshold.
func (b *Budget) Threshold() int {
	return b.threshold
}
