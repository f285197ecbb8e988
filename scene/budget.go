package scene

import (
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCapacityKB is the 400 MB workbench budget expressed in KB.
const DefaultCapacityKB = 400 * 1024

var kbPrinter = message.NewPrinter(language.English)

// FormatKB renders a KB amount with thousands separators, e.g. "409,600KB".
func FormatKB(kb int) string {
	return kbPrinter.Sprintf("%dKB", kb)
}

// BudgetTracker accumulates the cost of spawned entities against a fixed
// capacity. It only does entity-cost bookkeeping; it never looks at real
// process memory.
type BudgetTracker struct {
	costs       *CostTable
	committedKB int
	capacityKB  int
	log         *zap.Logger
}

// NewBudgetTracker creates a tracker with nothing committed.
func NewBudgetTracker(costs *CostTable, capacityKB int, log *zap.Logger) *BudgetTracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &BudgetTracker{
		costs:      costs,
		capacityKB: capacityKB,
		log:        log,
	}
}

// CanAdmit reports whether committing typ would stay within capacity.
// It has no side effects.
func (b *BudgetTracker) CanAdmit(typ string) bool {
	return b.committedKB+b.costs.Cost(typ) <= b.capacityKB
}

// Commit adds the cost of typ and returns the amount added. It does not
// re-check admission and does not clamp at capacity.
func (b *BudgetTracker) Commit(typ string) int {
	cost := b.costs.Cost(typ)
	b.committedKB += cost
	b.log.Debug("memory committed",
		zap.String("type", typ),
		zap.Int("cost_kb", cost),
		zap.String("total", b.usageLine()))
	return cost
}

// Release subtracts the cost of typ. The total never drops below zero.
func (b *BudgetTracker) Release(typ string) {
	cost := b.costs.Cost(typ)
	b.committedKB = max(0, b.committedKB-cost)
	b.log.Debug("memory released",
		zap.String("type", typ),
		zap.Int("cost_kb", cost),
		zap.String("total", b.usageLine()))
}

// Reset drops the committed total to zero.
func (b *BudgetTracker) Reset() {
	b.committedKB = 0
	b.log.Debug("memory reset", zap.String("total", b.usageLine()))
}

// Percentage is committed/capacity*100. It is not clamped to [0, 100].
func (b *BudgetTracker) Percentage() float64 {
	if b.capacityKB == 0 {
		return 0
	}
	return float64(b.committedKB) / float64(b.capacityKB) * 100
}

// CommittedKB is the summed cost of the live entities.
func (b *BudgetTracker) CommittedKB() int { return b.committedKB }

// CapacityKB is the fixed budget limit.
func (b *BudgetTracker) CapacityKB() int { return b.capacityKB }

// Costs returns the table the tracker charges against.
func (b *BudgetTracker) Costs() *CostTable { return b.costs }

func (b *BudgetTracker) usageLine() string {
	return FormatKB(b.committedKB) + " / " + FormatKB(b.capacityKB)
}
