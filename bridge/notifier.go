package bridge

// Notifier is the one callback the core may make toward the presentation
// side: the budget changed and a fresh poll would show something new.
//
// No notifier is attached by default. Renderers poll Snapshot on their own
// cadence instead, which avoids flicker from per-mutation updates.
type Notifier interface {
	BudgetChanged()
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func()

func (f NotifierFunc) BudgetChanged() { f() }
