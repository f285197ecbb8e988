// Package scene tracks the placed objects of a workbench scene and the coarse
// memory budget they are charged against.
//
// A Scene owns a CostTable, a BudgetTracker and an EntityStore. Every spawn is
// admitted by the tracker before the store creates a record, and every destroy
// releases the record's cost, so the tracker's committed total always equals
// the summed cost of the active entities.
//
// A Scene is not safe for concurrent use. Callers that share one across
// goroutines serialize access through bridge.Queue.
package scene
