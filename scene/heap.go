package scene

import "runtime"

// HeapReader reports live heap usage of the host process in KB. Readings are
// informational only and never feed admission decisions.
type HeapReader interface {
	HeapKB() int
}

// RuntimeHeap reads the Go runtime heap on every call.
type RuntimeHeap struct{}

func (RuntimeHeap) HeapKB() int {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return int(ms.HeapAlloc / 1024)
}

// FixedHeap always reports the same reading. Useful in tests.
type FixedHeap int

func (h FixedHeap) HeapKB() int { return int(h) }
