package bridge

import (
	"context"
	"reflect"
	"time"
)

// Task is work the host runs once per loop iteration on the goroutine that
// owns the bridge, typically a renderer polling for changes.
type Task interface {
	Execute(frame *Frame)
}

// TaskFunc adapts a function to Task.
type TaskFunc func(frame *Frame)

func (f TaskFunc) Execute(frame *Frame) { f(frame) }

// Frame is handed to every task in one iteration.
type Frame struct {
	DeltaTime float64
	Bridge    *Bridge
	// Snapshot is taken after queued commands were flushed.
	Snapshot Snapshot
}

// LoopStats provides statistics about loop execution.
type LoopStats struct {
	Iterations      int64
	CommandsFlushed int64
	TaskCount       int
	TotalExecutions int64
	Tasks           []TaskStats
}

// TaskStats provides execution statistics for a single task.
type TaskStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type taskStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

// Loop owns a bridge. Each iteration flushes the command queue and then runs
// the registered tasks in order.
type Loop struct {
	bridge    *Bridge
	queue     *Queue
	tasks     []Task
	taskStats []*taskStatsInternal

	iterations      int64
	commandsFlushed int64
}

// NewLoop creates a loop that drains queue into b.
func NewLoop(b *Bridge, queue *Queue) *Loop {
	return &Loop{
		bridge: b,
		queue:  queue,
		tasks:  make([]Task, 0),
	}
}

// Bridge returns the bridge the loop owns.
func (l *Loop) Bridge() *Bridge { return l.bridge }

// Queue returns the queue the loop drains.
func (l *Loop) Queue() *Queue { return l.queue }

// Register appends a task.
func (l *Loop) Register(task Task) {
	l.tasks = append(l.tasks, task)

	name := "TaskFunc"
	taskType := reflect.TypeOf(task)
	if taskType.Kind() == reflect.Ptr {
		taskType = taskType.Elem()
	}
	if taskType.Name() != "" {
		name = taskType.Name()
	}

	l.taskStats = append(l.taskStats, &taskStatsInternal{
		name:        name,
		minDuration: time.Duration(1<<63 - 1),
	})
}

// Once flushes queued commands and runs every task once.
func (l *Loop) Once(dt float64) {
	l.iterations++
	if l.queue != nil {
		l.commandsFlushed += int64(l.queue.Flush(l.bridge))
	}

	frame := &Frame{
		DeltaTime: dt,
		Bridge:    l.bridge,
		Snapshot:  l.bridge.Snapshot(),
	}

	for i, task := range l.tasks {
		start := time.Now()
		task.Execute(frame)
		duration := time.Since(start)

		stats := l.taskStats[i]
		stats.executionCount++
		stats.lastDuration = duration
		stats.totalDuration += duration

		if duration < stats.minDuration {
			stats.minDuration = duration
		}
		if duration > stats.maxDuration {
			stats.maxDuration = duration
		}
	}
}

// Run calls Once at the given interval until ctx is cancelled.
func (l *Loop) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			l.Once(dt)
		}
	}
}

// GetStats returns statistics about loop execution.
func (l *Loop) GetStats() *LoopStats {
	stats := &LoopStats{
		Iterations:      l.iterations,
		CommandsFlushed: l.commandsFlushed,
		TaskCount:       len(l.tasks),
		Tasks:           make([]TaskStats, len(l.taskStats)),
	}

	var totalExecs int64
	for i, internal := range l.taskStats {
		avgDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		}

		stats.Tasks[i] = TaskStats{
			Name:           internal.name,
			ExecutionCount: internal.executionCount,
			MinDuration:    internal.minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
