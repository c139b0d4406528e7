// Package scheduler implements the per-worker task scheduling core of a
// DAG runtime: a pointer-linked priority max-heap, intrusive ready-queue
// containers, and the pluggable scheduler-module protocol that strategies
// in the sibling strategies package implement (global priority list,
// per-core private list, per-core LIFO, and heap-of-heaps work stealing).
//
// The scheduler never creates or destroys Task values. Apart from
// Context.FlowInitAll, which runs each execution unit's FlowInit on its
// own goroutine during startup, it spawns no goroutines; it is a passive
// data structure driven by caller-owned worker threads, exactly as the
// worker-loop contract in cmd/schedulerdemo demonstrates.
package scheduler

import (
	"fmt"

	"github.com/google/uuid"
)

// Task is the scheduler's view of a DAG task descriptor. Priority is the
// only field scheduling decisions are made on; FunctionID, HandleID and
// Locals are opaque to the scheduler and exist solely for tracing and
// fatal-error messages.
//
// The sibling pointers (prev, next) are the task's exclusive property
// while it is linked into a List, HeapList or Heap; a strategy's worker
// body must never touch them. They are reused for three distinct
// purposes depending on what currently contains the task: chain linkage
// (Chain), list linkage (List), or heap child linkage (Heap) — at most one
// at a time, per the single-containment invariant.
type Task struct {
	Priority   int32
	FunctionID string
	HandleID   string
	Locals     []int64

	id         uuid.UUID
	prev, next *Task
}

// NewTask creates a task descriptor that is not currently contained in any
// scheduler structure. locals is copied defensively.
func NewTask(priority int32, functionID, handleID string, locals ...int64) *Task {
	return &Task{
		Priority:   priority,
		FunctionID: functionID,
		HandleID:   handleID,
		Locals:     append([]int64(nil), locals...),
		id:         uuid.New(),
	}
}

// ID returns the task's trace-only identifier. It plays no role in
// scheduling decisions.
func (t *Task) ID() uuid.UUID {
	return t.id
}

// String renders the task identity fatal-error reporting wants: scheduler
// name (added by the caller) plus function, handle and locals.
func (t *Task) String() string {
	return fmt.Sprintf("%s(handle=%s locals=%v id=%s)", t.FunctionID, t.HandleID, t.Locals, t.id)
}

// Queued reports whether either sibling pointer is set: true for a task
// linked into a Chain or List, or holding children in a Heap. A heap leaf
// (including the sole task of a one-task Heap) has nil sibling pointers
// and reports false.
func (t *Task) Queued() bool {
	return t.prev != nil || t.next != nil
}

// reset returns the task to the "not queued" state (both sibling pointers
// nil). Only
// the container that currently holds t may call this, immediately after
// detaching it.
func (t *Task) reset() {
	t.prev = nil
	t.next = nil
}

// PriorityComparator reports the sign of a.Priority - b.Priority.
func PriorityComparator(a, b *Task) int {
	switch {
	case a.Priority > b.Priority:
		return 1
	case a.Priority < b.Priority:
		return -1
	default:
		return 0
	}
}
