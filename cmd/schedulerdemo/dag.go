package main

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	scheduler "github.com/abouteiller/parsec"
)

// CholeskyDAG is a synthetic tiled-Cholesky-factorization task graph: the
// same Potrf/Trsm/Herk/Gemm task shape and tile dependency structure as a
// right-looking block Cholesky factorization, used here purely to drive
// the worker loop with a realistic fan-out/fan-in completion pattern.
// FunctionID/Locals are named and laid out after the tile indices each
// task operates on.
type CholeskyDAG struct {
	nt     int
	handle string // uuid shared by every task in this DAG, like a taskpool id

	mu    sync.Mutex
	nodes map[taskKey]*dagNode
	owner map[string]taskKey // scheduler.Task.ID().String() -> key
}

type taskKind int

const (
	kindPotrf taskKind = iota
	kindTrsm
	kindHerk
	kindGemm
)

type taskKey struct {
	kind    taskKind
	k, m, n int
}

type dagNode struct {
	task         *scheduler.Task
	predecessors int32 // remaining predecessor count, atomic
	successors   []taskKey
}

// BuildCholeskyDAG constructs the full task graph for an nt x nt tiled
// lower-triangular factorization (nt must be >= 1). Every task is
// allocated up front; none are scheduled yet.
func BuildCholeskyDAG(nt int) *CholeskyDAG {
	d := &CholeskyDAG{
		nt:     nt,
		handle: uuid.New().String(),
		nodes:  make(map[taskKey]*dagNode),
		owner:  make(map[string]taskKey),
	}

	for k := 0; k < nt; k++ {
		d.addNode(taskKey{kindPotrf, k, 0, 0}, "Potrf", priorityOf(nt, k, kindPotrf), k)
		for m := k + 1; m < nt; m++ {
			d.addNode(taskKey{kindTrsm, k, m, 0}, "Trsm", priorityOf(nt, k, kindTrsm), k, m)
		}
		for m := k + 1; m < nt; m++ {
			d.addNode(taskKey{kindHerk, k, m, 0}, "Herk", priorityOf(nt, k, kindHerk), k, m)
			for n := m + 1; n < nt; n++ {
				d.addNode(taskKey{kindGemm, k, m, n}, "Gemm", priorityOf(nt, k, kindGemm), k, m, n)
			}
		}
	}

	for key, node := range d.nodes {
		for _, pred := range d.predecessorsOf(key) {
			if pn, ok := d.nodes[pred]; ok {
				pn.successors = append(pn.successors, key)
				node.predecessors++
			}
		}
	}

	return d
}

// priorityOf favors smaller k (closer to the sequential bottleneck) and,
// within one k step, Potrf ahead of Trsm ahead of Herk ahead of Gemm —
// the usual critical-path-first heuristic for tiled factorizations.
func priorityOf(nt, k int, kind taskKind) int32 {
	return int32((nt-k)*10 - int(kind))
}

func (d *CholeskyDAG) addNode(key taskKey, fn string, priority int32, locals ...int) {
	ll := make([]int64, len(locals))
	for i, v := range locals {
		ll[i] = int64(v)
	}
	t := scheduler.NewTask(priority, fn, d.handle, ll...)
	d.nodes[key] = &dagNode{task: t}
	d.owner[t.ID().String()] = key
}

// predecessorsOf returns the tile-dependency predecessors of key, mirroring
// the RAW/WAR hazards the original insert_task calls express through
// shared tile arguments.
func (d *CholeskyDAG) predecessorsOf(key taskKey) []taskKey {
	switch key.kind {
	case kindPotrf:
		var preds []taskKey
		for i := 0; i < key.k; i++ {
			preds = append(preds, taskKey{kindHerk, i, key.k, 0})
		}
		return preds
	case kindTrsm:
		// A(k,m) was last written by Gemm(i,k,m) in an earlier step i<k
		// (Gemm's own (m,n) naming requires m<n, and k<m here, so the
		// earlier-step node is keyed {i, key.k, key.m}, not {i, key.m, key.k}).
		preds := []taskKey{{kindPotrf, key.k, 0, 0}}
		for i := 0; i < key.k; i++ {
			preds = append(preds, taskKey{kindGemm, i, key.k, key.m})
		}
		return preds
	case kindHerk:
		preds := []taskKey{{kindTrsm, key.k, key.m, 0}}
		if key.k > 0 {
			preds = append(preds, taskKey{kindHerk, key.k - 1, key.m, 0})
		}
		return preds
	case kindGemm:
		preds := []taskKey{
			{kindTrsm, key.k, key.m, 0},
			{kindTrsm, key.k, key.n, 0},
		}
		if key.k > 0 {
			preds = append(preds, taskKey{kindGemm, key.k - 1, key.m, key.n})
		}
		return preds
	default:
		panic(fmt.Sprintf("unknown task kind %d", key.kind))
	}
}

// TotalTasks returns how many tasks the whole DAG contains.
func (d *CholeskyDAG) TotalTasks() int {
	return len(d.nodes)
}

// InitialTasks returns every task with no predecessors — ready to submit
// to the scheduler before the worker loop starts.
func (d *CholeskyDAG) InitialTasks() []*scheduler.Task {
	var ready []*scheduler.Task
	for _, node := range d.nodes {
		if atomic.LoadInt32(&node.predecessors) == 0 {
			ready = append(ready, node.task)
		}
	}
	return ready
}

// Complete marks t finished and returns every successor task that just
// became ready as a result (predecessor count reached zero). It is safe
// to call concurrently from multiple worker goroutines.
func (d *CholeskyDAG) Complete(t *scheduler.Task) []*scheduler.Task {
	d.mu.Lock()
	key, ok := d.owner[t.ID().String()]
	d.mu.Unlock()
	if !ok {
		return nil
	}

	node := d.nodes[key]
	var ready []*scheduler.Task
	for _, succKey := range node.successors {
		succ := d.nodes[succKey]
		if atomic.AddInt32(&succ.predecessors, -1) == 0 {
			ready = append(ready, succ.task)
		}
	}
	return ready
}
