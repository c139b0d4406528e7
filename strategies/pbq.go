package strategies

import scheduler "github.com/abouteiller/parsec"

// pbqModule implements the heap-of-heaps strategy: each execution unit
// owns a *scheduler.HeapList of singleton-or-merged *scheduler.Heap
// envelopes, sorted by each heap's cached priority. Select first pops the
// local front heap and removes its root directly; failing that, it steals
// from peer EUs in ascending victim order via Heap.SplitAndSteal,
// returning whatever the split leaves behind to the victim's list: the
// kept heap in sorted position, the split-off heap (if any) at the head.
//
// The control flow is "try the local heap first, else steal from
// successive victim offsets, give up once every peer is empty". Only the
// stolen path splits a heap in two; the owning EU's own pop is a plain
// Remove, so a local heap that later grows past one task (were Schedule
// ever to merge into an existing heap instead of inserting singletons)
// still drains in full priority order rather than being cut in half on
// every local Select.
type pbqModule struct{}

// NewPBQ returns the per-core heap-of-heaps split-and-steal strategy.
func NewPBQ() scheduler.Module { return &pbqModule{} }

func (p *pbqModule) Name() string { return "pbq" }

func (p *pbqModule) Install(ctx *scheduler.Context) error { return nil }

func (p *pbqModule) FlowInit(eu *scheduler.ExecutionUnit, barrier *scheduler.Barrier) error {
	eu.SchedulerObject = scheduler.NewHeapList()
	barrier.Wait()
	return nil
}

// Schedule partitions chain into individual tasks and inserts each as its
// own singleton heap into the local list, in priority order.
func (p *pbqModule) Schedule(eu *scheduler.ExecutionUnit, chain *scheduler.Chain, distance scheduler.Distance) error {
	list := eu.SchedulerObject.(*scheduler.HeapList)
	for _, t := range chain.Drain() {
		list.InsertSorted(scheduler.NewHeapOf(t))
	}
	return nil
}

// Select tries the local front heap first, then steals from peer EUs in
// ascending topology-distance order (here: ascending EU-index offset,
// wrapping around the VP's EU list, since no hardware topology is
// modeled at this layer).
func (p *pbqModule) Select(eu *scheduler.ExecutionUnit) (*scheduler.Task, scheduler.Distance) {
	local := eu.SchedulerObject.(*scheduler.HeapList)

	if h := local.PopFront(); h != nil {
		t := h.Remove()
		if !h.Empty() {
			local.InsertSorted(h)
		}
		return t, scheduler.DistanceLocal
	}

	peers := eu.VP.ExecutionUnits
	n := len(peers)
	for offset := 1; offset < n; offset++ {
		victim := peers[(eu.ID+offset)%n]
		victimList := victim.SchedulerObject.(*scheduler.HeapList)

		h := victimList.PopFront()
		if h == nil {
			continue
		}
		t, remainder := h.SplitAndSteal()
		if !h.Empty() {
			victimList.InsertSorted(h)
		}
		if remainder != nil {
			victimList.PushFrontHeap(remainder)
		}
		return t, scheduler.Distance(offset)
	}

	return nil, 0
}

func (p *pbqModule) Remove(ctx *scheduler.Context) error {
	for _, vp := range ctx.VirtualProcesses {
		for _, eu := range vp.ExecutionUnits {
			eu.SchedulerObject = nil
		}
	}
	return nil
}
