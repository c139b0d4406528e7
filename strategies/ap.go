package strategies

import scheduler "github.com/abouteiller/parsec"

// apModule implements AP ("absolute priority, per-core"): each execution
// unit owns a private priority-sorted list, written and read only by its
// own EU. No stealing; load imbalance is accepted in exchange for zero
// cross-EU contention.
type apModule struct{}

// NewAP returns the per-core private priority list strategy.
func NewAP() scheduler.Module { return &apModule{} }

func (a *apModule) Name() string { return "ap" }

func (a *apModule) Install(ctx *scheduler.Context) error { return nil }

func (a *apModule) FlowInit(eu *scheduler.ExecutionUnit, barrier *scheduler.Barrier) error {
	eu.SchedulerObject = scheduler.NewList()
	barrier.Wait()
	return nil
}

func (a *apModule) Schedule(eu *scheduler.ExecutionUnit, chain *scheduler.Chain, distance scheduler.Distance) error {
	list := eu.SchedulerObject.(*scheduler.List)
	for _, t := range chain.Drain() {
		list.InsertSorted(t, descendingPriority)
	}
	return nil
}

func (a *apModule) Select(eu *scheduler.ExecutionUnit) (*scheduler.Task, scheduler.Distance) {
	list := eu.SchedulerObject.(*scheduler.List)
	t := list.PopFront()
	if t == nil {
		return nil, 0
	}
	return t, scheduler.DistanceLocal
}

func (a *apModule) Remove(ctx *scheduler.Context) error {
	for _, vp := range ctx.VirtualProcesses {
		for _, eu := range vp.ExecutionUnits {
			eu.SchedulerObject = nil
		}
	}
	return nil
}
