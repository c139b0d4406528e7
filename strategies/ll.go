package strategies

import scheduler "github.com/abouteiller/parsec"

// llModule implements LL/LFQ ("local LIFO"): each execution unit owns a
// private stack; Schedule pushes to the head and Select pops the head.
// Priority is ignored — newest-ready tends to be a successor of the task
// that just completed, maximizing cache locality at the cost of
// critical-path latency.
type llModule struct{}

// NewLL returns the per-core private LIFO strategy.
func NewLL() scheduler.Module { return &llModule{} }

func (l *llModule) Name() string { return "ll" }

func (l *llModule) Install(ctx *scheduler.Context) error { return nil }

func (l *llModule) FlowInit(eu *scheduler.ExecutionUnit, barrier *scheduler.Barrier) error {
	eu.SchedulerObject = scheduler.NewList()
	barrier.Wait()
	return nil
}

func (l *llModule) Schedule(eu *scheduler.ExecutionUnit, chain *scheduler.Chain, distance scheduler.Distance) error {
	list := eu.SchedulerObject.(*scheduler.List)
	for _, t := range chain.Drain() {
		list.PushFront(t)
	}
	return nil
}

func (l *llModule) Select(eu *scheduler.ExecutionUnit) (*scheduler.Task, scheduler.Distance) {
	list := eu.SchedulerObject.(*scheduler.List)
	t := list.PopFront()
	if t == nil {
		return nil, 0
	}
	return t, scheduler.DistanceLocal
}

func (l *llModule) Remove(ctx *scheduler.Context) error {
	for _, vp := range ctx.VirtualProcesses {
		for _, eu := range vp.ExecutionUnits {
			eu.SchedulerObject = nil
		}
	}
	return nil
}
