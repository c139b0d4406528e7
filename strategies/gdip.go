package strategies

import scheduler "github.com/abouteiller/parsec"

// globalListModule is the shared implementation behind both GD and IP:
// every execution unit of a VP shares one priority-sorted *scheduler.List,
// built by EU 0 of each VP and handed out after the startup barrier. The
// two strategies differ only in which end of the list Select pops from —
// GD from the front (strict priority order), IP from the back (the
// lowest-priority ready task, favoring throughput over critical-path
// latency when many same-priority tasks are queued).
type globalListModule struct {
	name     string
	popFront bool
}

// NewGD returns the "global shared priority list, pop front" strategy.
func NewGD() scheduler.Module { return &globalListModule{name: "gd", popFront: true} }

// NewIP returns the "global shared priority list, pop back" strategy.
func NewIP() scheduler.Module { return &globalListModule{name: "ip", popFront: false} }

func (g *globalListModule) Name() string { return g.name }

func (g *globalListModule) Install(ctx *scheduler.Context) error {
	return nil
}

func (g *globalListModule) FlowInit(eu *scheduler.ExecutionUnit, barrier *scheduler.Barrier) error {
	if eu.ID == 0 {
		eu.VP.ExecutionUnits[0].SchedulerObject = scheduler.NewList()
	}
	barrier.Wait()
	eu.SchedulerObject = eu.VP.ExecutionUnits[0].SchedulerObject
	return nil
}

func (g *globalListModule) Schedule(eu *scheduler.ExecutionUnit, chain *scheduler.Chain, distance scheduler.Distance) error {
	list := eu.SchedulerObject.(*scheduler.List)
	for _, t := range chain.Drain() {
		if distance == scheduler.DistanceLocal {
			list.InsertSorted(t, descendingPriority)
		} else {
			list.PushBack(t)
		}
	}
	return nil
}

func (g *globalListModule) Select(eu *scheduler.ExecutionUnit) (*scheduler.Task, scheduler.Distance) {
	list := eu.SchedulerObject.(*scheduler.List)
	var t *scheduler.Task
	if g.popFront {
		t = list.PopFront()
	} else {
		t = list.PopBack()
	}
	if t == nil {
		return nil, 0
	}
	return t, scheduler.DistanceLocal
}

func (g *globalListModule) Remove(ctx *scheduler.Context) error {
	for _, vp := range ctx.VirtualProcesses {
		for _, eu := range vp.ExecutionUnits {
			eu.SchedulerObject = nil
		}
	}
	return nil
}
