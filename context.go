package scheduler

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ExecutionUnit (EU) is a worker thread's scheduler-facing handle,
// typically pinned to one core. SchedulerObject is opaque storage the
// installed Module uses however its strategy requires (a shared *List, a
// private *List, a private *HeapList, ...).
type ExecutionUnit struct {
	ID              int
	VP              *VirtualProcess
	SchedulerObject interface{}
}

// VirtualProcess (VP) groups execution units that share NUMA locality.
type VirtualProcess struct {
	ID             int
	ExecutionUnits []*ExecutionUnit
	Context        *Context
}

// Context aggregates every VP in the process and holds the single
// installed scheduler Module. It is constructed explicitly by the caller,
// deliberately avoiding true global mutable state, rather than living
// behind a package-level global.
type Context struct {
	VirtualProcesses []*VirtualProcess
	Module           Module
	Logger           *zap.Logger

	mu sync.Mutex
}

// NewContext builds a Context with nbVP virtual processes, each owning
// euPerVP execution units. logger may be nil, in which case a no-op
// logger is used.
func NewContext(nbVP, euPerVP int, logger *zap.Logger) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx := &Context{Logger: logger}
	for p := 0; p < nbVP; p++ {
		vp := &VirtualProcess{ID: p, Context: ctx}
		for t := 0; t < euPerVP; t++ {
			vp.ExecutionUnits = append(vp.ExecutionUnits, &ExecutionUnit{ID: t, VP: vp})
		}
		ctx.VirtualProcesses = append(ctx.VirtualProcesses, vp)
	}
	return ctx
}

// NumExecutionUnits returns the total EU count across every VP.
func (c *Context) NumExecutionUnits() int {
	n := 0
	for _, vp := range c.VirtualProcesses {
		n += len(vp.ExecutionUnits)
	}
	return n
}

// InstallModule selects m as the process-wide scheduler, calling
// m.Install(c). It is an error to install a module twice without first
// calling Remove.
func (c *Context) InstallModule(m Module) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Module != nil {
		return &FatalError{Kind: Assertion, Scheduler: m.Name(), Task: nil}
	}
	if err := m.Install(c); err != nil {
		return err
	}
	c.Module = m
	c.Logger.Info("scheduler module installed", zap.String("module", m.Name()), zap.Int("eus", c.NumExecutionUnits()))
	return nil
}

// FlowInitAll runs m.FlowInit for every execution unit in the context,
// synchronizing all of them on a single process-wide Barrier so that
// shared state one EU allocates becomes visible to the rest before any of
// them proceed. Each FlowInit call runs on its own goroutine, mirroring
// the source's "every EU enters flow_init roughly concurrently at
// startup."
func (c *Context) FlowInitAll() error {
	if c.Module == nil {
		return fmt.Errorf("no scheduler module installed")
	}
	n := c.NumExecutionUnits()
	barrier := NewBarrier(n)

	errs := make([]error, n)
	var wg sync.WaitGroup
	i := 0
	for _, vp := range c.VirtualProcesses {
		for _, eu := range vp.ExecutionUnits {
			wg.Add(1)
			go func(idx int, eu *ExecutionUnit) {
				defer wg.Done()
				errs[idx] = c.Module.FlowInit(eu, barrier)
			}(i, eu)
			i++
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// RemoveModule tears down the installed module, if any.
func (c *Context) RemoveModule() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Module == nil {
		return nil
	}
	err := c.Module.Remove(c)
	c.Logger.Info("scheduler module removed", zap.String("module", c.Module.Name()))
	c.Module = nil
	return err
}

// Barrier is a single-use, process-wide synchronization point used during
// FlowInit: every execution unit calls Wait() once, and none of them
// proceeds past it until all n have arrived.
type Barrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	n       int
	arrived int
}

// NewBarrier returns a Barrier that releases once n goroutines have
// called Wait.
func NewBarrier(n int) *Barrier {
	b := &Barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks the calling goroutine until n goroutines (including this
// one) have called Wait.
func (b *Barrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.arrived++
	if b.arrived >= b.n {
		b.cond.Broadcast()
		return
	}
	for b.arrived < b.n {
		b.cond.Wait()
	}
}

// Registry maps scheduler-strategy names to constructors. It is built
// explicitly by the caller (typically by calling strategies.Register on a
// fresh Registry) rather than living as package state, deliberately
// avoiding true global mutable state.
type Registry struct {
	constructors map[string]func() Module
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]func() Module)}
}

// Add registers a constructor under name. Registering the same name twice
// overwrites the previous registration.
func (r *Registry) Add(name string, ctor func() Module) {
	r.constructors[name] = ctor
}

// Create looks up name and returns a fresh Module instance. If name isn't
// registered, it falls back to "ll" and returns a *FatalError with Kind ==
// UnknownModule alongside the fallback module so the caller can log the
// warning; if even "ll" isn't registered, Create returns a nil Module and
// a non-nil error.
func (r *Registry) Create(name string) (Module, error) {
	if ctor, ok := r.constructors[name]; ok {
		return ctor(), nil
	}
	if ctor, ok := r.constructors["ll"]; ok {
		return ctor(), &FatalError{Kind: UnknownModule, Scheduler: name}
	}
	return nil, &FatalError{Kind: UnknownModule, Scheduler: name}
}

// Names returns the registered strategy names, unordered.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	return names
}
