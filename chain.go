package scheduler

// Chain is the circular doubly-linked sequence of ready tasks handed to a
// Module's Schedule method in a single call. It is built from the tasks'
// own sibling pointers, so no separate allocation is needed: a chain is
// just a task list whose tail wraps back to the head.
type Chain struct {
	head *Task
}

// ChainFromSlice builds a circular chain out of tasks, in the given order.
// Every task must not already be queued elsewhere. An empty slice produces
// an empty chain.
func ChainFromSlice(tasks []*Task) *Chain {
	if len(tasks) == 0 {
		return &Chain{}
	}
	n := len(tasks)
	for i, t := range tasks {
		t.prev = tasks[(i-1+n)%n]
		t.next = tasks[(i+1)%n]
	}
	return &Chain{head: tasks[0]}
}

// Empty reports whether the chain carries no tasks. A nil *Chain is
// treated as empty so that Schedule(eu, nil, distance) is a valid no-op.
func (c *Chain) Empty() bool {
	return c == nil || c.head == nil
}

// Drain detaches every task from the chain and returns them as a plain
// slice, in chain order starting from the head. Each returned task has its
// sibling pointers reset to the not-queued state, ready to be re-linked
// into whatever structure the strategy uses. Draining an empty chain
// returns nil. The chain itself is left empty after Drain.
func (c *Chain) Drain() []*Task {
	if c.Empty() {
		return nil
	}
	var out []*Task
	cur := c.head
	for {
		next := cur.next
		cur.reset()
		out = append(out, cur)
		if next == c.head {
			break
		}
		cur = next
	}
	c.head = nil
	return out
}
