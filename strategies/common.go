// Package strategies implements the four interchangeable scheduler
// strategies (GD/IP global priority list, AP per-core private priority
// list, LL per-core LIFO, and PBQ per-core heap-of-heaps with
// split-and-steal) plus the registry that selects one of them by name.
package strategies

import scheduler "github.com/abouteiller/parsec"

// descendingPriority is the standard ordering: "a.priority > b.priority".
func descendingPriority(a, b *scheduler.Task) bool {
	return scheduler.PriorityComparator(a, b) > 0
}
