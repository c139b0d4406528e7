package scheduler

import "sync"

// List is a thread-safe, doubly-linked circular container of *Task,
// usable either as a priority-sorted queue (a shared list protected by its
// own lock) or as an unordered per-EU FIFO/LIFO. All operations are O(1)
// except InsertSorted, which is O(k) in the insertion depth.
//
// It is a small hand-rolled structure guarded by its own mutex rather than
// wrapping container/list, which is neither intrusive nor priority-sorted.
type List struct {
	mu   sync.Mutex
	head *Task // nil if empty; circular: head.prev == tail, tail.next == head
	size int
}

// NewList returns an empty List.
func NewList() *List { return &List{} }

// Len returns the number of tasks currently in the list.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

// PushFront links t at the head of the list (used by LL's stack push).
func (l *List) PushFront(t *Task) {
	assertNotQueued(t)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.linkBefore(t, l.head)
	l.head = t
}

// PushBack links t at the tail of the list.
func (l *List) PushBack(t *Task) {
	assertNotQueued(t)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.linkBefore(t, l.head)
	if l.head == nil {
		l.head = t
	}
}

// InsertSorted links t into descending-priority position using less to
// compare ("a.priority > b.priority" for the standard ordering). less
// must report whether a belongs strictly before b in the list.
func (l *List) InsertSorted(t *Task, less func(a, b *Task) bool) {
	assertNotQueued(t)
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.head == nil {
		l.linkBefore(t, nil)
		l.head = t
		return
	}

	cur := l.head
	for i := 0; i < l.size; i++ {
		if less(t, cur) {
			l.linkBefore(t, cur)
			if cur == l.head {
				l.head = t
			}
			return
		}
		cur = cur.next
	}
	// t belongs after every existing element.
	l.linkBefore(t, l.head)
}

// PopFront unlinks and returns the head of the list, or nil if empty.
func (l *List) PopFront() *Task {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.head == nil {
		return nil
	}
	t := l.head
	l.unlink(t)
	return t
}

// PopBack unlinks and returns the tail of the list, or nil if empty.
func (l *List) PopBack() *Task {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.head == nil {
		return nil
	}
	t := l.head.prev
	l.unlink(t)
	return t
}

// linkBefore links t immediately before pos in the circular ring (pos ==
// nil means "into an empty list") and increments l.size. It does not
// update l.head; callers handle head bookkeeping.
func (l *List) linkBefore(t *Task, pos *Task) {
	if pos == nil {
		t.prev, t.next = t, t
		l.size++
		return
	}
	tail := pos.prev
	t.prev = tail
	t.next = pos
	tail.next = t
	pos.prev = t
	l.size++
}

// unlink removes t from the ring, fixing l.head/l.size. t must currently
// be linked into this list.
func (l *List) unlink(t *Task) {
	if t.next == t {
		l.head = nil
	} else {
		t.prev.next = t.next
		t.next.prev = t.prev
		if l.head == t {
			l.head = t.next
		}
	}
	l.size--
	t.reset()
}

// HeapList is a thread-safe, doubly-linked list of *Heap envelopes sorted
// by each heap's cached Priority (descending), used by the PBQ strategy.
// Its head is guarded by a single mutex so that a thief can atomically
// detach the front heap.
type HeapList struct {
	mu   sync.Mutex
	head *headNode
	size int
}

// headNode wraps a *Heap with its own sibling pointers so HeapList doesn't
// need to reuse Task linkage for heap-of-heaps containment.
type headNode struct {
	heap       *Heap
	prev, next *headNode
}

// NewHeapList returns an empty HeapList.
func NewHeapList() *HeapList { return &HeapList{} }

// Len returns the number of heaps currently in the list.
func (l *HeapList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

// InsertSorted links h into descending-heap-priority position.
func (l *HeapList) InsertSorted(h *Heap) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.insertSortedLocked(h)
}

func (l *HeapList) insertSortedLocked(h *Heap) {
	n := &headNode{heap: h}
	if l.head == nil {
		n.prev, n.next = n, n
		l.head = n
		l.size++
		return
	}
	cur := l.head
	for i := 0; i < l.size; i++ {
		if h.Priority() > cur.heap.Priority() {
			l.linkNodeBefore(n, cur)
			if cur == l.head {
				l.head = n
			}
			l.size++
			return
		}
		cur = cur.next
	}
	l.linkNodeBefore(n, l.head)
	l.size++
}

func (l *HeapList) linkNodeBefore(n, pos *headNode) {
	tail := pos.prev
	n.prev = tail
	n.next = pos
	tail.next = n
	pos.prev = n
}

// PopFront detaches and returns the front (highest-priority) heap, or nil
// if the list is empty. This is the single atomic step an owner or thief
// uses to claim exclusive access to a heap envelope.
func (l *HeapList) PopFront() *Heap {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.head == nil {
		return nil
	}
	n := l.head
	l.unlinkNodeLocked(n)
	return n.heap
}

func (l *HeapList) unlinkNodeLocked(n *headNode) {
	if n.next == n {
		l.head = nil
	} else {
		n.prev.next = n.next
		n.next.prev = n.prev
		if l.head == n {
			l.head = n.next
		}
	}
	l.size--
}

// PushFrontHeap reinserts h at the head of the list unconditionally
// (used when the caller already knows h outranks everything else, e.g.
// right after detaching and splitting the former front heap).
func (l *HeapList) PushFrontHeap(h *Heap) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := &headNode{heap: h}
	if l.head == nil {
		n.prev, n.next = n, n
		l.head = n
		l.size++
		return
	}
	l.linkNodeBefore(n, l.head)
	l.head = n
	l.size++
}
