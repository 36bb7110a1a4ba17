package algo

import "container/heap"

type pqItem[T any] struct {
	priority float64
	seq      uint64
	payload  T
}

type pq[T any] []pqItem[T]

func (p pq[T]) Len() int { return len(p) }

// Less orders by priority; equal priorities pop in insertion order.
func (p pq[T]) Less(i, j int) bool {
	if p[i].priority != p[j].priority {
		return p[i].priority < p[j].priority
	}
	return p[i].seq < p[j].seq
}

func (p pq[T]) Swap(i, j int) { p[i], p[j] = p[j], p[i] }

func (p *pq[T]) Push(x any) {
	*p = append(*p, x.(pqItem[T]))
}

func (p *pq[T]) Pop() any {
	old := *p
	n := len(old)
	item := old[n-1]
	var zero pqItem[T]
	old[n-1] = zero
	*p = old[:n-1]
	return item
}

// PriorityQueue is a binary min-heap keyed by a float priority. It has no
// decrease-key: pushing the same payload twice keeps both entries.
type PriorityQueue[T any] struct {
	items pq[T]
	seq   uint64
}

func NewPriorityQueue[T any](capacity int) *PriorityQueue[T] {
	return &PriorityQueue[T]{items: make(pq[T], 0, capacity)}
}

func (q *PriorityQueue[T]) Push(priority float64, payload T) {
	heap.Push(&q.items, pqItem[T]{priority: priority, seq: q.seq, payload: payload})
	q.seq++
}

// Pop removes the entry with the smallest priority. ok is false when the
// queue is empty.
func (q *PriorityQueue[T]) Pop() (priority float64, payload T, ok bool) {
	if len(q.items) == 0 {
		return 0, payload, false
	}
	it := heap.Pop(&q.items).(pqItem[T])
	return it.priority, it.payload, true
}

func (q *PriorityQueue[T]) Len() int { return len(q.items) }
