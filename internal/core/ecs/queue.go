package ecs

// fifo is a slice-backed first-in first-out queue. Popped slots at the head
// are reclaimed once they make up half of the backing array.
type fifo[T any] struct {
	items []T
	head  int
}

func (q *fifo[T]) Len() int { return len(q.items) - q.head }

func (q *fifo[T]) Push(v T) {
	q.items = append(q.items, v)
}

func (q *fifo[T]) Pop() (T, bool) {
	var zero T
	if q.head >= len(q.items) {
		return zero, false
	}
	v := q.items[q.head]
	q.items[q.head] = zero
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head >= 32 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		q.items = q.items[:n]
		q.head = 0
	}
	return v, true
}
