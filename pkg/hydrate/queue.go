package hydrate

// queueItem wraps a pending island with its heap slot so reprioritization
// can fix it in place in O(log n).
type queueItem struct {
	island *Island
	index  int
}

// islandQueue is an indexed max-heap ordered by descending priority, FIFO
// within equal priority. It implements container/heap.Interface.
type islandQueue []*queueItem

func (q islandQueue) Len() int { return len(q) }

func (q islandQueue) Less(i, j int) bool {
	a, b := q[i].island, q[j].island
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	// Equal priority: registration order wins.
	return a.seq < b.seq
}

func (q islandQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *islandQueue) Push(x any) {
	item := x.(*queueItem)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *islandQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}
