// Package merger selects the highest scoring ids from a score table with a
// bounded min-heap.
package merger

import (
	"container/heap"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/searcher/query"
)

// TopK returns the k best entries, descending by score, ties broken by the
// smaller id. k <= 0 or k >= len(items) returns every item sorted.
func TopK(items []query.Scored, k int) []query.Scored {
	if k <= 0 || k > len(items) {
		k = len(items)
	}
	h := &scoredHeap{}
	heap.Init(h)
	for _, item := range items {
		heap.Push(h, item)
		if h.Len() > k {
			heap.Pop(h)
		}
	}
	result := make([]query.Scored, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(query.Scored)
	}
	return result
}

// TopKMap is TopK over an id -> score table.
func TopKMap(scores map[uint32]float64, k int) []query.Scored {
	items := make([]query.Scored, 0, len(scores))
	for id, score := range scores {
		items = append(items, query.Scored{ID: id, Score: score})
	}
	return TopK(items, k)
}

// IDs strips the scores.
func IDs(items []query.Scored) []uint32 {
	out := make([]uint32, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

type scoredHeap []query.Scored

func (h scoredHeap) Len() int { return len(h) }

func (h scoredHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].ID > h[j].ID
}

func (h scoredHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scoredHeap) Push(x interface{}) {
	*h = append(*h, x.(query.Scored))
}

func (h *scoredHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
