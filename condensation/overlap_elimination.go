package condensation

import (
	"container/heap"

	"github.com/google/uuid"
)

// Candidate is a patch together with the certainty of some classifier
type Candidate struct {
	Patch     *Patch
	Certainty float64
}

// OverlapElimination keeps the most certain patches while dropping those that overlap a better one too much.
type OverlapElimination struct {
	// Maximum IoU with an already kept patch. Default is 0.5
	maxOverlap float64
	// Maximum number of kept patches (0 means unlimited). Default is 10
	maxCount int
}

// NewOverlapEliminationDefault creates default instance of OverlapElimination
func NewOverlapEliminationDefault() *OverlapElimination {
	return &OverlapElimination{
		maxOverlap: 0.5,
		maxCount:   10,
	}
}

// NewOverlapElimination creates new instance of OverlapElimination
func NewOverlapElimination(maxOverlap float64, maxCount int) *OverlapElimination {
	if maxCount < 0 {
		maxCount = 0
	}
	return &OverlapElimination{
		maxOverlap: maxOverlap,
		maxCount:   maxCount,
	}
}

// Eliminate returns kept candidates ordered by descending certainty.
// Candidates sharing a patch ID are considered once.
func (oe *OverlapElimination) Eliminate(candidates []Candidate) []Candidate {
	pq := make(certaintyHeap, 0, len(candidates))
	seen := make(map[uuid.UUID]struct{}, len(candidates))
	for i := range candidates {
		if _, ok := seen[candidates[i].Patch.ID]; ok {
			continue
		}
		seen[candidates[i].Patch.ID] = struct{}{}
		pq = append(pq, &certaintyItem{candidate: candidates[i], order: i})
	}
	heap.Init(&pq)

	kept := make([]Candidate, 0)
	for pq.Len() > 0 {
		if oe.maxCount > 0 && len(kept) >= oe.maxCount {
			break
		}
		item := heap.Pop(&pq).(*certaintyItem)
		bbox := item.candidate.Patch.GetBBox()
		overlapping := false
		for _, other := range kept {
			if IoU(bbox, other.Patch.GetBBox()) > oe.maxOverlap {
				overlapping = true
				break
			}
		}
		if !overlapping {
			kept = append(kept, item.candidate)
		}
	}
	return kept
}

// certaintyItem holds a candidate and its position in the input for stable ordering
type certaintyItem struct {
	candidate Candidate
	order     int
}

// certaintyHeap implements heap.Interface as max-heap by certainty
type certaintyHeap []*certaintyItem

func (h certaintyHeap) Len() int { return len(h) }

// Less returns true if i is more certain (ties keep input order)
func (h certaintyHeap) Less(i, j int) bool {
	if h[i].candidate.Certainty != h[j].candidate.Certainty {
		return h[i].candidate.Certainty > h[j].candidate.Certainty
	}
	return h[i].order < h[j].order
}

func (h certaintyHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *certaintyHeap) Push(x any) {
	*h = append(*h, x.(*certaintyItem))
}

func (h *certaintyHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return item
}
