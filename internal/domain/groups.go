package domain

import "sort"

// GroupEntry accumulates statistics for one group value.
type GroupEntry struct {
	Total    int
	Positive int
	Negative int
	ScoreSum float64
}

// GroupSummary is the reported view of one group.
type GroupSummary struct {
	Group    string  `json:"group" csv:"group"`
	Total    int     `json:"total" csv:"total"`
	Positive int     `json:"positive" csv:"positive"`
	Negative int     `json:"negative" csv:"negative"`
	AvgScore float64 `json:"avg_score" csv:"avg_score"`
}

// GroupReport is the end-of-run group summary document.
type GroupReport struct {
	DatasetType string         `json:"dataset_type"`
	GroupCol    string         `json:"group_col"`
	Groups      []GroupSummary `json:"groups"`
}

// GroupAggregator keeps per-group counters in order of first appearance.
type GroupAggregator struct {
	order   []string
	entries map[string]*GroupEntry
}

// NewGroupAggregator creates an empty aggregator.
func NewGroupAggregator() *GroupAggregator {
	return &GroupAggregator{entries: make(map[string]*GroupEntry)}
}

// Update adds one successfully scored row to its group.
func (g *GroupAggregator) Update(key string, sentiment Sentiment, score float64) {
	if key == "" {
		key = UnknownGroup
	}
	e, ok := g.entries[key]
	if !ok {
		e = &GroupEntry{}
		g.entries[key] = e
		g.order = append(g.order, key)
	}
	e.Total++
	e.ScoreSum += score
	switch sentiment {
	case Positive:
		e.Positive++
	case Negative:
		e.Negative++
	}
}

// Len returns the number of groups seen.
func (g *GroupAggregator) Len() int {
	return len(g.order)
}

// Summarize returns the groups sorted by total descending. Ties keep the
// order in which groups first appeared.
func (g *GroupAggregator) Summarize() []GroupSummary {
	out := make([]GroupSummary, 0, len(g.order))
	for _, key := range g.order {
		e := g.entries[key]
		avg := 0.0
		if e.Total > 0 {
			avg = Round6(e.ScoreSum / float64(e.Total))
		}
		out = append(out, GroupSummary{
			Group:    key,
			Total:    e.Total,
			Positive: e.Positive,
			Negative: e.Negative,
			AvgScore: avg,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})
	return out
}
