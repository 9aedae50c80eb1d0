package header

import (
	"math"

	"github.com/invoscan/invoscan/model"
)

// clusterLabels groups token centers with density-based clustering: a point
// with at least minPoints neighbors within eps seeds a cluster, which grows
// through every dense neighbor. Labels are assigned in token order, so the
// first cluster found is the topmost block on the page. Points in no dense
// region get label -1.
func clusterLabels(tokens []model.Token, eps float64, minPoints int) []int {
	const unvisited = -2

	n := len(tokens)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = unvisited
	}
	if n == 0 {
		return labels
	}
	if n == 1 {
		labels[0] = 0
		return labels
	}

	neighbors := func(i int) []int {
		var out []int
		cx, cy := tokens[i].CenterX(), tokens[i].CenterY()
		for j := 0; j < n; j++ {
			if math.Hypot(tokens[j].CenterX()-cx, tokens[j].CenterY()-cy) <= eps {
				out = append(out, j)
			}
		}
		return out
	}

	next := 0
	for i := 0; i < n; i++ {
		if labels[i] != unvisited {
			continue
		}
		seed := neighbors(i)
		if len(seed) < minPoints {
			labels[i] = -1
			continue
		}
		label := next
		next++
		labels[i] = label

		queue := append([]int(nil), seed...)
		for len(queue) > 0 {
			j := queue[0]
			queue = queue[1:]
			if labels[j] == -1 {
				labels[j] = label
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = label
			if more := neighbors(j); len(more) >= minPoints {
				queue = append(queue, more...)
			}
		}
	}
	return labels
}
