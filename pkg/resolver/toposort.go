package resolver

import (
	"fmt"
	"sort"

	"weaver/pkg/apperror"
	"weaver/pkg/semconv"
)

// edgeFunc returns the ids a group depends on (must be ordered before it).
type edgeFunc func(id semconv.SignalID) []semconv.SignalID

// kahnToposort orders ids so that every dependency precedes its dependents,
// using Kahn's algorithm: a queue of zero-in-degree nodes, draining one at a
// time and decrementing its children's in-degree. This is the teacher's
// queue-plus-visited-map BFS idiom (originally a plain graph-reachability
// walk) adapted to produce a stable topological order instead, so that
// extends/include cycles are caught as leftover nonzero in-degree nodes
// rather than infinite recursion.
//
// errCode is used to tag a detected cycle with the right apperror code
// (CodeExtendsCycle or CodeIncludeCycle).
func kahnToposort(ids []semconv.SignalID, edges edgeFunc, errCode apperror.ErrorCode) ([]semconv.SignalID, error) {
	inDegree := make(map[semconv.SignalID]int, len(ids))
	children := make(map[semconv.SignalID][]semconv.SignalID)
	idSet := make(map[semconv.SignalID]bool, len(ids))
	for _, id := range ids {
		inDegree[id] = 0
		idSet[id] = true
	}

	for _, id := range ids {
		for _, dep := range edges(id) {
			if !idSet[dep] {
				continue // unresolved dependency reported separately
			}
			children[dep] = append(children[dep], id)
			inDegree[id]++
		}
	}

	queue := make([]semconv.SignalID, 0, len(ids))
	for _, id := range ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	sort.Slice(queue, func(i, j int) bool { return queue[i] < queue[j] })

	visited := make(map[semconv.SignalID]bool, len(ids))
	order := make([]semconv.SignalID, 0, len(ids))

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		order = append(order, id)

		next := append([]semconv.SignalID(nil), children[id]...)
		sort.Slice(next, func(i, j int) bool { return next[i] < next[j] })
		for _, c := range next {
			inDegree[c]--
			if inDegree[c] == 0 {
				queue = append(queue, c)
			}
		}
	}

	if len(order) != len(ids) {
		var remaining []string
		for _, id := range ids {
			if !visited[id] {
				remaining = append(remaining, string(id))
			}
		}
		sort.Strings(remaining)
		return nil, apperror.New(errCode, fmt.Sprintf("cycle detected among groups: %v", remaining))
	}

	return order, nil
}
