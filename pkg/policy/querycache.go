package policy

import (
	"sync"

	"github.com/open-policy-agent/opa/v1/rego"
)

// queryCache caches a prepared Rego query per stage, the same
// lock-plus-map shape as the Confirmate regoEval's queryCache: avoid
// re-parsing/re-compiling policy modules on every evaluated sample.
type queryCache struct {
	mu    sync.Mutex
	cache map[string]*rego.PreparedEvalQuery
}

func newQueryCache() *queryCache {
	return &queryCache{cache: make(map[string]*rego.PreparedEvalQuery)}
}

type orElseFunc func(key string) (*rego.PreparedEvalQuery, error)

// Get returns the cached prepared query for key, populating it via orElse
// on a miss.
func (qc *queryCache) Get(key string, orElse orElseFunc) (*rego.PreparedEvalQuery, error) {
	qc.mu.Lock()
	defer qc.mu.Unlock()

	if query, ok := qc.cache[key]; ok {
		return query, nil
	}

	query, err := orElse(key)
	if err != nil {
		return nil, err
	}
	qc.cache[key] = query
	return query, nil
}

// Empty evicts every cached query, forcing the next Get of each key to
// rebuild it against the current modules/data.
func (qc *queryCache) Empty() {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	for k := range qc.cache {
		delete(qc.cache, k)
	}
}
