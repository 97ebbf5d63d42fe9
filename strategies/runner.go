package strategies

import (
	"fmt"
	"sort"
	"sync"

	"github.com/codebybano/updated-adaptive-trend-fusion-strategy/services/engine"
)

// RunAll simulates each asset independently and in parallel. The runs
// share nothing mutable, so results are only combined after every fold
// has completed. The first failing asset aborts the whole batch.
func (s *Strategy) RunAll(assets map[string][]engine.Bar) ([]*engine.Result, engine.Combined, error) {
	symbols := make([]string, 0, len(assets))
	for sym := range assets {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	results := make([]*engine.Result, len(symbols))
	errs := make([]error, len(symbols))

	var wg sync.WaitGroup
	for i, sym := range symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			res, err := s.Run(sym, assets[sym])
			if err != nil {
				errs[i] = fmt.Errorf("run %s: %w", sym, err)
				return
			}
			results[i] = res
		}(i, sym)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, engine.Combined{}, err
		}
	}
	return results, engine.Combine(results), nil
}
