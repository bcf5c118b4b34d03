package selection

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/finpulse/internal/contracts"
)

// SnapshotProvider yields a snapshot per symbol and never fails
type SnapshotProvider interface {
	Build(ctx context.Context, symbol string) contracts.TechnicalSnapshot
}

// Scan evaluates the universe concurrently and returns the ranked list.
// Each symbol writes only its own slot; a panic while evaluating one symbol
// excludes that symbol and the scan continues.
func (s *Screener) Scan(ctx context.Context, universe []string, snapshots SnapshotProvider) contracts.OpportunityList {
	symbols := universe
	if s.config.MaxSymbols > 0 && len(symbols) > s.config.MaxSymbols {
		symbols = symbols[:s.config.MaxSymbols]
	}

	type slot struct {
		result contracts.OpportunityResult
		skip   string
	}
	slots := make([]slot, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)

	for i, symbol := range symbols {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					slots[i].skip = "panic"
					s.logger.WithFields(map[string]interface{}{
						"symbol": symbol,
						"panic":  fmt.Sprint(r),
					}).Error("Opportunity evaluation panicked")
				}
			}()

			snap := snapshots.Build(gctx, symbol)
			slots[i].result, slots[i].skip = s.Evaluate(&snap)
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors

	found := make([]contracts.OpportunityResult, 0, len(symbols))
	skipped := make(map[string]int)
	for _, sl := range slots {
		if sl.skip != "" {
			skipped[sl.skip]++
			continue
		}
		found = append(found, sl.result)
	}

	ranked := Rank(found, s.config.TopN)

	s.logger.WithFields(map[string]interface{}{
		"scanned":       len(symbols),
		"opportunities": len(ranked),
		"skipped":       skipped,
		"variant":       s.config.Variant,
	}).Info("Opportunity scan completed")

	return contracts.OpportunityList{
		Opportunities: ranked,
		Scanned:       len(symbols),
		Timestamp:     s.now(),
	}
}
