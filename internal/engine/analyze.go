package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/chesscore/internal/board"
)

// Progress is a periodic snapshot of a running search.
type Progress struct {
	Nodes   uint64
	NPS     uint64
	Elapsed time.Duration
}

// Analyze runs FindBestMove while reporting progress every interval. The
// reporter only reads the node counter. A nil report logs progress at
// debug level instead.
func (e *Engine) Analyze(ctx context.Context, pos *board.Position, budget Budget, every time.Duration, report func(Progress)) (SearchResult, error) {
	if every <= 0 {
		every = time.Second
	}
	if report == nil {
		report = func(p Progress) {
			log.Debug().Uint64("nodes", p.Nodes).Uint64("nps", p.NPS).Msg("nodes-per-second")
		}
	}

	g := &errgroup.Group{}
	done := make(chan struct{})
	start := time.Now()

	g.Go(func() error {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		var last uint64
		for {
			select {
			case <-done:
				return nil
			case now := <-ticker.C:
				nodes := e.Nodes()
				report(Progress{
					Nodes:   nodes,
					NPS:     uint64(float64(nodes-last) / every.Seconds()),
					Elapsed: now.Sub(start),
				})
				last = nodes
			}
		}
	})

	var res SearchResult
	g.Go(func() error {
		defer close(done)
		var err error
		res, err = e.FindBestMove(ctx, pos, budget)
		return err
	})

	err := g.Wait()
	return res, err
}
