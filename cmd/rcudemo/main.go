// Command rcudemo is an illustrative driver for the rcu package: it spawns
// one worker goroutine per letter of the alphabet, each of which performs
// a fixed number of read-copy-increment-publish cycles against a shared
// 26-slot counter, then reports whether every slot landed on the expected
// count.
//
// This binary is not part of the rcu package's contract — it exists only
// to demonstrate usage end to end, the way the original C implementation's
// main() exercised its RCU structure with 26 pthreads.
package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/benhaase/rcu"
)

type counters [26]int

func main() {
	workers := flag.Int("workers", 26, "number of worker goroutines, one per letter")
	iterations := flag.Int("iterations", 1000, "read-modify-publish cycles per worker")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger, *workers, *iterations); err != nil {
		logger.Error("rcudemo failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, workers, iterations int) error {
	cell := rcu.NewCell(rcu.NewPayloadRef(counters{}, func(counters) {}))
	defer cell.Dispose()

	logger.Info("spawning workers", zap.Int("workers", workers), zap.Int("iterations", iterations))

	g, _ := errgroup.WithContext(context.Background())
	for w := 0; w < workers; w++ {
		slot := w % 26
		g.Go(func() error {
			for i := 0; i < iterations; i++ {
				snapshot := cell.Read()
				if snapshot == nil {
					continue
				}
				next := snapshot.Value()
				if err := snapshot.Release(); err != nil {
					return err
				}

				next[slot]++

				if err := cell.Update(rcu.NewPayloadRef(next, func(counters) {})); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("joined all workers")

	final := cell.Read()
	if final == nil {
		return nil
	}
	defer func() {
		if err := final.Release(); err != nil {
			logger.Error("releasing final snapshot", zap.Error(err))
		}
	}()

	ok := true
	for slot, count := range final.Value() {
		if count != iterations {
			ok = false
			logger.Warn("slot did not reach expected count",
				zap.Int("slot", slot),
				zap.Int("got", count),
				zap.Int("want", iterations))
		}
	}
	logger.Info("final counts", zap.Bool("all_expected", ok))

	return nil
}
