package simulate

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"runtime"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

// NewSeed returns a high-entropy seed from crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// iterationSeed mixes the run seed with an iteration index (splitmix64) so
// that every iteration gets a distinct, reproducible stream.
func iterationSeed(base uint64, i int) uint64 {
	x := base + uint64(i) + 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// shuffler owns a worker's generator and a private permutation of library
// positions. The backing library is never reordered.
type shuffler struct {
	rng   *rand.Rand
	order []int
}

func newShuffler(size int) *shuffler {
	return &shuffler{
		rng:   rand.New(rand.NewSource(0)),
		order: make([]int, size),
	}
}

func (s *shuffler) seed(seed uint64) {
	s.rng.Seed(seed)
}

// shuffle returns a uniform random permutation of library positions. The
// slice is reused by the next call.
func (s *shuffler) shuffle() []int {
	for i := range s.order {
		s.order[i] = i
	}
	s.rng.Shuffle(len(s.order), func(i, j int) {
		s.order[i], s.order[j] = s.order[j], s.order[i]
	})
	return s.order
}

type batch struct {
	start, end int
}

// resolveSeed returns the seed to use, drawing one when unset.
func resolveSeed(seed uint64) (uint64, error) {
	if seed != 0 {
		return seed, nil
	}
	return NewSeed()
}

// run shards opts.Iterations across workers. Each worker owns a tally from
// newTally and a shuffler; step is called once per iteration after the
// shuffler is reseeded. Per-worker tallies are returned for the caller to sum.
func run[T any](ctx context.Context, opts RunOptions, seed uint64, librarySize int,
	newTally func() *T, step func(s *shuffler, tally *T),
) ([]*T, error) {
	workers := opts.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, opts.Iterations)
	size := opts.BatchSize
	if size == 0 {
		size = defaultBatchSize
	}

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan batch, workers)

	g.Go(func() error {
		defer close(jobs)
		for start := 0; start < opts.Iterations; start += size {
			select {
			case jobs <- batch{start: start, end: min(start+size, opts.Iterations)}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	tallies := make([]*T, workers)
	for w := range workers {
		tally := newTally()
		tallies[w] = tally
		g.Go(func() error {
			s := newShuffler(librarySize)
			for b := range jobs {
				if err := gctx.Err(); err != nil {
					return err
				}
				for i := b.start; i < b.end; i++ {
					s.seed(iterationSeed(seed, i))
					step(s, tally)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("simulation interrupted: %w", err)
	}
	return tallies, nil
}

func percent(count int64, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(count) / float64(total)
}
