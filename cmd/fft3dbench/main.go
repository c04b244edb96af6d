// Command fft3dbench benchmarks distributed 3D FFT forward transforms over
// an in-process transport.Group across a range of global sizes, process
// counts, and reshape strategies.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	fft3d "github.com/cwbudde/fft3d"
	"github.com/cwbudde/fft3d/box"
	"github.com/cwbudde/fft3d/oned"
	"github.com/cwbudde/fft3d/transport"
)

var strategyNames = map[string]fft3d.ReshapeStrategy{
	"alltoall": fft3d.ReshapeAllToAll,
	"pairwise": fft3d.ReshapePairwise,
	"pipeline": fft3d.ReshapeAxisPipelined,
}

type benchResult struct {
	size     [3]int
	ranks    int
	strategy string
	nsPerOp  float64
}

func main() {
	var (
		sizeList     = flag.String("sizes", "32x32x32,64x64x64", "comma-separated NxNxN global sizes")
		rankList     = flag.String("ranks", "1,2,4", "comma-separated process counts to simulate")
		strategyList = flag.String("strategies", "alltoall,pairwise,pipeline", "comma-separated reshape strategies")
		iters        = flag.Int("iters", 10, "benchmark iterations")
		warmup       = flag.Int("warmup", 2, "warmup iterations")
		precision    = flag.String("precision", "double", "complex precision: single or double")
		subcomm      = flag.Bool("subcomm", false, "restrict reshape stages to their participating ranks")
		seed         = flag.Int64("seed", 1, "rng seed")
	)
	flag.Parse()

	sizes, err := parseSizes(*sizeList)
	if err != nil {
		fmt.Println(err)
		return
	}
	ranks, err := parseInts(*rankList)
	if err != nil {
		fmt.Println(err)
		return
	}
	strategies, err := parseStrategies(*strategyList)
	if err != nil {
		fmt.Println(err)
		return
	}
	rnd := rand.New(rand.NewSource(*seed))

	fmt.Printf("iters=%d warmup=%d precision=%s subcomm=%v\n", *iters, *warmup, *precision, *subcomm)
	fmt.Printf("%14s  %6s  %10s  %12s\n", "size", "ranks", "strategy", "ns/op")

	var results []benchResult
	for _, size := range sizes {
		for _, n := range ranks {
			for _, strat := range strategies {
				res, err := runBenchmark(*precision, rnd, size, n, strat, *iters, *warmup, *subcomm)
				if err != nil {
					fmt.Printf("%14s  %6d  %10s  skipped: %v\n", sizeName(size), n, strat, err)
					continue
				}
				results = append(results, res)
			}
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].size != results[j].size {
			return sizeName(results[i].size) < sizeName(results[j].size)
		}
		if results[i].ranks != results[j].ranks {
			return results[i].ranks < results[j].ranks
		}
		return results[i].nsPerOp < results[j].nsPerOp
	})

	for _, res := range results {
		fmt.Printf("%14s  %6d  %10s  %12.1f\n", sizeName(res.size), res.ranks, res.strategy, res.nsPerOp)
	}
}

// runBenchmark dispatches to benchmarkOne at the element type "precision"
// names: complex64 for "single", complex128 for "double". ErrPrecisionMismatch
// surfaces here for any other value. (A Plan[complex64] given a complex128
// buffer is rejected at compile time instead.)
func runBenchmark(precision string, rnd *rand.Rand, size [3]int, n int, strategy string, iters, warmup int, subcomm bool) (benchResult, error) {
	switch precision {
	case "single":
		return benchmarkOne[complex64](rnd, size, n, strategy, iters, warmup, subcomm)
	case "double":
		return benchmarkOne[complex128](rnd, size, n, strategy, iters, warmup, subcomm)
	default:
		return benchResult{}, fmt.Errorf("%w: unknown precision %q, want single or double", fft3d.ErrPrecisionMismatch, precision)
	}
}

// benchmarkOne times iters Forward calls of a complex-to-complex plan of
// element type T, partitioned into n slabs along axis 2, run collectively by
// n goroutines standing in for n MPI ranks over an InProcess transport.Group.
func benchmarkOne[T oned.Complex](rnd *rand.Rand, size [3]int, n int, strategy string, iters, warmup int, subcomm bool) (benchResult, error) {
	global := box.New([3]int{0, 0, 0}, [3]int{size[0] - 1, size[1] - 1, size[2] - 1})
	if global.Extent(2) < n {
		return benchResult{}, fmt.Errorf("axis 2 extent %d too small for %d ranks", global.Extent(2), n)
	}

	groups := transport.NewInProcessGroup(n)
	opts := fft3d.DefaultOptions()
	opts.Strategy = strategyNames[strategy]
	opts.UseSubcomm = subcomm

	locals := make([]box.Box, n)
	for r := 0; r < n; r++ {
		locals[r] = slabBox(global, 2, n, r)
	}

	plans := make([]*fft3d.Plan[T], n)
	srcs := make([][]T, n)
	dsts := make([][]T, n)

	var wg sync.WaitGroup
	errs := make([]error, n)
	for r := 0; r < n; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			plan, err := fft3d.NewPlan[T](groups[r], global, global, locals[r], locals[r], opts)
			if err != nil {
				errs[r] = err
				return
			}
			plans[r] = plan

			src := make([]T, plan.SizeInbox())
			for i := range src {
				src[i] = T(complex(rnd.Float64(), rnd.Float64()))
			}
			srcs[r] = src
			dsts[r] = make([]T, plan.SizeOutbox())
		}(r)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return benchResult{}, err
		}
	}
	defer func() {
		for _, p := range plans {
			p.Destroy()
		}
	}()

	runOnce := func() error {
		var wg sync.WaitGroup
		errs := make([]error, n)
		for r := 0; r < n; r++ {
			wg.Add(1)
			go func(r int) {
				defer wg.Done()
				errs[r] = plans[r].Forward(dsts[r], srcs[r])
			}(r)
		}
		wg.Wait()
		for _, err := range errs {
			if err != nil {
				return err
			}
		}
		return nil
	}

	for i := 0; i < warmup; i++ {
		if err := runOnce(); err != nil {
			return benchResult{}, err
		}
	}
	runtime.GC()

	start := time.Now()
	for i := 0; i < iters; i++ {
		if err := runOnce(); err != nil {
			return benchResult{}, err
		}
	}
	elapsed := time.Since(start)

	return benchResult{
		size:     size,
		ranks:    n,
		strategy: strategy,
		nsPerOp:  float64(elapsed.Nanoseconds()) / float64(iters),
	}, nil
}

// slabBox splits global into size contiguous slabs along axis, rank r
// getting the r-th slab, remainder distributed to the first ranks.
func slabBox(global box.Box, axis, size, rank int) box.Box {
	n := global.Extent(axis)
	base, rem := n/size, n%size
	lo := global.Lo[axis]
	for r := 0; r < rank; r++ {
		count := base
		if r < rem {
			count++
		}
		lo += count
	}
	count := base
	if rank < rem {
		count++
	}
	b := global
	b.Lo[axis], b.Hi[axis] = lo, lo+count-1
	return b
}

func sizeName(size [3]int) string {
	return fmt.Sprintf("%dx%dx%d", size[0], size[1], size[2])
}

func parseSizes(list string) ([][3]int, error) {
	parts := strings.Split(list, ",")
	out := make([][3]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dims := strings.Split(part, "x")
		if len(dims) != 3 {
			return nil, fmt.Errorf("invalid size %q, want NxNxN", part)
		}
		var size [3]int
		for i, d := range dims {
			n, err := strconv.Atoi(strings.TrimSpace(d))
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid size %q: %v", part, err)
			}
			size[i] = n
		}
		out = append(out, size)
	}
	return out, nil
}

func parseInts(list string) ([]int, error) {
	parts := strings.Split(list, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid rank count %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}

func parseStrategies(list string) ([]string, error) {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, ok := strategyNames[part]; !ok {
			return nil, fmt.Errorf("unknown strategy %q, want one of alltoall, pairwise, pipeline", part)
		}
		out = append(out, part)
	}
	return out, nil
}
