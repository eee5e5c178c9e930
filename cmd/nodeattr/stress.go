package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/plus3/nodeattr/attr"
	"github.com/plus3/nodeattr/graph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type stressConfig struct {
	Duration       time.Duration
	Nodes          int
	Attributes     int
	OpsPerFrame    int
	Seed           int64
	GCPauseMetrics bool
	Verbose        bool
}

// `nodeattr stress` command
func stressCmd() *cobra.Command {
	cfg := &stressConfig{}
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Runs a randomized attribute workload",
		Long:  "Runs a randomized set/get/iterate/remove-node/detach workload against a graph and prints a report.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			report, reg, err := runStress(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "\n\n--- Stress Test Report ---")
			if err := report.Generate(out); err != nil {
				return fmt.Errorf("generate report: %w", err)
			}
			fmt.Fprintln(out, "--- End of Report ---")

			if cfg.Verbose {
				spew.Fdump(out, reg.Stats())
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.DurationVar(&cfg.Duration, "duration", 10*time.Second, "the total duration the test should run for")
	f.IntVar(&cfg.Nodes, "nodes", 10000, "the initial number of graph nodes")
	f.IntVar(&cfg.Attributes, "attributes", 12, "the number of node attributes to attach")
	f.IntVar(&cfg.OpsPerFrame, "ops", 1000, "attribute operations per frame")
	f.Int64Var(&cfg.Seed, "seed", 0, "random seed (0 picks one from the clock)")
	f.BoolVar(&cfg.GCPauseMetrics, "gc-pause-metrics", false, "enable detailed GC pause metrics in the report")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "dump final attribute statistics")
	return cmd
}

// worker drives one attribute of the workload.
type worker interface {
	step(rng *rand.Rand, g *graph.Graph, ops *OpCounts) error
}

// typedWorker holds the current handle of an attribute and re-attaches it
// under the same name when the workload detaches it.
type typedWorker[T any] struct {
	name   string
	gen    func(*rand.Rand) T
	handle *attr.Handle[T]
	stale  []*attr.Handle[T]
}

func newTypedWorker[T any](reg *attr.Registry, name string, gen func(*rand.Rand) T) (*typedWorker[T], error) {
	h, err := attr.Attach[T](reg, name)
	if err != nil {
		return nil, err
	}
	return &typedWorker[T]{name: name, gen: gen, handle: h}, nil
}

func randomNode(rng *rand.Rand, g *graph.Graph) attr.Index {
	return attr.Index(rng.Intn(int(g.UpperNodeIDBound())))
}

func (w *typedWorker[T]) step(rng *rand.Rand, g *graph.Graph, ops *OpCounts) error {
	switch r := rng.Intn(100); {
	case r < 55:
		i := randomNode(rng, g)
		if !g.HasNode(i) {
			return nil
		}
		ops.Sets++
		return w.handle.Set(i, w.gen(rng))

	case r < 85:
		ops.Gets++
		_, ok, err := w.handle.Get(randomNode(rng, g))
		if ok {
			ops.Hits++
		}
		return err

	case r < 93:
		i := randomNode(rng, g)
		err := g.RemoveNode(i)
		if errors.Is(err, graph.ErrNodeNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		ops.Removals++
		// Keep the node count stable
		g.AddNode()
		return nil

	case r < 99:
		ops.Iterations++
		seq, err := w.handle.All()
		if err != nil {
			return err
		}
		for range seq {
			ops.Visited++
		}
		return nil

	default:
		ops.Reattaches++
		return w.reattach(g.NodeAttributes(), ops)
	}
}

func (w *typedWorker[T]) reattach(reg *attr.Registry, ops *OpCounts) error {
	if err := reg.Detach(w.name); err != nil {
		return err
	}
	h, err := attr.Attach[T](reg, w.name)
	if err != nil {
		return err
	}

	w.stale = append(w.stale, w.handle)
	w.handle = h

	// Handles of the detached attribute must stay invalid
	for _, old := range w.stale {
		if _, err := old.Size(); !errors.Is(err, attr.ErrAttributeInvalid) {
			return fmt.Errorf("stale handle of %q still usable", w.name)
		}
		ops.StaleChecks++
	}
	if len(w.stale) > 8 {
		w.stale = w.stale[len(w.stale)-8:]
	}
	return nil
}

func newWorkers(reg *attr.Registry, n int) ([]worker, error) {
	workers := make([]worker, 0, n)
	for i := 0; i < n; i++ {
		var (
			w   worker
			err error
		)
		name := fmt.Sprintf("attr-%03d", i)
		switch i % 3 {
		case 0:
			w, err = newTypedWorker(reg, name, func(rng *rand.Rand) int { return rng.Int() })
		case 1:
			w, err = newTypedWorker(reg, name, func(rng *rand.Rand) float64 { return rng.Float64() })
		default:
			w, err = newTypedWorker(reg, name, func(rng *rand.Rand) Point {
				return Point{X: rng.Float64(), Y: rng.Float64()}
			})
		}
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, nil
}

func runStress(ctx context.Context, cfg *stressConfig, logger *zap.Logger) (*Report, *attr.Registry, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Nodes <= 0 {
		return nil, nil, fmt.Errorf("nodes must be positive, got %d", cfg.Nodes)
	}
	if cfg.Attributes <= 0 {
		return nil, nil, fmt.Errorf("attributes must be positive, got %d", cfg.Attributes)
	}
	if cfg.OpsPerFrame <= 0 {
		return nil, nil, fmt.Errorf("ops must be positive, got %d", cfg.OpsPerFrame)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	log := logger.Sugar()

	log.Infow("starting attribute stress test", "nodes", cfg.Nodes, "attributes", cfg.Attributes, "seed", seed)

	// 1. Setup graph and attributes
	g := graph.New(attr.WithLogger(logger), attr.WithInitialCapacity(cfg.Nodes))
	g.AddNodes(cfg.Nodes)
	workers, err := newWorkers(g.NodeAttributes(), cfg.Attributes)
	if err != nil {
		return nil, nil, err
	}

	// 2. Run the workload
	report := &Report{
		Duration:       cfg.Duration,
		Nodes:          cfg.Nodes,
		Attributes:     cfg.Attributes,
		OpsPerFrame:    cfg.OpsPerFrame,
		Seed:           seed,
		GCPauseMetrics: cfg.GCPauseMetrics,
		FrameTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Infof("running workload for %s", cfg.Duration)
	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	startTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			frameStart := time.Now()
			for op := 0; op < cfg.OpsPerFrame; op++ {
				w := workers[rng.Intn(len(workers))]
				if err := w.step(rng, g, &report.Ops); err != nil {
					return nil, nil, err
				}
			}
			report.FrameTime.Samples = append(report.FrameTime.Samples, time.Since(frameStart))
			report.TotalFrames++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.FrameTime.Finalize()
	report.LiveNodes = g.NumberOfNodes()
	report.UpperNodeID = int(g.UpperNodeIDBound())
	report.Registry = g.NodeAttributes().Stats()
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Infow("workload finished", "frames", report.TotalFrames, "elapsed", report.TotalTime)
	return report, g.NodeAttributes(), nil
}

func init() {
	spew.Config.Indent = "  "
	spew.Config.DisablePointerAddresses = true
}
