// Command chainsim runs synthetic traffic through a chained queue and reports
// how it behaved.
//
//	chainsim -depth 64 -max-segment 16 -balance -pattern random -items 10000
//	chainsim -config queue.json -trace-db trace.db
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	chainedqueue "github.com/timzifer/chained_queue"
	"github.com/timzifer/chained_queue/internal/sim"
	"github.com/timzifer/chained_queue/internal/trace"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("chainsim", flag.ContinueOnError)
	fs.SetOutput(stderr)

	defaults := chainedqueue.DefaultConfig()
	simDefaults := sim.DefaultOptions()
	var (
		flagConfig      = fs.String("config", "", "JSON config file; flags given explicitly override it")
		flagDepth       = fs.Int("depth", defaults.Depth, "total queue depth")
		flagMaxSegment  = fs.Int("max-segment", defaults.MaxSegmentSize, "maximum segment capacity")
		flagBalance     = fs.Bool("balance", defaults.BalanceSegments, "spread capacity evenly across segments")
		flagFallThrough = fs.Bool("fall-through", defaults.FallThrough, "zero-latency pass through empty segments")
		flagPattern     = fs.String("pattern", string(simDefaults.Pattern), "traffic pattern: burst, stream or random")
		flagItems       = fs.Int("items", simDefaults.Items, "number of elements to send")
		flagFlushEvery  = fs.Int("flush-every", 0, "assert flush every n ticks (0 disables)")
		flagValid       = fs.Uint("valid-percent", uint(simDefaults.ValidPercent), "producer valid probability for the random pattern")
		flagReady       = fs.Uint("ready-percent", uint(simDefaults.ReadyPercent), "consumer ready probability for the random pattern")
		flagTraceDB     = fs.String("trace-db", "", "write a per-tick trace to this SQLite file")
		flagLogLevel    = fs.String("log-level", "info", "debug, info, warn or error")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: parseLevel(*flagLogLevel)}))

	cfg := defaults
	if *flagConfig != "" {
		loaded, err := chainedqueue.LoadConfig(*flagConfig)
		if err != nil {
			logger.Error("[chainsim]", slog.String("event_type", "config.load.failed"), slog.Any("err", err))
			return 1
		}
		cfg = loaded
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "depth":
			cfg.Depth = *flagDepth
		case "max-segment":
			cfg.MaxSegmentSize = *flagMaxSegment
		case "balance":
			cfg.BalanceSegments = *flagBalance
		case "fall-through":
			cfg.FallThrough = *flagFallThrough
		}
	})
	cfg.Logger = logger

	q, err := chainedqueue.New[uint64](cfg)
	if err != nil {
		logger.Error("[chainsim]", slog.String("event_type", "queue.build.failed"), slog.Any("err", err))
		return 1
	}

	opts := sim.Options{
		Pattern:      sim.Pattern(*flagPattern),
		Items:        *flagItems,
		FlushEvery:   *flagFlushEvery,
		ValidPercent: uint32(*flagValid),
		ReadyPercent: uint32(*flagReady),
		Logger:       logger,
	}

	if *flagTraceDB != "" {
		rec, err := trace.Open(*flagTraceDB)
		if err != nil {
			logger.Error("[chainsim]", slog.String("event_type", "trace.open.failed"), slog.Any("err", err))
			return 1
		}
		defer func() {
			if err := rec.Close(); err != nil {
				logger.Error("[chainsim]", slog.String("event_type", "trace.close.failed"), slog.Any("err", err))
			}
		}()
		opts.Recorder = rec
	}

	res, err := sim.Run(q, opts)
	if err != nil {
		logger.Error("[chainsim]", slog.String("event_type", "sim.failed"), slog.Any("err", err))
		return 1
	}

	stats := q.Stats()
	fmt.Fprintf(stdout, "segments     %v\n", q.Plan())
	fmt.Fprintf(stdout, "ticks        %d\n", res.Ticks)
	fmt.Fprintf(stdout, "sent         %d\n", res.Sent)
	fmt.Fprintf(stdout, "received     %d\n", res.Received)
	fmt.Fprintf(stdout, "dropped      %d (%d flushes)\n", res.Dropped, res.Flushes)
	fmt.Fprintf(stdout, "max usage    %d/%d\n", res.MaxUsage, q.Capacity())
	fmt.Fprintf(stdout, "first output %d\n", res.FirstOutputTick)
	fmt.Fprintf(stdout, "stalls       %d\n", stats.Stalls)
	fmt.Fprintf(stdout, "in order     %t\n", res.InOrder)

	if !res.InOrder {
		return 3
	}
	return 0
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
