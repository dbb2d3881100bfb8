package chainedqueue

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/sugawarayuuta/sonnet"

	"github.com/timzifer/chained_queue/internal/plan"
)

// Config describes a chained queue. It is fixed once New has returned.
type Config struct {
	// Depth is the total capacity D.
	Depth int `json:"depth"`
	// MaxSegmentSize bounds the capacity of a single segment. Values larger
	// than Depth are clamped to Depth.
	MaxSegmentSize int `json:"max_segment_size"`
	// BalanceSegments spreads Depth evenly instead of filling segments to
	// MaxSegmentSize and leaving the remainder to the last one.
	BalanceSegments bool `json:"balance_segments"`
	// FallThrough lets an element entering an empty segment become visible
	// downstream in the same tick.
	FallThrough bool `json:"fall_through"`

	// Logger receives construction and flush events. Defaults to slog.Default().
	Logger *slog.Logger `json:"-"`
}

// DefaultConfig returns an eight entry queue made of two segments.
func DefaultConfig() Config {
	return Config{
		Depth:          8,
		MaxSegmentSize: 4,
	}
}

// Validate reports configuration errors that would prevent planning.
func (c Config) Validate() error {
	if c.Depth <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDepth, c.Depth)
	}
	if c.MaxSegmentSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSegmentSize, c.MaxSegmentSize)
	}
	return nil
}

// Plan returns the segment capacities New would build for c.
func (c Config) Plan() ([]int, error) {
	p, err := plan.Plan(c.Depth, c.MaxSegmentSize, c.BalanceSegments)
	if err != nil {
		return nil, err
	}
	return p.Capacities, nil
}

// LoadConfig reads a JSON configuration file on top of DefaultConfig and
// validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := sonnet.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
