package warmup

import (
	"context"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mwnav/mediawikinav/internal/core/template"
	"github.com/mwnav/mediawikinav/internal/ports"
)

// WarmupConfig defines configuration for warming up the pipeline
type WarmupConfig struct {
	// Number of concurrent warmup routines to run
	Concurrency int
	// Number of iterations per routine
	Iterations int
	// Sample text size for warmup
	SampleTextSize int
	// Warmup duration (0 means no time limit)
	Duration time.Duration
	// Whether to perform GC after warmup
	ForceGC bool
}

// DefaultWarmupConfig returns the default warmup configuration
func DefaultWarmupConfig() WarmupConfig {
	return WarmupConfig{
		Concurrency:    runtime.NumCPU(),
		Iterations:     200,
		SampleTextSize: 4000,
		Duration:       2 * time.Second,
		ForceGC:        true,
	}
}

// Manager renders sample pages so that the regular expressions, the builder
// pools and the registered transforms are hot before real traffic arrives.
type Manager struct {
	logger  ports.Logger
	configs []template.Config
	opts    template.RenderOptions
	config  WarmupConfig
}

// NewManager creates a new warmup manager
func NewManager(logger ports.Logger, config WarmupConfig) *Manager {
	return &Manager{
		logger: logger,
		opts:   template.DefaultRenderOptions(),
		config: config,
	}
}

// RegisterPipeline adds a normalization config to be warmed up
func (wm *Manager) RegisterPipeline(cfg template.Config) {
	wm.configs = append(wm.configs, cfg)
}

// WarmUp runs every registered pipeline over sample text and returns the
// number of renders performed.
func (wm *Manager) WarmUp(ctx context.Context) int {
	startTime := time.Now()
	wm.logger.Info("Starting pipeline warmup",
		"pipelines", len(wm.configs),
		"concurrency", wm.config.Concurrency,
		"iterations", wm.config.Iterations,
	)

	if wm.config.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, wm.config.Duration)
		defer cancel()
	}

	sample := GenerateSamplePage(wm.config.SampleTextSize)
	routines := wm.config.Concurrency
	if routines < 1 {
		routines = 1
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for i := 0; i < routines && len(wm.configs) > 0; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			done := 0
			defer func() {
				mu.Lock()
				total += done
				mu.Unlock()
			}()

			for j := 0; j < wm.config.Iterations; j++ {
				select {
				case <-ctx.Done():
					return
				default:
				}
				for _, cfg := range wm.configs {
					_ = template.Render(sample, cfg, wm.opts)
					done++
				}
			}
		}()
	}
	wg.Wait()

	if wm.config.ForceGC {
		wm.logger.Debug("Forcing garbage collection after warmup")
		runtime.GC()
	}

	wm.logger.Info("Pipeline warmup completed",
		"renders", total,
		"duration", time.Since(startTime),
	)
	return total
}

// GenerateSamplePage creates wiki source of at least size bytes mixing
// prose with positional, named and multi-line templates.
func GenerateSamplePage(size int) string {
	var sb strings.Builder
	for i := 0; sb.Len() < size; i++ {
		n := strconv.Itoa(i)
		sb.WriteString("Paragraph " + n + " of the sample page. ")
		sb.WriteString("{{cite web|url = https://example.org/" + n + " |title=  Sample   " + n + "}}\n")
		sb.WriteString("{{Infobox\n | name = Item " + n + "\n | kind\t\t| extra  value\n}}\n\n")
	}
	return sb.String()
}
