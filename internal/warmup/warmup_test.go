package warmup

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mwnav/mediawikinav/internal/adapters/logger"
	"github.com/mwnav/mediawikinav/internal/adapters/normalizer"
	"github.com/mwnav/mediawikinav/internal/core/template"
)

func TestWarmUpRendersEveryPipeline(t *testing.T) {
	cfg, _ := normalizer.NewNormalizerFactory().BuildConfig([]string{"spaces1"}, []string{"kx_example"})

	m := NewManager(logger.Nop(), WarmupConfig{Concurrency: 2, Iterations: 3, SampleTextSize: 500})
	m.RegisterPipeline(cfg)
	m.RegisterPipeline(template.Config{})

	assert.Equal(t, 2*3*2, m.WarmUp(context.Background()))
}

func TestWarmUpStopsOnCancel(t *testing.T) {
	m := NewManager(logger.Nop(), WarmupConfig{Concurrency: 1, Iterations: 1000, SampleTextSize: 100, Duration: time.Second})
	m.RegisterPipeline(template.Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, 0, m.WarmUp(ctx))
}

func TestWarmUpWithoutPipelines(t *testing.T) {
	m := NewManager(logger.Nop(), DefaultWarmupConfig())
	assert.Equal(t, 0, m.WarmUp(context.Background()))
}

func TestGenerateSamplePage(t *testing.T) {
	page := GenerateSamplePage(300)
	assert.GreaterOrEqual(t, len(page), 300)
	assert.True(t, strings.Contains(page, "{{Infobox"))

	_, store := template.Tokenize(page, true)
	assert.Greater(t, store.Len(), 1)
}
