// Package imagegen resolves loosely-typed generation requests and manages
// acquisition of the underlying Z-Image pipeline.
//
// cache.go implements the process-wide single-slot pipeline cache. Pipeline
// construction is costly (model loading, device placement, optional
// compilation), so at most one live pipeline exists at a time, rebuilt only
// when the construction configuration changes.
package imagegen

import (
	"context"
	"fmt"
	"sync"

	"github.com/dax8it/z-image-mps/zruntime"
)

// PipelineConfig is the construction key for the pipeline cache. It is an
// immutable value type; two requests with equal configs (structural
// equality) share the same pipeline instance, and any field difference
// forces reconstruction.
type PipelineConfig struct {
	// Device is the device preference: auto, mps, cuda or cpu.
	Device string
	// AttentionBackend selects the attention computation strategy.
	AttentionBackend string
	// Compile enables ahead-of-time compilation.
	Compile bool
	// CPUOffload enables CPU offload of idle submodules.
	CPUOffload bool
	// LoRAName is the normalized adapter name; empty means none.
	LoRAName string
	// LoRAScale is the adapter blend scale.
	LoRAScale float64
}

// CachedPipeline is the triple produced by a cache acquisition: the built
// pipeline plus the device and dtype it was resolved onto. Owned by the
// cache; callers must not close the pipeline themselves.
type CachedPipeline struct {
	Pipeline *zruntime.Pipeline
	Device   zruntime.Device
	DType    zruntime.DType
}

// PickDeviceFunc resolves a device preference into a (device, dtype) pair.
type PickDeviceFunc func(pref string) (zruntime.Device, zruntime.DType, error)

// BuildPipelineFunc constructs a pipeline for the given options and target.
type BuildPipelineFunc func(ctx context.Context, opts zruntime.BuildOptions, device zruntime.Device, dtype zruntime.DType) (*zruntime.Pipeline, error)

// PipelineCache memoizes a single pipeline keyed by its construction
// configuration.
//
// The whole check-then-construct-then-install sequence runs under one mutex:
// concurrent requests with the same config observe exactly one construction,
// and concurrent requests with different configs are serialized instead of
// leaking a second live pipeline. A failed construction leaves the slot
// untouched, so the previous valid pipeline, if any, remains usable.
type PipelineCache struct {
	mu    sync.Mutex
	key   PipelineConfig
	entry *CachedPipeline

	pickDevice PickDeviceFunc
	build      BuildPipelineFunc
	loraDir    string
}

// NewPipelineCache creates a cache wired to the real runtime collaborators.
// loraDir is the directory containing adapter subdirectories.
func NewPipelineCache(loraDir string) *PipelineCache {
	return &PipelineCache{
		pickDevice: zruntime.PickDevice,
		build:      zruntime.BuildPipeline,
		loraDir:    loraDir,
	}
}

// NewPipelineCacheWith creates a cache with custom collaborators.
// This variant is primarily used for testing.
func NewPipelineCacheWith(pick PickDeviceFunc, build BuildPipelineFunc, loraDir string) *PipelineCache {
	return &PipelineCache{
		pickDevice: pick,
		build:      build,
		loraDir:    loraDir,
	}
}

// Acquire returns the cached pipeline for cfg, constructing it on first use
// or when cfg differs from the stored key. On a hit the stored triple is
// returned with no reconstruction cost.
//
// On construction failure the error propagates and the slot is left
// unchanged; a subsequent acquisition with the previous key still hits.
func (c *PipelineCache) Acquire(ctx context.Context, cfg PipelineConfig) (*CachedPipeline, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry != nil && c.key == cfg {
		return c.entry, nil
	}

	device, dtype, err := c.pickDevice(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("resolve device: %w", err)
	}

	opts := zruntime.BuildOptions{
		AttentionBackend: cfg.AttentionBackend,
		Compile:          cfg.Compile,
		CPUOffload:       cfg.CPUOffload,
		LoRAName:         cfg.LoRAName,
		LoRAScale:        cfg.LoRAScale,
		LoRADir:          c.loraDir,
	}

	pipeline, err := c.build(ctx, opts, device, dtype)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	// Release the previous instance only after the replacement is built.
	if c.entry != nil {
		c.entry.Pipeline.Close()
	}

	c.key = cfg
	c.entry = &CachedPipeline{Pipeline: pipeline, Device: device, DType: dtype}
	return c.entry, nil
}

// Close releases the cached pipeline, if any. The cache is empty afterwards.
func (c *PipelineCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry == nil {
		return nil
	}
	err := c.entry.Pipeline.Close()
	c.entry = nil
	c.key = PipelineConfig{}
	return err
}
