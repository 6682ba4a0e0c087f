// Package imagegen resolves loosely-typed generation requests and manages
// acquisition of the underlying Z-Image pipeline.
//
// processor.go implements the request orchestrator. It consumes resolved
// dimensions, a resolved seed and the cached pipeline handle, invokes the
// pipeline inside an inference-only scope, and produces the result image
// plus a human-readable run descriptor.
//
// The processor itself performs no logging; failures carry enough stage
// context for the outer layer to render them.
package imagegen

import (
	"context"
	"fmt"

	"github.com/dax8it/z-image-mps/zruntime"
)

// Defaults applied when coercing malformed raw input.
const (
	DefaultSteps     = 9
	DefaultGuidance  = 0.0
	DefaultLoRAScale = 1.0
	DefaultBackend   = zruntime.BackendSDPA
	DefaultAspect    = "1:1"
)

// RawGenerationInput is the untrusted request record as it arrives from the
// front end. Numeric fields are strings on purpose: the transport cannot be
// trusted to preserve numeric types or 64-bit precision, so everything is
// coerced at this boundary and nowhere else.
type RawGenerationInput struct {
	Prompt         string
	NegativePrompt string
	Steps          string
	Guidance       string
	Aspect         string
	Height         string
	Width          string
	Seed           string
	Backend        string
	Device         string
	Compile        bool
	CPUOffload     bool
	LoRAName       string
	LoRAScale      string
}

// GenerationRequest is the resolved, fully-typed form of one inference call.
// Immutable once built; never persisted by this package.
type GenerationRequest struct {
	Prompt         string
	NegativePrompt string
	Steps          int
	Guidance       float64
	Width          int
	Height         int
	Seed           int64
	Config         PipelineConfig
}

// GenerateResult is the outcome of one completed generation.
type GenerateResult struct {
	// Image is the first produced image.
	Image *zruntime.ImageResult
	// Info is the human-readable run descriptor.
	Info string
	// Request echoes the resolved parameters that produced the image.
	Request GenerationRequest
	// Device and DType the run executed on.
	Device zruntime.Device
	DType  zruntime.DType
}

// Processor orchestrates generation requests against the pipeline cache.
type Processor struct {
	cache   *PipelineCache
	presets AspectTable

	// newGenerator is a seam for tests; production uses zruntime.NewGenerator.
	newGenerator func(zruntime.Device, int64) *zruntime.Generator
}

// NewProcessor creates a Processor using the given cache and preset table.
// A nil presets table falls back to the built-in one.
func NewProcessor(cache *PipelineCache, presets AspectTable) *Processor {
	if presets == nil {
		presets = DefaultAspectTable()
	}
	return &Processor{
		cache:        cache,
		presets:      presets,
		newGenerator: zruntime.NewGenerator,
	}
}

// Resolve normalizes a raw input into a fully-typed GenerationRequest
// without touching the pipeline. All coercion fallbacks are silent and
// documented; nothing here can fail.
func (p *Processor) Resolve(raw RawGenerationInput) GenerationRequest {
	steps := clampMin(coerceInt(raw.Steps, DefaultSteps), 1)
	guidance := coerceFloat(raw.Guidance, DefaultGuidance)

	aspect := raw.Aspect
	if aspect == "" {
		aspect = DefaultAspect
	}
	width, height := p.presets.Resolve(aspect, raw.Height, raw.Width)

	backend := raw.Backend
	if backend == "" {
		backend = DefaultBackend
	}

	return GenerationRequest{
		Prompt:         raw.Prompt,
		NegativePrompt: raw.NegativePrompt,
		Steps:          steps,
		Guidance:       guidance,
		Width:          width,
		Height:         height,
		Seed:           ResolveSeed(raw.Seed),
		Config: PipelineConfig{
			Device:           raw.Device,
			AttentionBackend: backend,
			Compile:          raw.Compile,
			CPUOffload:       raw.CPUOffload,
			LoRAName:         NormalizeLoRA(raw.LoRAName),
			LoRAScale:        coerceFloat(raw.LoRAScale, DefaultLoRAScale),
		},
	}
}

// Generate resolves the raw input and runs one inference call.
//
// Resolution order is load-bearing: dimensions and seed resolve first, then
// the cache acquires (and on a key change, rebuilds) the pipeline, and only
// then is the generator derived, because it must bind to the device the
// cache resolved for the current configuration. The pipeline call runs
// inside an inference-only scope that is exited on every path.
//
// Construction and invocation failures propagate to the caller unmodified
// apart from stage context; no retry is attempted.
func (p *Processor) Generate(ctx context.Context, raw RawGenerationInput) (*GenerateResult, error) {
	req := p.Resolve(raw)

	cached, err := p.cache.Acquire(ctx, req.Config)
	if err != nil {
		return nil, fmt.Errorf("acquire pipeline: %w", err)
	}

	generator := p.newGenerator(cached.Device, req.Seed)

	var image *zruntime.ImageResult
	err = zruntime.InferenceMode(func() error {
		var genErr error
		image, genErr = cached.Pipeline.Generate(ctx, zruntime.GenerateParams{
			Prompt:         req.Prompt,
			NegativePrompt: req.NegativePrompt,
			Width:          req.Width,
			Height:         req.Height,
			Steps:          req.Steps,
			GuidanceScale:  req.Guidance,
			Generator:      generator,
		})
		return genErr
	})
	if err != nil {
		return nil, fmt.Errorf("invoke pipeline: %w", err)
	}

	return &GenerateResult{
		Image:   image,
		Info:    Descriptor(req, cached.Device, cached.DType),
		Request: req,
		Device:  cached.Device,
		DType:   cached.DType,
	}, nil
}

// Presets returns the aspect table the processor resolves against.
func (p *Processor) Presets() AspectTable { return p.presets }

// Descriptor formats the effective parameters of a completed run. It is
// built from resolved values only, never from raw input, and is purely
// informational.
func Descriptor(req GenerationRequest, device zruntime.Device, dtype zruntime.DType) string {
	info := fmt.Sprintf(
		"device=%s, dtype=%s, steps=%d, guidance=%g, size=%dx%d, seed=%d, attn=%s, compile=%t, cpu_offload=%t",
		device, dtype, req.Steps, req.Guidance, req.Width, req.Height, req.Seed,
		req.Config.AttentionBackend, req.Config.Compile, req.Config.CPUOffload,
	)
	if req.Config.LoRAName != "" {
		info += fmt.Sprintf(", lora=%s, lora_scale=%g", req.Config.LoRAName, req.Config.LoRAScale)
	}
	return info
}
