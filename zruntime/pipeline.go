// Package zruntime provides the Z-Image Turbo pipeline runtime.
//
// pipeline.go implements pipeline construction and invocation. Construction
// is expensive (weight loading, device placement, optional ahead-of-time
// compilation) and side-effecting; callers are expected to hold on to a
// built Pipeline and reuse it. The native binding is selected with the
// "zimage" build tag; without it a deterministic in-process backend is used
// so the rest of the system stays fully testable.
package zruntime

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Attention backend identifiers accepted by BuildOptions.
const (
	BackendSDPA   = "sdpa"
	BackendFlash2 = "flash2"
	BackendFlash3 = "flash3"
)

// AttentionBackends lists the selectable attention backends, default first.
var AttentionBackends = []string{BackendSDPA, BackendFlash2, BackendFlash3}

// BuildOptions holds the construction parameters for a pipeline.
type BuildOptions struct {
	// AttentionBackend selects the attention computation strategy.
	// One of "sdpa", "flash2", "flash3". Flash backends require CUDA.
	AttentionBackend string

	// Compile enables ahead-of-time compilation of the DiT (CUDA best).
	Compile bool

	// CPUOffload moves idle submodules to host memory (CUDA only).
	CPUOffload bool

	// LoRAName names an adapter directory under LoRADir. Empty means no
	// adapter is applied.
	LoRAName string

	// LoRAScale is the adapter blend scale, meaningful only with LoRAName.
	LoRAScale float64

	// LoRADir is the directory containing adapter subdirectories.
	LoRADir string
}

// Pipeline is a constructed generative pipeline bound to a device and dtype.
// It is safe for sequential use; one inference call runs at a time.
type Pipeline struct {
	device Device
	dtype  DType
	opts   BuildOptions
	handle backendHandle
	closed bool
}

// GenerateParams are the fully resolved parameters for one inference call.
type GenerateParams struct {
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
	Steps          int
	GuidanceScale  float64

	// Generator supplies the sampling random stream. Required, and must be
	// bound to the same device as the pipeline.
	Generator *Generator
}

// ImageResult holds one generated image.
type ImageResult struct {
	// PNG contains the encoded image bytes.
	PNG []byte
	// Width and Height of the generated image in pixels.
	Width  int
	Height int
	// Seed that produced the image.
	Seed int64
}

// BuildPipeline constructs a pipeline for the given options on the resolved
// device/dtype pair. It validates the configuration before touching the
// backend so an invalid combination never leaves a half-constructed handle.
//
// Error cases:
//   - ErrBackendUnsupported: flash backend requested off CUDA, or an unknown
//     backend identifier
//   - ErrOffloadUnsupported: CPU offload requested off CUDA
//   - ErrLoRANotFound: named adapter directory does not exist
//   - ErrBuildFailed, ErrOutOfMemory: backend construction failures
func BuildPipeline(ctx context.Context, opts BuildOptions, device Device, dtype DType) (*Pipeline, error) {
	if err := validateBuildOptions(opts, device); err != nil {
		return nil, err
	}

	handle, err := buildBackend(ctx, opts, device, dtype)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		device: device,
		dtype:  dtype,
		opts:   opts,
		handle: handle,
	}, nil
}

// validateBuildOptions checks backend/device compatibility and adapter
// presence. Pure of backend side effects.
func validateBuildOptions(opts BuildOptions, device Device) error {
	switch opts.AttentionBackend {
	case BackendSDPA:
		// Supported everywhere.
	case BackendFlash2, BackendFlash3:
		if device != DeviceCUDA {
			return fmt.Errorf("%w: %s on %s", ErrBackendUnsupported, opts.AttentionBackend, device)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrBackendUnsupported, opts.AttentionBackend)
	}

	if opts.CPUOffload && device != DeviceCUDA {
		return fmt.Errorf("%w: requested on %s", ErrOffloadUnsupported, device)
	}

	if opts.LoRAName != "" {
		dir := filepath.Join(opts.LoRADir, opts.LoRAName)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("%w: %s", ErrLoRANotFound, dir)
		}
	}

	return nil
}

// Device returns the compute device this pipeline was built for.
func (p *Pipeline) Device() Device { return p.device }

// DType returns the numeric precision this pipeline was built with.
func (p *Pipeline) DType() DType { return p.dtype }

// Options returns the construction options this pipeline was built with.
func (p *Pipeline) Options() BuildOptions { return p.opts }

// Generate runs one inference call and returns the produced image.
//
// The generator must be present and bound to the pipeline's device; a
// generator created for one device cannot be silently reused on another.
// Dimension and step preconditions are asserted here as a last line of
// defense, the resolver layer upstream is responsible for meeting them.
func (p *Pipeline) Generate(ctx context.Context, params GenerateParams) (*ImageResult, error) {
	if p.closed {
		return nil, ErrPipelineClosed
	}
	if params.Generator == nil {
		return nil, ErrNilGenerator
	}
	if params.Generator.Device() != p.device {
		return nil, fmt.Errorf("%w: generator on %s, pipeline on %s",
			ErrGeneratorMismatch, params.Generator.Device(), p.device)
	}
	if params.Width < 16 || params.Height < 16 || params.Width%16 != 0 || params.Height%16 != 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, params.Width, params.Height)
	}
	if params.Steps < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidStepCount, params.Steps)
	}

	return p.handle.generate(ctx, params)
}

// Close releases the backend resources held by the pipeline. A pipeline is
// closed implicitly when the cache replaces it; Close is safe to call more
// than once.
func (p *Pipeline) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return p.handle.free()
}

// backendHandle is the boundary to the concrete pipeline implementation.
type backendHandle interface {
	generate(ctx context.Context, params GenerateParams) (*ImageResult, error)
	free() error
}
