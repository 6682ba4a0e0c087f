//go:build !zimage

// Reference backend used when the native Z-Image library is not linked.
// It renders a deterministic procedural image from the generator's random
// stream, so identical (seed, size, steps) inputs produce identical bytes.
// Build with the "zimage" tag to use the native binding instead.

package zruntime

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// buildBackend creates a stub handle. Construction is cheap here, but the
// call sites treat it as expensive, matching the native backend's contract.
func buildBackend(_ context.Context, opts BuildOptions, device Device, dtype DType) (backendHandle, error) {
	return &stubHandle{opts: opts, device: device, dtype: dtype}, nil
}

type stubHandle struct {
	opts   BuildOptions
	device Device
	dtype  DType
	freed  bool
}

func (h *stubHandle) generate(ctx context.Context, params GenerateParams) (*ImageResult, error) {
	if h.freed {
		return nil, ErrPipelineClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	img := renderProcedural(params)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	return &ImageResult{
		PNG:    buf.Bytes(),
		Width:  params.Width,
		Height: params.Height,
		Seed:   params.Generator.Seed(),
	}, nil
}

func (h *stubHandle) free() error {
	h.freed = true
	return nil
}

// renderProcedural draws a gradient perturbed by the generator stream. One
// draw per step keeps the output sensitive to the step count, mirroring how
// sampling consumes randomness in the real pipeline.
func renderProcedural(params GenerateParams) *image.RGBA {
	gen := params.Generator

	base := make([]uint64, params.Steps)
	for i := range base {
		base[i] = gen.next()
	}
	mix := base[len(base)-1]

	img := image.NewRGBA(image.Rect(0, 0, params.Width, params.Height))
	for y := 0; y < params.Height; y++ {
		for x := 0; x < params.Width; x++ {
			v := mix ^ uint64(x)*0x9E3779B97F4A7C15 ^ uint64(y)*0xC2B2AE3D27D4EB4F
			v ^= v >> 29
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(v),
				G: uint8(v >> 8),
				B: uint8(v >> 16),
				A: 255,
			})
		}
	}
	return img
}

// BackendInfo describes the active backend implementation.
func BackendInfo() string {
	return "stub (native z-image library not linked)"
}
