// Package zruntime provides the Z-Image Turbo pipeline runtime.
package zruntime

import "errors"

// Sentinel errors for pipeline runtime operations.
// These are domain-specific errors that provide clear failure modes.
var (
	// Device resolution errors
	ErrUnknownDevice = errors.New("zruntime: unknown device preference")

	// Pipeline construction errors
	ErrBackendUnsupported = errors.New("zruntime: attention backend not supported on resolved device")
	ErrOffloadUnsupported = errors.New("zruntime: cpu offload requires a cuda device")
	ErrLoRANotFound       = errors.New("zruntime: lora adapter directory not found")
	ErrBuildFailed        = errors.New("zruntime: failed to build pipeline")

	// Invocation errors
	ErrGenerationFailed = errors.New("zruntime: image generation failed")
	ErrOutOfMemory      = errors.New("zruntime: out of device memory")
	ErrPipelineClosed   = errors.New("zruntime: pipeline has been released")

	// Generator errors
	ErrNilGenerator       = errors.New("zruntime: generator is required")
	ErrGeneratorMismatch  = errors.New("zruntime: generator is bound to a different device")
	ErrInvalidDimensions  = errors.New("zruntime: width and height must be positive multiples of 16")
	ErrInvalidStepCount   = errors.New("zruntime: step count must be at least 1")
)
