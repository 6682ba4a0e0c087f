// Package zruntime provides the Z-Image Turbo pipeline runtime.
//
// device.go resolves a device preference string into a concrete compute
// device and numeric precision pair. The "auto" preference probes the host:
// CUDA via nvidia-smi, Apple Silicon MPS via GOOS/GOARCH, falling back to CPU.
package zruntime

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Device identifies a compute target for pipeline execution.
type Device string

// Supported compute devices.
const (
	DeviceCPU  Device = "cpu"
	DeviceCUDA Device = "cuda"
	DeviceMPS  Device = "mps"
)

// DType identifies the numeric precision used for pipeline execution.
type DType string

// Supported numeric precisions.
const (
	DTypeFloat16  DType = "float16"
	DTypeBFloat16 DType = "bfloat16"
	DTypeFloat32  DType = "float32"
)

// DeviceProber reports hardware availability for device auto-selection.
// This abstraction allows for mock implementations during testing.
type DeviceProber interface {
	// HasCUDA reports whether a CUDA-capable GPU is present.
	HasCUDA() bool
	// HasMPS reports whether the Metal Performance Shaders backend is present.
	HasMPS() bool
}

// PickDevice resolves a device preference into a (device, dtype) pair using
// the host system prober.
//
// Preferences:
//   - "auto": cuda if available, then mps, then cpu
//   - "cuda", "mps", "cpu": honored verbatim; an explicit preference is
//     trusted even when the prober cannot confirm the hardware, since the
//     native backend reports its own failure on construction
//
// Any other preference returns ErrUnknownDevice.
func PickDevice(pref string) (Device, DType, error) {
	return PickDeviceWith(defaultProber, pref)
}

// PickDeviceWith resolves a device preference using a custom prober.
// This variant is primarily used for testing.
func PickDeviceWith(prober DeviceProber, pref string) (Device, DType, error) {
	switch strings.TrimSpace(strings.ToLower(pref)) {
	case "auto", "":
		if prober.HasCUDA() {
			return DeviceCUDA, DTypeBFloat16, nil
		}
		if prober.HasMPS() {
			return DeviceMPS, DTypeFloat16, nil
		}
		return DeviceCPU, DTypeFloat32, nil
	case "cuda":
		return DeviceCUDA, DTypeBFloat16, nil
	case "mps":
		return DeviceMPS, DTypeFloat16, nil
	case "cpu":
		return DeviceCPU, DTypeFloat32, nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnknownDevice, pref)
	}
}

// defaultProber is the process-wide system prober.
var defaultProber DeviceProber = &systemProber{nvidiaSMIPath: "nvidia-smi"}

// systemProber probes real hardware. CUDA detection shells out to nvidia-smi
// with a short timeout; the result is cached for the process lifetime since
// GPUs do not come and go while we run.
type systemProber struct {
	nvidiaSMIPath string

	cudaProbed bool
	cudaFound  bool
}

func (p *systemProber) HasCUDA() bool {
	if p.cudaProbed {
		return p.cudaFound
	}
	p.cudaProbed = true

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.nvidiaSMIPath, "-L")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		p.cudaFound = false
		return false
	}

	// nvidia-smi -L prints one "GPU N: ..." line per device
	p.cudaFound = strings.Contains(stdout.String(), "GPU")
	return p.cudaFound
}

func (p *systemProber) HasMPS() bool {
	return runtime.GOOS == "darwin" && runtime.GOARCH == "arm64"
}

// MockProber is a DeviceProber with fixed answers, for testing.
type MockProber struct {
	CUDA bool
	MPS  bool
}

func (m MockProber) HasCUDA() bool { return m.CUDA }
func (m MockProber) HasMPS() bool  { return m.MPS }
