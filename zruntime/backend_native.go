//go:build zimage && cgo

// Native binding to the Z-Image Turbo C library.
// Build with: CGO_ENABLED=1 go build -tags zimage
//
// Prerequisites:
//  1. libzimage compiled as a shared library
//  2. CGO_CFLAGS pointing at the header path
//  3. CGO_LDFLAGS linking -lzimage

package zruntime

/*
#cgo CFLAGS: -I${SRCDIR}/../vendor/zimage
#cgo LDFLAGS: -L${SRCDIR}/../vendor/zimage/build -lzimage

#include <stdlib.h>
#include <stdint.h>

// Placeholder type definition until the library headers are vendored.
typedef void* zimage_ctx_t;

// extern zimage_ctx_t* zimage_create(const char* device, const char* dtype,
//                                    const char* attn, int compile, int offload,
//                                    const char* lora_dir, float lora_scale);
// extern void zimage_free(zimage_ctx_t* ctx);
// extern uint8_t* zimage_txt2img(zimage_ctx_t* ctx, const char* prompt,
//                                const char* negative, int width, int height,
//                                int steps, float guidance, int64_t seed,
//                                size_t* out_len);
// extern void zimage_free_image(uint8_t* img);
*/
import "C"

import (
	"context"
	"fmt"
)

func buildBackend(ctx context.Context, opts BuildOptions, device Device, dtype DType) (backendHandle, error) {
	// The native construction path is wired up when libzimage headers are
	// vendored; until then building with -tags zimage reports the gap
	// explicitly instead of silently falling back to the stub.
	return nil, fmt.Errorf("%w: native zimage binding not yet vendored", ErrBuildFailed)
}

// BackendInfo describes the active backend implementation.
func BackendInfo() string {
	return "native (libzimage)"
}
