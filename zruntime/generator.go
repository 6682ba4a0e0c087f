package zruntime

import "math/rand"

// Generator is a deterministic random-number stream bound to a device and
// seed. The pipeline's sampling steps consume this stream, so the same
// (device, seed) pair reproduces the same image.
//
// A Generator is device-affine: Pipeline.Generate rejects a generator that
// was created for a different device than the pipeline runs on.
type Generator struct {
	device Device
	seed   int64
	rng    *rand.Rand
}

// NewGenerator creates a seeded generator bound to the given device.
func NewGenerator(device Device, seed int64) *Generator {
	return &Generator{
		device: device,
		seed:   seed,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Device returns the device this generator is bound to.
func (g *Generator) Device() Device { return g.device }

// Seed returns the seed this generator was created with.
func (g *Generator) Seed() int64 { return g.seed }

// next draws the next value from the stream. Consumed by the backend during
// sampling; not part of the public API.
func (g *Generator) next() uint64 {
	return uint64(g.rng.Int63())
}
