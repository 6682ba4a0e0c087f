package imagegen

import "testing"

func TestResolveSeed_RandomPath(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"zero", "0"},
		{"padded zero", "00"},
		{"triple zero", "000"},
		{"signed zero", "+0"},
		{"negative zero", "-0"},
		{"garbage", "not-a-number"},
		{"overflow", "99999999999999999999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 50; i++ {
				seed := ResolveSeed(tt.raw)
				if seed < 1 || seed > MaxSeed {
					t.Fatalf("seed %d outside [1, 2^63-1]", seed)
				}
			}
		})
	}
}

func TestResolveSeed_RandomPathNotReproducible(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 10; i++ {
		seen[ResolveSeed("")] = true
	}
	// Ten uniform draws from [1, 2^63-1] colliding is astronomically unlikely.
	if len(seen) < 5 {
		t.Errorf("expected distinct random seeds, got %d unique of 10", len(seen))
	}
}

func TestResolveSeed_LiteralPreservedVerbatim(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int64
	}{
		{"small", "42", 42},
		{"beyond float64 precision", "123456789012345678", 123456789012345678},
		{"max int64", "9223372036854775807", 9223372036854775807},
		{"negative kept as-is", "-7", -7},
		{"surrounding whitespace", "  42  ", 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveSeed(tt.raw); got != tt.want {
				t.Errorf("ResolveSeed(%q) = %d, want %d", tt.raw, got, tt.want)
			}
			// Reproducible path is idempotent.
			if again := ResolveSeed(tt.raw); again != tt.want {
				t.Errorf("second ResolveSeed(%q) = %d, want %d", tt.raw, again, tt.want)
			}
		})
	}
}
