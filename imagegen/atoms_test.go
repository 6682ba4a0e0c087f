package imagegen

import "testing"

func TestCoercePositiveInt(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		def  int
		want int
	}{
		{"plain", "512", 1024, 512},
		{"trimmed", " 512 ", 1024, 512},
		{"decimal", "512.0", 1024, 512},
		{"empty", "", 1024, 1024},
		{"garbage", "wide", 1024, 1024},
		{"zero", "0", 1024, 1024},
		{"negative", "-5", 1024, 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coercePositiveInt(tt.raw, tt.def); got != tt.want {
				t.Errorf("coercePositiveInt(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCoerceInt_PreservesNonPositive(t *testing.T) {
	if got := coerceInt("0", 9); got != 0 {
		t.Errorf("coerceInt(0) = %d, want 0", got)
	}
	if got := coerceInt("-3", 9); got != -3 {
		t.Errorf("coerceInt(-3) = %d, want -3", got)
	}
	if got := coerceInt("junk", 9); got != 9 {
		t.Errorf("coerceInt(junk) = %d, want default 9", got)
	}
}

func TestCoerceFloat(t *testing.T) {
	if got := coerceFloat("0.0", 7.5); got != 0 {
		t.Errorf("coerceFloat(0.0) = %g, want 0", got)
	}
	if got := coerceFloat("", 7.5); got != 7.5 {
		t.Errorf("coerceFloat empty = %g, want default", got)
	}
	if got := coerceFloat("x", 7.5); got != 7.5 {
		t.Errorf("coerceFloat garbage = %g, want default", got)
	}
}

func TestClampMin(t *testing.T) {
	if got := clampMin(0, 1); got != 1 {
		t.Errorf("clampMin(0,1) = %d", got)
	}
	if got := clampMin(5, 1); got != 5 {
		t.Errorf("clampMin(5,1) = %d", got)
	}
}
