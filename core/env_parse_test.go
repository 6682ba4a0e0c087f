package core

import "testing"

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("CORE_TEST_STR", "set")
	if got := GetEnvOrDefault("CORE_TEST_STR", "def"); got != "set" {
		t.Errorf("got %q, want set", got)
	}
	if got := GetEnvOrDefault("CORE_TEST_UNSET", "def"); got != "def" {
		t.Errorf("got %q, want def", got)
	}
}

func TestParseIntEnv(t *testing.T) {
	tests := []struct {
		name  string
		value string
		set   bool
		want  int
	}{
		{"unset", "", false, 42},
		{"valid", "7", true, 7},
		{"negative", "-3", true, -3},
		{"malformed", "seven", true, 42},
		{"empty", "", true, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set {
				t.Setenv("CORE_TEST_INT", tt.value)
			}
			if got := ParseIntEnv("CORE_TEST_INT", 42); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseFloat64Env(t *testing.T) {
	t.Setenv("CORE_TEST_FLOAT", "0.5")
	if got := ParseFloat64Env("CORE_TEST_FLOAT", 1.0); got != 0.5 {
		t.Errorf("got %v, want 0.5", got)
	}
	if got := ParseFloat64Env("CORE_TEST_FLOAT_UNSET", 1.0); got != 1.0 {
		t.Errorf("got %v, want 1.0", got)
	}
}

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true}, {"1", true}, {"yes", true}, {"on", true}, {"TRUE", true},
		{"false", false}, {"0", false}, {"no", false}, {"off", false},
		{"maybe", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("CORE_TEST_BOOL", tt.value)
			if got := ParseBoolEnv("CORE_TEST_BOOL", false); got != tt.want {
				t.Errorf("ParseBoolEnv(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
	if got := ParseBoolEnv("CORE_TEST_BOOL_UNSET", true); got != true {
		t.Error("unset should return default true")
	}
}
