package imagegen

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAvailableLoRAs_ListsSubdirectories(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"portrait-v2", "anime"} {
		if err := os.MkdirAll(filepath.Join(dir, name), 0755); err != nil {
			t.Fatal(err)
		}
	}
	// Plain files are not adapters.
	if err := os.WriteFile(filepath.Join(dir, "readme.md"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	loras := AvailableLoRAs(dir)
	if loras[0] != LoRANone {
		t.Errorf("first entry = %q, want sentinel %q", loras[0], LoRANone)
	}
	if len(loras) != 3 {
		t.Fatalf("got %d entries, want 3: %v", len(loras), loras)
	}
	found := map[string]bool{}
	for _, l := range loras[1:] {
		found[l] = true
	}
	if !found["portrait-v2"] || !found["anime"] {
		t.Errorf("missing adapters in %v", loras)
	}
}

func TestAvailableLoRAs_MissingDir(t *testing.T) {
	loras := AvailableLoRAs(filepath.Join(t.TempDir(), "nope"))
	if len(loras) != 1 || loras[0] != LoRANone {
		t.Errorf("got %v, want just the sentinel", loras)
	}
}

func TestNormalizeLoRA(t *testing.T) {
	if got := NormalizeLoRA(LoRANone); got != "" {
		t.Errorf("NormalizeLoRA(None) = %q, want empty", got)
	}
	if got := NormalizeLoRA("portrait-v2"); got != "portrait-v2" {
		t.Errorf("NormalizeLoRA(portrait-v2) = %q", got)
	}
}
