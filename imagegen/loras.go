package imagegen

import "os"

// LoRANone is the sentinel adapter name meaning "no adapter".
const LoRANone = "None"

// AvailableLoRAs lists the adapter names under dir: every subdirectory is an
// adapter, and the sentinel "None" always comes first. A missing or
// unreadable directory yields just the sentinel.
func AvailableLoRAs(dir string) []string {
	loras := []string{LoRANone}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return loras
	}
	for _, entry := range entries {
		if entry.IsDir() {
			loras = append(loras, entry.Name())
		}
	}
	return loras
}

// NormalizeLoRA maps the UI sentinel to the empty string used internally.
func NormalizeLoRA(name string) string {
	if name == LoRANone {
		return ""
	}
	return name
}
