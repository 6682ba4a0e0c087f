package core

import "fmt"

// Config holds all configuration values for the generation server.
// Values come from environment variables; main loads a .env file first.
type Config struct {
	// Server
	Host string // bind address (default 0.0.0.0)
	Port int    // listen port (default 7860)

	// Generation defaults
	DeviceChoice     string  // auto, mps, cuda or cpu
	AttentionBackend string  // sdpa, flash2 or flash3
	Compile          bool    // torch.compile the DiT (CUDA best)
	CPUOffload       bool    // CPU offload (CUDA only)
	LoRADir          string  // directory containing LoRA adapter subdirectories
	LoRAScale        float64 // default adapter blend scale

	// Aspect presets
	PresetsFile string // optional YAML file overriding the aspect table

	// Run history
	HistoryDBPath string // SQLite database path; empty disables history
	ThumbnailSize int    // max edge length of stored thumbnails

	// Logging
	LogFile string // rotating log file path
	DevMode bool   // debug logging, colored console
}

// Configuration defaults.
const (
	DefaultHost          = "0.0.0.0"
	DefaultPort          = 7860
	DefaultLoRADir       = "loras"
	DefaultHistoryDBPath = "runs.sqlite"
	DefaultThumbnailSize = 256
	DefaultLogFile       = "app.log"
)

// LoadConfig reads configuration from environment variables, applying
// defaults for everything unset. Malformed numeric values fall back to
// their defaults rather than failing; validation of semantic constraints
// happens in Validate.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Host:             GetEnvOrDefault("ZIMAGE_HOST", DefaultHost),
		Port:             ParseIntEnv("ZIMAGE_PORT", DefaultPort),
		DeviceChoice:     GetEnvOrDefault("ZIMAGE_DEVICE", "auto"),
		AttentionBackend: GetEnvOrDefault("ZIMAGE_ATTENTION_BACKEND", "sdpa"),
		Compile:          ParseBoolEnv("ZIMAGE_COMPILE", false),
		CPUOffload:       ParseBoolEnv("ZIMAGE_CPU_OFFLOAD", false),
		LoRADir:          GetEnvOrDefault("ZIMAGE_LORA_DIR", DefaultLoRADir),
		LoRAScale:        ParseFloat64Env("ZIMAGE_LORA_SCALE", 1.0),
		PresetsFile:      GetEnvOrDefault("ZIMAGE_PRESETS_FILE", ""),
		HistoryDBPath:    GetEnvOrDefault("ZIMAGE_HISTORY_DB", DefaultHistoryDBPath),
		ThumbnailSize:    ParseIntEnv("ZIMAGE_THUMBNAIL_SIZE", DefaultThumbnailSize),
		LogFile:          GetEnvOrDefault("ZIMAGE_LOG_FILE", DefaultLogFile),
		DevMode:          ParseBoolEnv("DEV_MODE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks semantic constraints on the configuration.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("core: port %d out of range", c.Port)
	}
	switch c.DeviceChoice {
	case "auto", "mps", "cuda", "cpu":
	default:
		return fmt.Errorf("core: unknown device choice %q", c.DeviceChoice)
	}
	if c.ThumbnailSize < 16 {
		return fmt.Errorf("core: thumbnail size %d too small", c.ThumbnailSize)
	}
	return nil
}
