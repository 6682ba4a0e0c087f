package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/dax8it/z-image-mps/core"
	"github.com/dax8it/z-image-mps/imagegen"
	"github.com/dax8it/z-image-mps/zruntime"
)

// startupCheck is one named validation run before the server starts.
type startupCheck struct {
	name string
	run  func(cfg *core.Config) (detail string, err error)
}

var startupChecks = []startupCheck{
	{
		name: "device",
		run: func(cfg *core.Config) (string, error) {
			device, dtype, err := zruntime.PickDevice(cfg.DeviceChoice)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s (%s)", device, dtype), nil
		},
	},
	{
		name: "aspect presets",
		run: func(cfg *core.Config) (string, error) {
			if cfg.PresetsFile == "" {
				table := imagegen.DefaultAspectTable()
				return fmt.Sprintf("%d built-in", len(table)), nil
			}
			table, err := imagegen.LoadAspectTable(cfg.PresetsFile)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d from %s", len(table), cfg.PresetsFile), nil
		},
	},
	{
		name: "lora directory",
		run: func(cfg *core.Config) (string, error) {
			names := imagegen.AvailableLoRAs(cfg.LoRADir)
			// The sentinel entry is always present; anything beyond it
			// is a real adapter.
			if len(names) <= 1 {
				return "no adapters found", nil
			}
			return fmt.Sprintf("%d adapters", len(names)-1), nil
		},
	},
}

// runStartupChecks validates the environment and prints a colored
// summary. Returns ExitCodeError if any check fails.
func runStartupChecks(cfg *core.Config, out io.Writer) int {
	header := color.New(color.FgCyan, color.Bold)
	okColor := color.New(color.FgGreen)
	failColor := color.New(color.FgRed)
	dim := color.New(color.FgHiBlack)

	header.Fprintf(out, "Z-Image %s startup checks\n", core.Version)

	start := time.Now()
	failed := 0
	for _, check := range startupChecks {
		detail, err := check.run(cfg)
		if err != nil {
			failColor.Fprintf(out, "  ✗ %s: %v\n", check.name, err)
			failed++
			continue
		}
		okColor.Fprintf(out, "  ✓ %s", check.name)
		if detail != "" {
			dim.Fprintf(out, " (%s)", detail)
		}
		fmt.Fprintln(out)
	}

	if failed > 0 {
		failColor.Fprintf(out, "%d of %d checks failed\n", failed, len(startupChecks))
		return core.ExitCodeError
	}
	dim.Fprintf(out, "(%d checks passed in %v)\n", len(startupChecks), time.Since(start).Round(time.Millisecond))
	return core.ExitCodeSuccess
}

// ensureDirs creates directories the server expects to exist.
func ensureDirs(cfg *core.Config) error {
	if err := os.MkdirAll(cfg.LoRADir, 0o755); err != nil {
		return fmt.Errorf("create lora directory: %w", err)
	}
	return nil
}
