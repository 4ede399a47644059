package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Lattice Pricer Configuration

[engine]
# Behaviour when a probability or weight leaves [0, 1]: "fail" or "warn"
instability_policy = "fail"
# Edge condition for finite differences: "linear" or "neumann"
boundary = "linear"
# Time steps for every lattice method
steps = 200
# Finite-difference half-width Nj (0 = derive from deviations)
half_width = 0
# Standard deviations of log price covered when half_width = 0
deviations = 5.0
# Relative spot bump for deltas
bump = 0.01

[montecarlo]
# Simulated path pairs
paths = 1000
# Hedge rebalancing steps per path
steps = 10
# Random seed
seed = 42

[output]
# Decimal places in printed prices
precision = 4
# Enable colored output
color_enabled = true

[logging]
# Level: debug, info, warn, error
level = "warn"
console = true
# Rotating log file
file = false
# file_path = "~/.config/lattice-pricer/logs/pricer.log"
max_size = 10
max_backups = 3
max_age = 14
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}
	return nil
}

// Template returns the commented default config file.
func Template() string {
	return configTemplate
}
