// Package config supplies the ambient, optional settings both CLIs read:
// the assembler's default output extension and the emulator's cycle
// ceiling and echo behaviour. A missing config file is not an error, both
// binaries run correctly against Default().
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// AssemblerConfig holds assembler-specific defaults.
type AssemblerConfig struct {
	DefaultExtension string `toml:"default_extension"`
}

// EmulatorConfig holds emulator-specific defaults.
type EmulatorConfig struct {
	MaxCycles int  `toml:"max_cycles"`
	EchoInput bool `toml:"echo_input"`
}

// Config is the top-level on-disk configuration shape.
type Config struct {
	Assembler AssemblerConfig `toml:"assembler"`
	Emulator  EmulatorConfig  `toml:"emulator"`
}

// Default returns the configuration both binaries use when no config file
// is present or named.
func Default() Config {
	return Config{
		Assembler: AssemblerConfig{
			DefaultExtension: ".lc3",
		},
		Emulator: EmulatorConfig{
			MaxCycles: 1_000_000,
			EchoInput: true,
		},
	}
}

// GetConfigPath returns the platform-conventional path for the config
// file, following the same per-OS directory convention as the rest of
// this repository's lineage: XDG on Linux, Application Support on macOS,
// AppData on Windows.
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, "lc3-toolchain", "config.toml"), nil
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "lc3-toolchain", "config.toml"), nil
	default:
		xdg := os.Getenv("XDG_CONFIG_HOME")
		if xdg == "" {
			xdg = filepath.Join(home, ".config")
		}
		return filepath.Join(xdg, "lc3-toolchain", "config.toml"), nil
	}
}

// Load reads the config file at the platform-conventional path. If it does
// not exist, Default() is returned with no error.
func Load() (Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return Default(), err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config file at path. If it does not exist, Default()
// is returned with no error.
func LoadFrom(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Save writes cfg to the platform-conventional path, creating parent
// directories as needed.
func (c Config) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes cfg to path, creating parent directories as needed.
func (c Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path) // #nosec G304 -- path is config-directory derived, not user input
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}
