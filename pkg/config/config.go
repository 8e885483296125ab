package config

import internalconfig "github.com/SmitUplenchwar2687/relval/internal/config"

// Config is the run configuration of a relval process.
type Config = internalconfig.Config

// DivertConfig holds the diversion sink settings.
type DivertConfig = internalconfig.DivertConfig

// Default returns a Config with sensible defaults.
func Default() Config {
	return internalconfig.Default()
}

// LoadFile reads a JSON config file and merges it with defaults.
func LoadFile(path string) (Config, error) {
	return internalconfig.LoadFile(path)
}

// WriteExample writes an example config file to the given path.
func WriteExample(path string) error {
	return internalconfig.WriteExample(path)
}
