package config

import "sync"

var (
	currentMu sync.RWMutex
	current   *Config
)

// Default returns the configuration used when nothing was loaded.
func Default() *Config {
	return &Config{
		LaunchctlPath: DefaultLaunchctlPath,
		ConsoleDevice: DefaultConsoleDevice,
		Timeout:       DefaultTimeout,
		Output:        DefaultOutput,
	}
}

// SetCurrent publishes the configuration loaded for this invocation.
func SetCurrent(cfg *Config) {
	currentMu.Lock()
	current = cfg
	currentMu.Unlock()
}

// Current returns the loaded configuration, or Default when none was set.
func Current() *Config {
	currentMu.RLock()
	defer currentMu.RUnlock()
	if current == nil {
		return Default()
	}
	return current
}
