package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/veridianlabs/fpbridged/hallog"
	"github.com/veridianlabs/fpbridged/sensor"
)

// Power tunes the platform power-extension client.
type Power struct {
	BusName         string `yaml:"bus_name"`
	ObjectPath      string `yaml:"object_path"`
	BoostHint       string `yaml:"boost_hint"`
	BoostDurationMS int32  `yaml:"boost_duration_ms"`
}

// Configuration holds the daemon configuration
type Configuration struct {
	// Driver discovery, in probe order
	Modules       []sensor.Module `yaml:"modules"`
	VirtualSensor bool            `yaml:"virtual_sensor"`

	// Device paths
	FODPath      string `yaml:"fod_ui_path"`
	PropertyPath string `yaml:"property_store_path"`

	// Bus surface
	BusName string `yaml:"bus_name"`
	Power   Power  `yaml:"power"`

	// Logging
	LogLevel int `yaml:"log_level"`
}

var (
	config Configuration
	mu     sync.RWMutex
	loaded bool
)

// DefaultConfig returns the default configuration
func DefaultConfig() Configuration {
	return Configuration{
		Modules: []sensor.Module{
			{Name: "fpc", FOD: false},
			{Name: "fpc_fod", FOD: true},
			{Name: "goodix", FOD: false},
			{Name: "goodix_fod", FOD: true},
			{Name: "goodix_fod6", FOD: true},
			{Name: "silead", FOD: false},
			{Name: "syna", FOD: true},
		},
		VirtualSensor: false,
		FODPath:       "/sys/devices/platform/soc/soc:qcom,dsi-display-primary/fod_ui",
		PropertyPath:  "/var/lib/fpbridged/properties.yaml",
		BusName:       "io.veridian.Fingerprint",
		Power: Power{
			BusName:         "io.veridian.PowerExt",
			ObjectPath:      "/io/veridian/PowerExt",
			BoostHint:       "LAUNCH",
			BoostDurationMS: 2000,
		},
		LogLevel: hallog.LevelInfo,
	}
}

// LoadConfig loads configuration from file
func LoadConfig(configPath string) error {
	mu.Lock()
	defer mu.Unlock()

	// Start with defaults
	config = DefaultConfig()

	if configPath == "" {
		configPath = filepath.Join("/etc", "fpbridged", "config.yaml")
	}

	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Create default config
		err = os.MkdirAll(filepath.Dir(configPath), 0700)
		if err != nil {
			return fmt.Errorf("cannot create config directory: %w", err)
		}

		data, err := yaml.Marshal(config)
		if err != nil {
			return fmt.Errorf("cannot marshal default config: %w", err)
		}

		err = os.WriteFile(configPath, data, 0600)
		if err != nil {
			return fmt.Errorf("cannot write default config: %w", err)
		}

		hallog.Info("Created default configuration at %s", configPath)
	} else {
		// Read existing config
		data, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("cannot read config: %w", err)
		}

		err = yaml.Unmarshal(data, &config)
		if err != nil {
			return fmt.Errorf("cannot unmarshal config: %w", err)
		}
	}

	// An empty candidate list can never open a device; fall back to
	// the builtin probe order rather than refusing to start.
	if len(config.Modules) == 0 {
		config.Modules = DefaultConfig().Modules
	}

	// Set log level
	hallog.SetLevel(config.LogLevel)

	loaded = true
	return nil
}

// Get returns the current configuration
func Get() Configuration {
	mu.RLock()
	defer mu.RUnlock()

	if !loaded {
		return DefaultConfig()
	}

	return config
}
