package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"sigs.k8s.io/yaml"
)

// SetupEnvironment loads the YAML config file named by LOCKD_CONFIG_FILE
// (default config.local.yml), applies documented defaults for anything the
// file leaves zero, and finally patches in environment variable overrides.
func SetupEnvironment(appMode string) error {
	makeError := func(err error) error {
		return fmt.Errorf("failed to set up environment. details: %w", err)
	}

	filepath, ok := os.LookupEnv("LOCKD_CONFIG_FILE")
	if !ok || filepath == "" {
		filepath = "config.local.yml"
	}

	Config = &Type{}

	if yamlFile, err := os.ReadFile(filepath); err != nil {
		if !os.IsNotExist(err) {
			return makeError(err)
		}
	} else if err := yaml.Unmarshal(yamlFile, Config); err != nil {
		return makeError(err)
	}

	Config.Mode = appMode
	Config.Filepath = filepath

	applyDefaults(Config)

	if nodeName := os.Getenv("LOCKD_NODE_NAME"); nodeName != "" {
		Config.NodeName = nodeName
		fmt.Printf("Using custom node name from LOCKD_NODE_NAME: %s\n", nodeName)
	}

	if portStr := os.Getenv("LOCKD_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return makeError(fmt.Errorf("invalid LOCKD_PORT: %w", err))
		}
		Config.Port = port
		fmt.Printf("Using custom API port from LOCKD_PORT: %d\n", port)
	}

	if token := os.Getenv("LOCKD_ADMIN_TOKEN"); token != "" {
		Config.Admin.BootstrapToken = token
		fmt.Println("Using admin bootstrap token from LOCKD_ADMIN_TOKEN")
	}

	return nil
}

// applyDefaults fills in the documented defaults for any field the config
// file left at its zero value.
func applyDefaults(c *Type) {
	if c.Port == 0 {
		c.Port = 8080
	}

	defaultTimeout, maxTimeout, sweepInterval, shardCount := DefaultLockConfig()
	if c.Lock.DefaultTimeoutSeconds == 0 {
		c.Lock.DefaultTimeoutSeconds = defaultTimeout
	}
	if c.Lock.MaxTimeoutSeconds == 0 {
		c.Lock.MaxTimeoutSeconds = maxTimeout
	}
	if c.Lock.SweepInterval == time.Duration(0) {
		c.Lock.SweepInterval = sweepInterval
	}
	if c.Lock.ShardCount == 0 {
		c.Lock.ShardCount = shardCount
	}

	if c.RateLimit.RequestsPerMinute == 0 {
		c.RateLimit.RequestsPerMinute = 120
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = c.RateLimit.RequestsPerMinute / 4
		if c.RateLimit.Burst == 0 {
			c.RateLimit.Burst = 1
		}
	}
}
