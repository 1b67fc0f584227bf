// Package config provides application configuration management.
//
// The config package handles loading and validation of the application's
// configuration from YAML files, with environment variable overrides under
// the EXECBOX_ prefix. It covers server transport settings, code execution
// limits, the weather client, metrics, and logging.
//
// Usage:
//
//	cfg, err := config.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Server transport: %s\n", cfg.Server.Transport)
package config
