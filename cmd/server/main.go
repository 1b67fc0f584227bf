// Package main is the entry point for the execbox MCP server.
//
// The execbox server exposes two tools over the Model Context Protocol:
// execute_code, which runs short-lived snippets in an external interpreter
// process under strict time and output bounds, and get_weather, which
// fetches forecast data from an Open-Meteo compatible service. The server
// supports both stdio and HTTP transports.
//
// The application uses Uber's fx framework for dependency injection and
// lifecycle management, with zap for structured logging and viper for
// configuration.
package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/odelin/execbox/config"
	"github.com/odelin/execbox/logger"
	"github.com/odelin/execbox/mcpserver"
	"github.com/odelin/execbox/metrics"
	"github.com/odelin/execbox/sandbox"
	"github.com/odelin/execbox/weather"
)

// newExecutor builds the sandbox executor from the application config.
func newExecutor(cfg *config.Config, log *zap.Logger) sandbox.CodeExecutor {
	return sandbox.New(log, &sandbox.Config{
		Interpreter:    cfg.Executor.Interpreter,
		MaxOutputBytes: cfg.GetMaxOutputBytes(),
		HelpURL:        cfg.Executor.HelpURL,
	})
}

// newWeatherClient builds the forecast client from the application config.
func newWeatherClient(cfg *config.Config, log *zap.Logger) *weather.Client {
	return weather.New(log, weather.Config{
		BaseURL:   cfg.Weather.BaseURL,
		Timeout:   cfg.GetWeatherTimeout(),
		UserAgent: cfg.Weather.UserAgent,
	})
}

func main() {
	app := fx.New(
		// Provide dependencies
		fx.Provide(
			// Config
			config.New,

			// Logger with configuration
			logger.NewFromConfig,

			// Sandbox executor
			newExecutor,

			// Weather client
			newWeatherClient,

			// MCP Server
			mcpserver.New,
		),

		// Start the appropriate transport based on config
		fx.Invoke(
			func(cfg *config.Config, server *mcpserver.MCPServer, log *zap.Logger) {
				if cfg.Metrics.Enabled {
					go func() {
						log.Info("starting metrics listener", zap.String("addr", cfg.Metrics.Addr))
						if err := metrics.Serve(cfg.Metrics.Addr); err != nil {
							panic(err)
						}
					}()
				}

				switch cfg.Server.Transport {
				case "stdio":
					// Use fx to run this as a background task
					go func() {
						if err := server.ServeStdio(); err != nil {
							panic(err)
						}
					}()
				case "http":
					go func() {
						if err := server.ServeHTTP(); err != nil {
							panic(err)
						}
					}()
				default:
					panic("unsupported transport: " + cfg.Server.Transport)
				}
			},
		),

		// Use the application logger for fx logs
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)

	// Start the application
	app.Run()
}
