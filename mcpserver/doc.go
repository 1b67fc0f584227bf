// Package mcpserver provides the Model Context Protocol (MCP) server
// implementation.
//
// The mcpserver package implements an MCP-compliant server that exposes
// the execute_code and get_weather tools. It uses the mark3labs/mcp-go
// library to handle the protocol details. Tool failures are reported
// inside the JSON payload; the MCP error flag is reserved for sandbox-side
// faults and malformed requests.
//
// The server supports both stdio and HTTP transports as configured by the
// application configuration.
//
// Usage:
//
//	server, err := mcpserver.New(config, logger, executor, weatherClient)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = server.ServeStdio() // or server.ServeHTTP()
package mcpserver
