// Package client provides the `ies` command-line client.
//
// The CLI talks to the hub's HTTP endpoints to inspect and manage stored
// telemetry records from a terminal. It is primarily intended for
// developers and operators.
//
// Installation
//
//	go install github.com/iamnno/IES/cmd/ies@latest
//
// Or build from this repo and use the embedded `ies` binary.
//
// # Address configuration
//
// The HTTP base URL is discovered by the application that embeds the
// commands via a BaseURLFunc. When using the standalone binary, it
// defaults to http://127.0.0.1:8080 and can be overridden with the
// IES_HTTP environment variable.
//
// Usage
//
//	ies records list
//	ies records get 42
//	ies records delete 42
//	ies records purge --older-than 2024-05-01T00:00:00Z
package client
