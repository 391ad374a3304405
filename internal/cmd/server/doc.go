// Package serverrun exposes a shared Run entrypoint used by the CLI to
// start the IES hub with its HTTP server, handling lifecycle and
// shutdown.
//
// Example:
//
//	opts := serverrun.Options{HTTPAddr: ":8080", DataDir: "./data"}
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = serverrun.Run(ctx, opts)
package serverrun
