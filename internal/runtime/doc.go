// Package runtime wires storage, fan-out and services into a single-node
// hub instance. It exposes Open/Close, a basic health check, and the
// facades used by the HTTP surface.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{Config: cfg})
//	defer rt.Close()
//	_ = rt.CheckHealth(context.Background())
//	ids, _ := rt.Telemetry().Ingest(context.Background(), batch)
package runtime
