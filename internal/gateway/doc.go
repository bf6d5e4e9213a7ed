// Package gateway runs the relay's listening endpoint.
//
// # Overview
//
// Gateway wires the parts together: it builds the agent directory and the
// router, opens the optional journal, sets up a listener (plain TCP or a
// Tailscale tsnet node) and runs the connection server until the context is
// canceled.
//
//	gw, err := gateway.New(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return gw.Run(ctx)
//
// # Connection Server
//
// ConnServer accepts one connection at a time and handles it start to
// finish before accepting the next:
//
//  1. a single Read of up to buffer_size-1 bytes (no partial-read loop)
//  2. the raw bytes go to the router
//  3. whatever the router returns is written back (zero bytes is valid)
//  4. the connection is closed
//
// With server.concurrent enabled each connection runs on its own goroutine.
// The router lock keeps every request atomic either way.
//
// Accept errors are logged and the loop keeps going. Only closing the
// listener ends Serve.
package gateway
