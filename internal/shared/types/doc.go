// Package types provides shared data structures for the grafy backend.
//
// Core Types:
//   - Service: Service provider definition
//   - Tool: A callable tool and its parameters
//   - Context: Execution context for operations
//   - Result: Standard operation result
//
// Request Types:
//   - ExecuteRequest: Service tool execution
//   - DiscoverRequest: Intent-based service lookup
//   - StreamRequest, WSMessage: WebSocket surface streaming
//
// Example Usage:
//
//	req := types.ExecuteRequest{
//	    ToolID: "calculus.evaluate",
//	    Params: map[string]interface{}{"expression": "x*x + y*y", "x": 2.0, "y": 3.0},
//	}
package types
