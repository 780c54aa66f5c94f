// Package client is a Go client for the grafy HTTP API.
//
// Requests go through a rate limiter and a circuit breaker, and the transport
// retries connection errors, 5xx and 429 responses with backoff. Trace
// context on the request context is forwarded in the X-Trace-ID and X-Span-ID
// headers, and each call carries its own X-Request-ID.
//
// A tool that runs but fails is not an error at this level: Execute returns
// the Result with Success false. Call converts that case into ErrToolFailed.
//
//	c := client.New(client.Options{BaseURL: "http://localhost:8000"})
//	v, err := c.Evaluate(ctx, "sin(x)*cos(y)", 0.5, 0.25, 0)
package client
