/*
Package resilience provides a circuit breaker for outbound calls.

The breaker moves between three states. Closed passes calls through and
counts failures until ReadyToTrip opens it. Open rejects calls with
ErrCircuitOpen until Timeout elapses. Half-open admits MaxRequests trial calls
and closes again after that many consecutive successes, or reopens on the
first failure.

Results from a previous generation (before a state change) are ignored, so a
slow call that finishes after the breaker has moved on cannot skew counts.

# Usage

	breaker := resilience.New("grafy-api", resilience.Settings{
		MaxRequests: 3,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})

	result, err := resilience.Execute(breaker, func() (*Response, error) {
		return client.Get(ctx, "/health")
	})
*/
package resilience
