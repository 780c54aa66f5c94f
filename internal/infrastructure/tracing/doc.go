/*
Package tracing provides lightweight request tracing.

Spans are created per HTTP request and per tool execution, carried through
context.Context, and logged through zap when finished. Trace context travels
in the X-Trace-ID and X-Span-ID headers, so a client that injects them sees
its own trace continued by the server.

# Usage

	tracer := tracing.New("grafy", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "calculus.integrate")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
*/
package tracing
