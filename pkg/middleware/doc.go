// Package middleware provides HTTP observability middleware for loom
// servers.
//
// # Prometheus Metrics
//
// The Prometheus middleware counts requests and measures latency per path:
//
//	r := chi.NewRouter()
//	r.Use(middleware.Prometheus(
//	    middleware.WithNamespace("myapp"),
//	))
//	r.Handle("/metrics", promhttp.Handler())
//
// # OpenTelemetry Tracing
//
// The OpenTelemetry middleware creates a server span per request and injects
// the trace context into the request context, so spans started inside the
// update cycle nest under the connection's span:
//
//	r.Use(middleware.OpenTelemetry(
//	    middleware.WithRequestFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/healthz"
//	    }),
//	))
//
// Both middlewares are plain func(http.Handler) http.Handler and compose
// with chi or any stdlib-compatible router.
package middleware
