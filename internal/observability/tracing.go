package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// InitTracer installs a process-wide TracerProvider tagged with serviceName.
// No span exporter is wired: spans are created and ended for local
// instrumentation and future exporter wiring, but are not shipped anywhere
// by default.
func InitTracer(serviceName string) *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", serviceName),
		)),
	)
	otel.SetTracerProvider(tp)
	return tp
}

// Tracer returns the named tracer from the global provider, for callers
// instrumenting at package scope without threading a TracerProvider through.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
