// Package vfstrace wraps VFS operations in OpenTelemetry spans, porting
// gcsfuse's tracing package down to the handful of call sites the VFS
// has (no FUSE op table to iterate over — just the operations named in
// the Operations component).
package vfstrace

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/oldphoenix/umsftpd/vfs"

var tracer = otel.Tracer(instrumentationName)

// Start begins a span named "vfs.<op>" with the given attributes and
// returns an End function that records the outcome. Call sites defer the
// result of End:
//
//	ctx, end := vfstrace.Start(ctx, "open", attribute.String("path", path))
//	defer func() { end(err) }()
func Start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := tracer.Start(ctx, "vfs."+op, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
