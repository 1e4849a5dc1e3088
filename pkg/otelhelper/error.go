package otelhelper

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrorCodeKey carries the classified error code (VALIDATION_ERROR, NOT_FOUND, ...).
const ErrorCodeKey = "flowmodel.error.code"

// SetError records err on the span and marks it failed. A non-empty code is
// attached to the span and to the error event.
func SetError(span trace.Span, err error, code string, attrs ...attribute.KeyValue) {
	if code != "" {
		attrs = append(attrs, attribute.String(ErrorCodeKey, code))
		span.SetAttributes(attribute.String(ErrorCodeKey, code))
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.AddEvent("error_occurred", trace.WithAttributes(attrs...))
}
