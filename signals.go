package shroud

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for shroud events.
var (
	SignalProcessorCreated = capitan.NewSignal("shroud.processor.created", "Processor instantiated")
	SignalStoreStart       = capitan.NewSignal("shroud.store.start", "Store operation beginning")
	SignalStoreComplete    = capitan.NewSignal("shroud.store.complete", "Store operation finished")
	SignalLoadStart        = capitan.NewSignal("shroud.load.start", "Load operation beginning")
	SignalLoadComplete     = capitan.NewSignal("shroud.load.complete", "Load operation finished")
	SignalAssigned         = capitan.NewSignal("shroud.registry.assigned", "Registry assignment replaced")
	SignalMigrateEntry     = capitan.NewSignal("shroud.migrate.entry", "Legacy entry rejected during migration")
	SignalMigrateComplete  = capitan.NewSignal("shroud.migrate.complete", "Legacy migration finished")
	SignalTransformMissing = capitan.NewSignal("shroud.transform.missing", "Persisted transform no longer resolvable")
)

// Keys for typed event data.
var (
	KeyContentType      = capitan.NewStringKey("content_type")
	KeyKind             = capitan.NewStringKey("kind")
	KeyField            = capitan.NewStringKey("field")
	KeyTransform        = capitan.NewStringKey("transform")
	KeyEntry            = capitan.NewStringKey("entry")
	KeySize             = capitan.NewIntKey("size")
	KeyDuration         = capitan.NewDurationKey("duration")
	KeyError            = capitan.NewErrorKey("error")
	KeyTransformedCount = capitan.NewIntKey("transformed_count")
	KeyPassthrough      = capitan.NewIntKey("passthrough_count")
	KeyAppliedCount     = capitan.NewIntKey("applied_count")
	KeyRejectedCount    = capitan.NewIntKey("rejected_count")
)

// emitProcessorCreated emits an event when a processor is created.
func emitProcessorCreated(ctx context.Context, contentType string) {
	capitan.Emit(ctx, SignalProcessorCreated,
		KeyContentType.Field(contentType),
	)
}

// emitStoreStart emits an event when store begins.
func emitStoreStart(ctx context.Context, contentType string, kind Kind) {
	capitan.Emit(ctx, SignalStoreStart,
		KeyContentType.Field(contentType),
		KeyKind.Field(string(kind)),
	)
}

// emitStoreComplete emits an event when store finishes. passthrough is
// non-zero when the record was already transformed.
func emitStoreComplete(ctx context.Context, contentType string, kind Kind, size int, duration time.Duration, transformed, passthrough int, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyKind.Field(string(kind)),
		KeySize.Field(size),
		KeyDuration.Field(duration),
		KeyTransformedCount.Field(transformed),
		KeyPassthrough.Field(passthrough),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalStoreComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalStoreComplete, fields...)
	}
}

// emitLoadStart emits an event when load begins.
func emitLoadStart(ctx context.Context, contentType string) {
	capitan.Emit(ctx, SignalLoadStart,
		KeyContentType.Field(contentType),
	)
}

// emitLoadComplete emits an event when load finishes.
func emitLoadComplete(ctx context.Context, contentType string, kind Kind, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyKind.Field(string(kind)),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalLoadComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalLoadComplete, fields...)
	}
}

// emitAssigned emits an event when a registry entry is replaced.
func emitAssigned(ctx context.Context, ref FieldRef, transform string) {
	capitan.Emit(ctx, SignalAssigned,
		KeyKind.Field(string(ref.Kind)),
		KeyField.Field(ref.Field),
		KeyTransform.Field(transform),
	)
}

// emitMigrateEntry emits a diagnostic for one rejected legacy entry.
func emitMigrateEntry(ctx context.Context, entry string, err error) {
	capitan.Emit(ctx, SignalMigrateEntry,
		KeyEntry.Field(entry),
		KeyError.Field(err),
	)
}

// emitMigrateComplete emits an event when a legacy migration finishes.
func emitMigrateComplete(ctx context.Context, applied, rejected int) {
	capitan.Emit(ctx, SignalMigrateComplete,
		KeyAppliedCount.Field(applied),
		KeyRejectedCount.Field(rejected),
	)
}

// emitTransformMissing emits a diagnostic when a transform name no longer
// resolves against the catalog.
func emitTransformMissing(ctx context.Context, ref FieldRef, transform string) {
	capitan.Emit(ctx, SignalTransformMissing,
		KeyKind.Field(string(ref.Kind)),
		KeyField.Field(ref.Field),
		KeyTransform.Field(transform),
	)
}
