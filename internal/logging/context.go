package logging

import (
	"context"
	"log/slog"

	"kachef/internal/services"
)

const (
	// FieldComponent names the package or subsystem emitting the record.
	FieldComponent = "component"
	// FieldRunID identifies one build run.
	FieldRunID = "run_id"
	// FieldLanguage is the target content language of a run.
	FieldLanguage = "lang"
	// FieldVariant is the curriculum variant of a run (may be empty).
	FieldVariant = "variant"
	// FieldStage is the build phase (snapshot, curation, treebuild, metadata).
	FieldStage = "stage"
	// FieldSlug is the content slug a record concerns.
	FieldSlug = "slug"
	// FieldKind is the content kind of a node.
	FieldKind = "kind"

	FieldEventType      = "event_type"
	FieldErrorHint      = "error_hint"
	FieldImpact         = "impact"
	FieldDecisionType   = "decision_type"
	FieldDecisionResult = "decision_result"
	FieldDecisionReason = "decision_reason"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if lang, ok := services.LanguageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldLanguage, lang))
		variant, _ := services.VariantFromContext(ctx)
		fields = append(fields, slog.String(FieldVariant, variant))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
