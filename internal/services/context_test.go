package services_test

import (
	"context"
	"testing"

	"kachef/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithLanguage(ctx, "fr")
	ctx = services.WithVariant(ctx, "us-cc")
	ctx = services.WithStage(ctx, "build")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if lang, ok := services.LanguageFromContext(ctx); !ok || lang != "fr" {
		t.Fatalf("unexpected language: %v %v", lang, ok)
	}
	if variant, ok := services.VariantFromContext(ctx); !ok || variant != "us-cc" {
		t.Fatalf("unexpected variant: %v %v", variant, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "build" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithVariant(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.VariantFromContext(ctx); ok {
		t.Fatal("expected no variant value")
	}
}
