package nlu

import (
	"context"

	"github.com/SaiNageswarS/booking-agent/booking"
	"github.com/SaiNageswarS/booking-agent/catalog"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"
)

// The Fallback types try a model backed collaborator first and use a
// lexical one when it fails.

type FallbackRouter struct {
	Primary, Secondary booking.ModeRouter
}

func (f FallbackRouter) ClassifyMode(ctx context.Context, utterance string, sc booking.SessionContext) (booking.Mode, error) {
	mode, err := f.Primary.ClassifyMode(ctx, utterance, sc)
	if err == nil || ctx.Err() != nil {
		return mode, err
	}
	logFallback("mode router", sc.SessionID, err)
	return f.Secondary.ClassifyMode(ctx, utterance, sc)
}

type FallbackExtractor struct {
	Primary, Secondary booking.Extractor
}

func (f FallbackExtractor) Extract(ctx context.Context, utterance string, cat *catalog.Catalog, sc booking.SessionContext) (booking.ExtractionResult, error) {
	out, err := f.Primary.Extract(ctx, utterance, cat, sc)
	if err == nil || ctx.Err() != nil {
		return out, err
	}
	logFallback("extractor", sc.SessionID, err)
	return f.Secondary.Extract(ctx, utterance, cat, sc)
}

type FallbackConfirmation struct {
	Primary, Secondary booking.ConfirmationClassifier
}

func (f FallbackConfirmation) ClassifyConfirmation(ctx context.Context, utterance string, record booking.Record) (booking.Verdict, error) {
	v, err := f.Primary.ClassifyConfirmation(ctx, utterance, record)
	if err == nil || ctx.Err() != nil {
		return v, err
	}
	logFallback("confirmation classifier", "", err)
	return f.Secondary.ClassifyConfirmation(ctx, utterance, record)
}

type FallbackDetour struct {
	Primary, Secondary booking.DetourClassifier
}

func (f FallbackDetour) ClassifyDetour(ctx context.Context, utterance string, sc booking.SessionContext) (booking.Detour, error) {
	d, err := f.Primary.ClassifyDetour(ctx, utterance, sc)
	if err == nil || ctx.Err() != nil {
		return d, err
	}
	logFallback("detour classifier", sc.SessionID, err)
	return f.Secondary.ClassifyDetour(ctx, utterance, sc)
}

func logFallback(name, sessionID string, err error) {
	logger.Error("Model collaborator failed, using keyword fallback",
		zap.String("collaborator", name), zap.String("session", sessionID), zap.Error(err))
}
