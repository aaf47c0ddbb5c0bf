package di

import (
	"context"
	"log/slog"

	"plantid_backend/internal/app/config"
	"plantid_backend/internal/feature/speciesnotes/adapters/gemini"
	speciesnoteshandler "plantid_backend/internal/feature/speciesnotes/transport/handler"
	"plantid_backend/internal/feature/speciesnotes/usecase"
)

// NewSpeciesNotesHandler creates the species notes handler.
// When Gemini is disabled or its client cannot be created, the handler answers 503.
func NewSpeciesNotesHandler(ctx context.Context, cfg config.Gemini) *speciesnoteshandler.SpeciesNotesHandler {
	if !cfg.Enabled {
		slog.Info("species notes disabled")
		return speciesnoteshandler.NewSpeciesNotesHandler(nil)
	}
	gen, err := gemini.NewGeminiGenerator(ctx, cfg.Model)
	if err != nil {
		slog.Warn("Gemini unavailable. Species notes disabled.", "error", err)
		return speciesnoteshandler.NewSpeciesNotesHandler(nil)
	}
	return speciesnoteshandler.NewSpeciesNotesHandler(usecase.NewSpeciesNotesUsecase(gen))
}
