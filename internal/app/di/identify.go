// Package di provides dependency injection factories for creating application components.
package di

import (
	"plantid_backend/internal/app/config"
	"plantid_backend/internal/feature/identify/adapters/plantnet"
	identifyhandler "plantid_backend/internal/feature/identify/transport/handler"
	"plantid_backend/internal/feature/identify/usecase"
	infrahttp "plantid_backend/internal/platform/http"
)

// NewPlantNetClient creates a Pl@ntNet classifier with a tuned outbound HTTP client.
func NewPlantNetClient(cfg config.PlantNet) *plantnet.PlantNetClient {
	pcfg := plantnet.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Project: cfg.Project,
		Timeout: cfg.Timeout,
	}
	if pcfg.Timeout <= 0 {
		pcfg.Timeout = plantnet.DefaultTimeout
	}
	return plantnet.NewPlantNetClient(pcfg, infrahttp.NewHTTPClient(pcfg.Timeout))
}

// NewIdentifyHandler wires normalizer, classifier and usecase into the identify HTTP handler.
func NewIdentifyHandler(cfg config.Config) *identifyhandler.IdentifyHandler {
	normalizer := usecase.NewNormalizer(usecase.NormalizeOptions{
		MaxDimension:   cfg.Normalizer.MaxDimension,
		Quality:        cfg.Normalizer.Quality,
		MaxUploadBytes: cfg.Normalizer.MaxUploadBytes,
		MaxPixels:      cfg.Normalizer.MaxPixels,
	})
	uc := usecase.NewIdentifyUsecase(normalizer, NewPlantNetClient(cfg.PlantNet), cfg.RequestTimeout)

	maxFile := int64(cfg.Normalizer.MaxUploadBytes)
	if maxFile <= 0 {
		maxFile = usecase.DefaultMaxUploadBytes
	}
	return identifyhandler.NewIdentifyHandler(uc, maxFile)
}
