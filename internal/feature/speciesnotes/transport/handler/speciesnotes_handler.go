// Package handler はspeciesnotesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"plantid_backend/internal/api"
	"plantid_backend/internal/feature/speciesnotes/domain/entity"
	"plantid_backend/internal/feature/speciesnotes/usecase"
	"plantid_backend/internal/platform/http/middleware"
)

// SpeciesNotesUsecase は種の解説生成のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type SpeciesNotesUsecase interface {
	CreateNotes(ctx context.Context, scientificName string) (*entity.SpeciesNotes, error)
}

// SpeciesNotesHandler は種の解説生成のHTTPリクエストを処理します。
type SpeciesNotesHandler struct {
	uc SpeciesNotesUsecase
}

// NewSpeciesNotesHandler はSpeciesNotesHandlerの新しいインスタンスを生成します。
// ucがnilの場合、エンドポイントは503を返します。
func NewSpeciesNotesHandler(uc SpeciesNotesUsecase) *SpeciesNotesHandler {
	return &SpeciesNotesHandler{uc: uc}
}

// CreateSpeciesNotes は学名から種の解説を生成します。
//
// エンドポイント: POST /v1/species/notes
// Content-Type: application/json
func (h *SpeciesNotesHandler) CreateSpeciesNotes(c *gin.Context) {
	requestID := middleware.RequestID(c)
	if h.uc == nil {
		writeError(c, http.StatusServiceUnavailable, "species notes are not configured", requestID)
		return
	}

	var req api.SpeciesNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("解説リクエストのバリデーションに失敗", "request_id", requestID, "error", err, "remote_addr", c.ClientIP())
		writeError(c, http.StatusBadRequest, "scientific_name is required", requestID)
		return
	}

	notes, err := h.uc.CreateNotes(c.Request.Context(), req.ScientificName)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidScientificName) {
			writeError(c, http.StatusBadRequest, err.Error(), requestID)
			return
		}
		slog.Error("種の解説生成に失敗", "request_id", requestID, "error", err, "scientific_name", req.ScientificName)
		writeError(c, http.StatusBadGateway, "failed to generate species notes", requestID)
		return
	}

	c.JSON(http.StatusOK, api.SpeciesNotesResponse{
		ScientificName: notes.ScientificName,
		Notes:          notes.Notes,
	})
}

func writeError(c *gin.Context, status int, message, requestID string) {
	resp := api.ErrorResponse{Error: message}
	if requestID != "" {
		resp.RequestId = &requestID
	}
	c.JSON(status, resp)
}
