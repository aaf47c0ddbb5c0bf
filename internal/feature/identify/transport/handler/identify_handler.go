// Package handler はidentifyフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"plantid_backend/internal/api"
	"plantid_backend/internal/feature/identify/domain"
	"plantid_backend/internal/feature/identify/domain/entity"
	"plantid_backend/internal/feature/identify/usecase"
	"plantid_backend/internal/platform/http/middleware"
)

const (
	// FormFieldImages は画像ファイルを受け取るmultipartフィールド名です。
	FormFieldImages = "images"
	// FormFieldOrgans は画像ごとの器官を受け取るmultipartフィールド名です。
	FormFieldOrgans = "organs"
	// DefaultMaxBodyBytes はmultipart本文全体の上限（50MB）です。
	DefaultMaxBodyBytes = 50 * 1024 * 1024
	// DefaultMaxFileBytes は1ファイルあたりの読み取り上限（10MB）です。
	DefaultMaxFileBytes = 10 * 1024 * 1024
)

// IdentifyUsecase は植物識別のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type IdentifyUsecase interface {
	Identify(ctx context.Context, req usecase.IdentifyRequest) usecase.Outcome
}

// IdentifyHandler は植物識別のHTTPリクエストを処理します。
type IdentifyHandler struct {
	uc           IdentifyUsecase
	maxBodyBytes int64
	maxFileBytes int64
}

// NewIdentifyHandler はIdentifyHandlerの新しいインスタンスを生成します。
// maxFileBytesが0以下の場合はDefaultMaxFileBytesを使用します。
func NewIdentifyHandler(uc IdentifyUsecase, maxFileBytes int64) *IdentifyHandler {
	if maxFileBytes <= 0 {
		maxFileBytes = DefaultMaxFileBytes
	}
	return &IdentifyHandler{uc: uc, maxBodyBytes: DefaultMaxBodyBytes, maxFileBytes: maxFileBytes}
}

// WithMaxBodyBytes はmultipart本文全体の上限を差し替えます。0以下の場合は変更しません。
func (h *IdentifyHandler) WithMaxBodyBytes(n int64) *IdentifyHandler {
	if n > 0 {
		h.maxBodyBytes = n
	}
	return h
}

// IdentifyPlant は画像をアップロードして植物の種を識別します。
//
// エンドポイント: POST /v1/identify?max_results=5&details=true&lang=en
// Content-Type: multipart/form-data
// フィールド: images（1枚以上）、organs（任意、画像ごと）
func (h *IdentifyHandler) IdentifyPlant(c *gin.Context, params api.IdentifyPlantParams) {
	requestID := middleware.RequestID(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)

	form, err := c.MultipartForm()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			slog.Warn("multipart body too large", "request_id", requestID, "limit", maxErr.Limit)
			limitErr := &domain.LimitError{Err: domain.ErrRequestTooLarge, Limit: maxErr.Limit}
			writeError(c, http.StatusRequestEntityTooLarge, domain.CategoryPayloadTooLarge,
				domain.UserMessage(limitErr), requestID)
			return
		}
		slog.Warn("multipart formの取得に失敗", "request_id", requestID, "error", err, "remote_addr", c.ClientIP())
		writeError(c, http.StatusBadRequest, domain.CategoryInvalidRequest, domain.UserMessage(domain.ErrNoImages), requestID)
		return
	}
	defer func() {
		if err := form.RemoveAll(); err != nil {
			slog.Warn("multipart一時ファイルの削除に失敗", "request_id", requestID, "error", err)
		}
	}()

	images, err := h.readImages(form.File[FormFieldImages])
	if err != nil {
		slog.Error("画像データの読み取りに失敗", "request_id", requestID, "error", err)
		writeError(c, http.StatusBadRequest, domain.CategoryInvalidImage, domain.UserMessage(err), requestID)
		return
	}

	req := usecase.IdentifyRequest{
		RequestID:   requestID,
		Images:      images,
		Organs:      form.Value[FormFieldOrgans],
		WantDetails: true,
	}
	if params.MaxResults != nil {
		req.MaxResults = *params.MaxResults
	}
	if params.Details != nil {
		req.WantDetails = *params.Details
	}
	if params.Lang != nil {
		req.Lang = *params.Lang
	}

	out := h.uc.Identify(c.Request.Context(), req)
	switch out.Kind {
	case usecase.OutcomeSuccess:
		c.JSON(http.StatusOK, toIdentifyResponse(out))
	case usecase.OutcomeNoMatches:
		warning := domain.NoMatchesWarning
		c.JSON(http.StatusOK, api.IdentifyResponse{
			Status:    api.NoMatches,
			RequestId: out.RequestID,
			Results:   []api.SpeciesResult{},
			Warning:   &warning,
		})
	default:
		f := out.Failure
		if f == nil {
			f = &usecase.Failure{Category: domain.CategoryInternal, Message: "Unexpected error"}
		}
		writeError(c, StatusForCategory(f.Category), f.Category, f.Message, out.RequestID)
	}
}

// readImages はアップロードされたファイルを送信順に読み込みます。
func (h *IdentifyHandler) readImages(files []*multipart.FileHeader) ([]entity.UploadedImage, error) {
	images := make([]entity.UploadedImage, 0, len(files))
	for _, fh := range files {
		data, err := h.readFile(fh)
		if err != nil {
			return nil, &domain.NormalizationError{Filename: fh.Filename, Stage: "read", Err: err}
		}
		images = append(images, entity.UploadedImage{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return images, nil
}

// readFile は上限+1バイトまで読み込みます。上限超過の判定はNormalizerが行います。
func (h *IdentifyHandler) readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("画像ファイルのクローズに失敗", "error", err)
		}
	}()
	return io.ReadAll(io.LimitReader(f, h.maxFileBytes+1))
}

// StatusForCategory は失敗区分をHTTPステータスに変換します。
// APIキーの拒否はこちらの設定の問題なので502として返します。
func StatusForCategory(c domain.Category) int {
	switch c {
	case domain.CategoryInvalidImage, domain.CategoryInvalidRequest:
		return http.StatusBadRequest
	case domain.CategoryPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case domain.CategoryRateLimited:
		return http.StatusTooManyRequests
	case domain.CategoryTimeout:
		return http.StatusGatewayTimeout
	case domain.CategoryUnauthorized, domain.CategoryConnection, domain.CategoryRemoteError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func toIdentifyResponse(out usecase.Outcome) api.IdentifyResponse {
	results := make([]api.SpeciesResult, 0, len(out.Result.Results))
	for _, r := range out.Result.Results {
		sr := api.SpeciesResult{
			ScientificName:  r.ScientificName,
			Score:           r.Score,
			Confidence:      api.SpeciesResultConfidence(r.Confidence),
			ConfidenceClass: r.Confidence.CSSClass(),
			ConfidenceLabel: r.ConfidenceLabel,
		}
		if out.WantDetails {
			sr.CommonNames = ptr(r.CommonNames)
			sr.FamilyName = ptr(r.Family)
			sr.GenusName = ptr(r.Genus)
		}
		results = append(results, sr)
	}

	s := out.Result.Summary
	return api.IdentifyResponse{
		Status:    api.Success,
		RequestId: out.RequestID,
		Results:   results,
		Summary: &api.AnalysisSummary{
			TotalMatches:  s.Total,
			ShownResults:  len(results),
			BestMatch:     s.BestScore,
			AvgConfidence: s.AvgScore,
			Timestamp:     s.GeneratedAt.Format(usecase.TimestampLayout),
		},
	}
}

func writeError(c *gin.Context, status int, category domain.Category, message, requestID string) {
	cat := string(category)
	resp := api.ErrorResponse{Error: message, Category: &cat}
	if requestID != "" {
		resp.RequestId = &requestID
	}
	c.JSON(status, resp)
}

func ptr[T any](v T) *T {
	return &v
}
