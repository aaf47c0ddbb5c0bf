package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantid_backend/internal/api"
	"plantid_backend/internal/feature/identify/domain"
	"plantid_backend/internal/feature/identify/domain/entity"
	"plantid_backend/internal/feature/identify/transport/handler"
	"plantid_backend/internal/feature/identify/usecase"
)

// mockIdentifyUsecase はIdentifyUsecaseインターフェースのモック実装です。
type mockIdentifyUsecase struct {
	IdentifyFunc func(ctx context.Context, req usecase.IdentifyRequest) usecase.Outcome
	LastRequest  usecase.IdentifyRequest
}

func (m *mockIdentifyUsecase) Identify(ctx context.Context, req usecase.IdentifyRequest) usecase.Outcome {
	m.LastRequest = req
	return m.IdentifyFunc(ctx, req)
}

type upload struct {
	field, name string
	content     []byte
}

// createMultipartRequest はテスト用のマルチパートリクエストを生成するヘルパー関数です。
func createMultipartRequest(t *testing.T, files []upload, values map[string][]string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	for k, vs := range values {
		for _, v := range vs {
			require.NoError(t, writer.WriteField(k, v))
		}
	}
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, "/v1/identify", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func setupRouter(h *handler.IdentifyHandler, params api.IdentifyPlantParams) *gin.Engine {
	router := gin.New()
	router.POST("/v1/identify", func(c *gin.Context) { h.IdentifyPlant(c, params) })
	return router
}

func successOutcome(wantDetails bool) usecase.Outcome {
	return usecase.Outcome{
		Kind:        usecase.OutcomeSuccess,
		RequestID:   "req-1",
		WantDetails: wantDetails,
		Result: entity.ShapedResult{
			Results: []entity.DisplayResult{{
				ScientificName:  "Quercus robur",
				CommonNames:     "English oak",
				Family:          "Fagaceae",
				Genus:           "Quercus",
				Score:           91.5,
				Confidence:      entity.ConfidenceHigh,
				ConfidenceLabel: "🟢 91.5% (High Confidence)",
			}},
			Summary: entity.AnalysisSummary{
				Total:       3,
				BestScore:   91.5,
				AvgScore:    50.2,
				GeneratedAt: time.Date(2025, 6, 1, 9, 30, 0, 0, time.Local),
			},
		},
	}
}

func TestIdentifyHandler_IdentifyPlant(t *testing.T) {
	gin.SetMode(gin.TestMode)

	maxResults := 3
	noDetails := false

	tests := []struct {
		name           string
		setupRequest   func(t *testing.T) *http.Request
		params         api.IdentifyPlantParams
		outcome        usecase.Outcome
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: with details",
			setupRequest: func(t *testing.T) *http.Request {
				return createMultipartRequest(t, []upload{{"images", "oak.jpg", []byte("img")}}, nil)
			},
			outcome:        successOutcome(true),
			expectedStatus: http.StatusOK,
			expectedBody: `{
				"status":"success","request_id":"req-1",
				"results":[{
					"scientific_name":"Quercus robur","common_names":"English oak",
					"family_name":"Fagaceae","genus_name":"Quercus","score":91.5,
					"confidence":"high","confidence_class":"confidence-high",
					"confidence_label":"🟢 91.5% (High Confidence)"
				}],
				"summary":{"total_matches":3,"shown_results":1,"best_match":91.5,"avg_confidence":50.2,"timestamp":"2025-06-01 09:30:00"}
			}`,
		},
		{
			name: "success: details hidden",
			setupRequest: func(t *testing.T) *http.Request {
				return createMultipartRequest(t, []upload{{"images", "oak.jpg", []byte("img")}}, nil)
			},
			params:         api.IdentifyPlantParams{Details: &noDetails},
			outcome:        successOutcome(false),
			expectedStatus: http.StatusOK,
			expectedBody: `{
				"status":"success","request_id":"req-1",
				"results":[{
					"scientific_name":"Quercus robur","score":91.5,
					"confidence":"high","confidence_class":"confidence-high",
					"confidence_label":"🟢 91.5% (High Confidence)"
				}],
				"summary":{"total_matches":3,"shown_results":1,"best_match":91.5,"avg_confidence":50.2,"timestamp":"2025-06-01 09:30:00"}
			}`,
		},
		{
			name: "no matches: advisory warning",
			setupRequest: func(t *testing.T) *http.Request {
				return createMultipartRequest(t, []upload{{"images", "blur.jpg", []byte("img")}}, nil)
			},
			outcome:        usecase.Outcome{Kind: usecase.OutcomeNoMatches, RequestID: "req-2"},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"no_matches","request_id":"req-2","results":[],"warning":` + quote(domain.NoMatchesWarning) + `}`,
		},
		{
			name: "error: unauthorized",
			setupRequest: func(t *testing.T) *http.Request {
				return createMultipartRequest(t, []upload{{"images", "oak.jpg", []byte("img")}}, nil)
			},
			outcome: usecase.Outcome{Kind: usecase.OutcomeFailure, RequestID: "req-3", Failure: &usecase.Failure{
				Category: domain.CategoryUnauthorized,
				Message:  "Invalid API key. Please check your PlantNet API key configuration.",
			}},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `{"error":"Invalid API key. Please check your PlantNet API key configuration.","category":"unauthorized","request_id":"req-3"}`,
		},
		{
			name: "error: rate limited",
			setupRequest: func(t *testing.T) *http.Request {
				return createMultipartRequest(t, []upload{{"images", "oak.jpg", []byte("img")}}, nil)
			},
			outcome: usecase.Outcome{Kind: usecase.OutcomeFailure, RequestID: "req-4", Failure: &usecase.Failure{
				Category: domain.CategoryRateLimited,
				Message:  "API rate limit exceeded. Please wait a moment before trying again.",
			}},
			expectedStatus: http.StatusTooManyRequests,
			expectedBody:   `{"error":"API rate limit exceeded. Please wait a moment before trying again.","category":"rate_limited","request_id":"req-4"}`,
		},
		{
			name: "error: bad image",
			setupRequest: func(t *testing.T) *http.Request {
				return createMultipartRequest(t, []upload{{"images", "x.txt", []byte("text")}}, nil)
			},
			outcome: usecase.Outcome{Kind: usecase.OutcomeFailure, RequestID: "req-5", Failure: &usecase.Failure{
				Category: domain.CategoryInvalidImage,
				Message:  "Failed to process image file: x.txt",
				Filename: "x.txt",
			}},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Failed to process image file: x.txt","category":"invalid_image","request_id":"req-5"}`,
		},
		{
			name: "error: not multipart",
			setupRequest: func(t *testing.T) *http.Request {
				req, _ := http.NewRequest(http.MethodPost, "/v1/identify", bytes.NewReader(nil))
				return req
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"No images uploaded.","category":"invalid_request"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockIdentifyUsecase{
				IdentifyFunc: func(ctx context.Context, req usecase.IdentifyRequest) usecase.Outcome {
					return tt.outcome
				},
			}
			h := handler.NewIdentifyHandler(mockUC, 0)

			w := httptest.NewRecorder()
			setupRouter(h, tt.params).ServeHTTP(w, tt.setupRequest(t))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}

	t.Run("forwards files, organs and params", func(t *testing.T) {
		mockUC := &mockIdentifyUsecase{
			IdentifyFunc: func(ctx context.Context, req usecase.IdentifyRequest) usecase.Outcome {
				return usecase.Outcome{Kind: usecase.OutcomeNoMatches, RequestID: req.RequestID}
			},
		}
		h := handler.NewIdentifyHandler(mockUC, 0)
		lang := "de"
		params := api.IdentifyPlantParams{MaxResults: &maxResults, Details: &noDetails, Lang: &lang}

		req := createMultipartRequest(t,
			[]upload{{"images", "first.png", []byte("1")}, {"images", "second.png", []byte("2")}},
			map[string][]string{"organs": {"leaf", "fruit"}},
		)
		w := httptest.NewRecorder()
		setupRouter(h, params).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		got := mockUC.LastRequest
		require.Len(t, got.Images, 2)
		assert.Equal(t, "first.png", got.Images[0].Filename)
		assert.Equal(t, []byte("1"), got.Images[0].Data)
		assert.Equal(t, "second.png", got.Images[1].Filename)
		assert.Equal(t, []string{"leaf", "fruit"}, got.Organs)
		assert.Equal(t, 3, got.MaxResults)
		assert.False(t, got.WantDetails)
		assert.Equal(t, "de", got.Lang)
	})
}

func TestIdentifyHandler_IdentifyPlant_BodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	called := false
	mockUC := &mockIdentifyUsecase{
		IdentifyFunc: func(ctx context.Context, req usecase.IdentifyRequest) usecase.Outcome {
			called = true
			return usecase.Outcome{Kind: usecase.OutcomeNoMatches}
		},
	}
	h := handler.NewIdentifyHandler(mockUC, 0).WithMaxBodyBytes(1024)

	req := createMultipartRequest(t, []upload{{"images", "huge.jpg", bytes.Repeat([]byte("x"), 8*1024)}}, nil)
	w := httptest.NewRecorder()
	setupRouter(h, api.IdentifyPlantParams{}).ServeHTTP(w, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.False(t, called)

	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Category)
	assert.Equal(t, string(domain.CategoryPayloadTooLarge), *resp.Category)
	assert.Equal(t, "Upload too large. Please keep the total upload under 1KB.", resp.Error)
	assert.NotContains(t, resp.Error, "5MB")
}

func TestStatusForCategory(t *testing.T) {
	tests := map[domain.Category]int{
		domain.CategoryInvalidImage:    http.StatusBadRequest,
		domain.CategoryInvalidRequest:  http.StatusBadRequest,
		domain.CategoryPayloadTooLarge: http.StatusRequestEntityTooLarge,
		domain.CategoryRateLimited:     http.StatusTooManyRequests,
		domain.CategoryTimeout:         http.StatusGatewayTimeout,
		domain.CategoryUnauthorized:    http.StatusBadGateway,
		domain.CategoryConnection:      http.StatusBadGateway,
		domain.CategoryRemoteError:     http.StatusBadGateway,
		domain.CategoryInternal:        http.StatusInternalServerError,
	}
	for category, want := range tests {
		assert.Equal(t, want, handler.StatusForCategory(category), string(category))
	}
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
