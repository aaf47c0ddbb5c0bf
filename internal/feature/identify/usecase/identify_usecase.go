// Package usecase はidentifyフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"plantid_backend/internal/feature/identify/domain"
	"plantid_backend/internal/feature/identify/domain/entity"
)

const (
	// DefaultMaxResults は表示件数が未指定のときの既定値です。
	DefaultMaxResults = 5
	// MaxResultsLimit は表示件数の上限です。
	MaxResultsLimit = 10
	// DefaultRequestTimeout はPl@ntNet呼び出し1回あたりのタイムアウトです。
	DefaultRequestTimeout = 45 * time.Second
	// DefaultOrgan は器官が指定されなかった画像に使う値です。
	DefaultOrgan = "auto"
)

// validOrgans はPl@ntNetが受け付ける器官名です。
var validOrgans = map[string]struct{}{
	"auto": {}, "leaf": {}, "flower": {}, "fruit": {}, "bark": {}, "habit": {}, "other": {},
}

// ImageNormalizer は1枚の画像を送信用に正規化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type ImageNormalizer interface {
	Normalize(img entity.UploadedImage) (entity.NormalizedImage, error)
}

// Classifier は正規化済み画像をまとめて外部の識別サービスに送信します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type Classifier interface {
	// Identify は1回のリクエストで全画像を送信し、ランク順の候補を返します。
	Identify(ctx context.Context, images []entity.NormalizedImage, opts ClassifyOptions) ([]entity.MatchCandidate, error)
}

// ClassifyOptions はClassifierに渡す任意のパラメータです。
type ClassifyOptions struct {
	Lang string // 一般名の言語（例: "en", "ja"）。空ならサービスの既定値
}

// IdentifyRequest は識別処理1回分の入力です。
type IdentifyRequest struct {
	RequestID   string // 空の場合は生成されます
	Images      []entity.UploadedImage
	Organs      []string // 画像ごとの器官。1件だけなら全画像に適用
	MaxResults  int
	WantDetails bool
	Lang        string
}

// identifyUsecase は画像の正規化、外部API呼び出し、結果の整形をまとめます。
type identifyUsecase struct {
	normalizer ImageNormalizer
	classifier Classifier
	timeout    time.Duration
	now        func() time.Time
}

// NewIdentifyUsecase はidentifyUsecaseの新しいインスタンスを生成します。
// timeoutが0以下の場合はDefaultRequestTimeoutを使用します。
func NewIdentifyUsecase(n ImageNormalizer, c Classifier, timeout time.Duration) *identifyUsecase {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &identifyUsecase{normalizer: n, classifier: c, timeout: timeout, now: time.Now}
}

// Identify は画像を正規化してPl@ntNetに1回だけ送信し、結果を整形して返します。
// どの経路でも終端状態を1つだけ持つOutcomeを返し、エラーは戻り値にしません。
func (u *identifyUsecase) Identify(ctx context.Context, req IdentifyRequest) Outcome {
	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := slog.With("request_id", requestID)

	if len(req.Images) == 0 {
		log.Warn("identify request without images")
		return failed(requestID, domain.ErrNoImages)
	}

	organs, err := resolveOrgans(req.Organs, len(req.Images))
	if err != nil {
		log.Warn("invalid organs", "organs", req.Organs, "error", err)
		return failed(requestID, err)
	}

	// 1枚でも失敗したらバッチ全体を中止し、部分的な送信はしない
	normalized := make([]entity.NormalizedImage, 0, len(req.Images))
	for i, img := range req.Images {
		ni, err := u.normalizer.Normalize(img)
		if err != nil {
			log.Warn("image normalization failed", "filename", img.Filename, "error", err)
			return failed(requestID, err)
		}
		ni.Organ = organs[i]
		normalized = append(normalized, ni)
	}

	callCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	start := time.Now()
	matches, err := u.classifier.Identify(callCtx, normalized, ClassifyOptions{Lang: req.Lang})
	if err != nil {
		log.Error("plantnet identify failed", "images", len(normalized), "elapsed", time.Since(start), "error", err)
		return failed(requestID, err)
	}

	shaped, ok := Shape(matches, ClampMaxResults(req.MaxResults), u.now())
	if !ok {
		log.Info("no species matches", "images", len(normalized))
		return Outcome{Kind: OutcomeNoMatches, RequestID: requestID, WantDetails: req.WantDetails}
	}

	log.Info("identify succeeded",
		"images", len(normalized),
		"total", shaped.Summary.Total,
		"shown", len(shaped.Results),
		"best_score", shaped.Summary.BestScore,
		"elapsed", time.Since(start),
	)
	return Outcome{Kind: OutcomeSuccess, RequestID: requestID, WantDetails: req.WantDetails, Result: shaped}
}

// ClampMaxResults は表示件数を[1, MaxResultsLimit]に収めます。0以下は既定値になります。
func ClampMaxResults(n int) int {
	switch {
	case n <= 0:
		return DefaultMaxResults
	case n > MaxResultsLimit:
		return MaxResultsLimit
	default:
		return n
	}
}

// resolveOrgans は画像ごとの器官名を決定します。
func resolveOrgans(organs []string, count int) ([]string, error) {
	if len(organs) > 1 && len(organs) != count {
		return nil, fmt.Errorf("%w: got %d organs for %d images", domain.ErrInvalidOrgan, len(organs), count)
	}

	out := make([]string, count)
	for i := range out {
		organ := DefaultOrgan
		switch {
		case len(organs) == 1:
			organ = organs[0]
		case len(organs) > 1:
			organ = organs[i]
		}
		organ = strings.ToLower(strings.TrimSpace(organ))
		if organ == "" {
			organ = DefaultOrgan
		}
		if _, ok := validOrgans[organ]; !ok {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidOrgan, organ)
		}
		out[i] = organ
	}
	return out, nil
}

func asNormalizationError(err error) *domain.NormalizationError {
	var ne *domain.NormalizationError
	if errors.As(err, &ne) {
		return ne
	}
	return nil
}
