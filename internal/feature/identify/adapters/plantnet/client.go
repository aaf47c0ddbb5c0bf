package plantnet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"plantid_backend/internal/feature/identify/adapters/plantnet/dto"
	"plantid_backend/internal/feature/identify/domain"
	"plantid_backend/internal/feature/identify/domain/entity"
	"plantid_backend/internal/feature/identify/usecase"
)

// maxErrorBodyBytes はエラー診断用に読み取るレスポンス本文の上限です。
const maxErrorBodyBytes = 2048

// PlantNetClient はPl@ntNet外部APIに画像を送信するClassifier実装です。
type PlantNetClient struct {
	cfg    Config
	client *http.Client
}

// PlantNetClientがClassifierを実装していることをコンパイル時に検証します。
var _ usecase.Classifier = (*PlantNetClient)(nil)

// NewPlantNetClient は指定された設定とHTTPクライアントでPlantNetClientの新しいインスタンスを生成します。
func NewPlantNetClient(cfg Config, client *http.Client) *PlantNetClient {
	return &PlantNetClient{cfg: cfg.withDefaults(), client: client}
}

// Identify は全画像を1つのmultipartリクエストで送信し、候補をエンティティに変換して返します。
// 画像は送信順のまま並べます。
func (p *PlantNetClient) Identify(ctx context.Context, images []entity.NormalizedImage, opts usecase.ClassifyOptions) ([]entity.MatchCandidate, error) {
	body, contentType, err := buildMultipart(images)
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}

	q := url.Values{}
	q.Set("api-key", p.cfg.APIKey)
	if opts.Lang != "" {
		q.Set("lang", opts.Lang)
	}
	u := fmt.Sprintf("%s/v2/identify/%s?%s", strings.TrimRight(p.cfg.BaseURL, "/"), url.PathEscape(p.cfg.Project), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, domain.ErrRemoteUnauthorized
	case http.StatusTooManyRequests:
		return nil, domain.ErrRemoteRateLimited
	case http.StatusRequestEntityTooLarge:
		return nil, domain.ErrRemotePayloadTooLarge
	case http.StatusNotFound:
		// Pl@ntNetは候補が1件もない場合に404 "Species not found"を返す
		text := readErrorBody(res.Body)
		if isSpeciesNotFound(text) {
			return []entity.MatchCandidate{}, nil
		}
		return nil, &domain.RemoteStatusError{StatusCode: res.StatusCode, Body: text}
	default:
		return nil, &domain.RemoteStatusError{StatusCode: res.StatusCode, Body: readErrorBody(res.Body)}
	}

	// JSONレスポンスをDTOにデコード
	var out dto.IdentifyResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		if ctx.Err() != nil {
			return nil, classifyTransportError(ctx, err)
		}
		return nil, fmt.Errorf("decode plantnet response: %w", err)
	}
	if out.RemainingIdentificationRequests != nil {
		slog.Debug("plantnet quota", "remaining", *out.RemainingIdentificationRequests)
	}

	return toCandidates(out.Results), nil
}

// buildMultipart は画像ごとに"images"と"organs"フィールドを書き込んだ本文を作成します。
func buildMultipart(images []entity.NormalizedImage) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	for _, img := range images {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, escapeQuotes(img.Filename)))
		h.Set("Content-Type", img.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", err
		}
	}
	for _, img := range images {
		organ := img.Organ
		if organ == "" {
			organ = usecase.DefaultOrgan
		}
		if err := w.WriteField("organs", organ); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}

// toCandidates はDTOを既定値付きのエンティティに変換します。
// ここで欠損を埋めるため、以降の処理は欠損を気にする必要がありません。
func toCandidates(results []dto.Result) []entity.MatchCandidate {
	out := make([]entity.MatchCandidate, 0, len(results))
	for _, r := range results {
		c := entity.MatchCandidate{
			ScientificName: entity.UnknownSpecies,
			Family:         entity.UnknownFamily,
			Genus:          entity.UnknownGenus,
		}
		if r.Score != nil {
			c.Score = *r.Score
		}
		if s := r.Species; s != nil {
			c.ScientificName = orDefault(s.ScientificNameWithoutAuthor, entity.UnknownSpecies)
			c.CommonNames = s.CommonNames
			if s.Family != nil {
				c.Family = orDefault(s.Family.ScientificNameWithoutAuthor, entity.UnknownFamily)
			}
			if s.Genus != nil {
				c.Genus = orDefault(s.Genus.ScientificNameWithoutAuthor, entity.UnknownGenus)
			}
		}
		out = append(out, c)
	}
	return out
}

// classifyTransportError はHTTPクライアントのエラーをタイムアウトと接続エラーに分類します。
func classifyTransportError(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", domain.ErrRemoteTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrRemoteConnection, err)
}

func readErrorBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, maxErrorBodyBytes))
	if err != nil {
		slog.Warn("failed to read error body", "error", err)
	}
	return strings.TrimSpace(string(b))
}

func isSpeciesNotFound(body string) bool {
	var e dto.ErrorResponse
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		return false
	}
	return strings.EqualFold(e.Message, "Species not found")
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
