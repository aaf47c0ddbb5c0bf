// Package gemini はGoogle Gemini APIを使用した種の解説生成クライアントを提供します。
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"plantid_backend/internal/feature/speciesnotes/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"

	// SystemInstruction は解説生成時にモデルへ与える役割と出力形式の指示です。
	SystemInstruction = "あなたは植物図鑑の編集者です。与えられた学名の植物について、" +
		"特徴・分布・育て方の注意点を各1文、合計3行のプレーンテキストで答えてください。" +
		"見出しやMarkdownは使わないでください。" +
		"食用・薬用の可否や毒性の断定はせず、不明な種の場合は推測せず「情報が見つかりませんでした」とだけ答えてください。"

	temperature     = 0.2
	maxOutputTokens = 512
)

var (
	// ErrEmptyNotes はモデルが本文を返さなかった場合に返されます。
	ErrEmptyNotes = errors.New("gemini returned no notes")
	// ErrBlocked はプロンプトまたは応答が安全フィルターで遮断された場合に返されます。
	ErrBlocked = errors.New("gemini blocked the response")
)

// GeminiGenerator はGoogle Gemini APIを使用して種の解説を生成します。
type GeminiGenerator struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// GeminiGeneratorがNotesGeneratorを実装していることをコンパイル時に検証します。
var _ usecase.NotesGenerator = (*GeminiGenerator)(nil)

// NewGeminiGenerator はGeminiGeneratorの新しいインスタンスを生成します。
// modelが空の場合はDefaultModelを使用します。
// 認証情報は環境変数（GEMINI_API_KEY、またはGOOGLE_GENAI_USE_VERTEXAIとGOOGLE_CLOUD_PROJECT）から読み込まれます。
func NewGeminiGenerator(ctx context.Context, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiGenerator{client: client, model: model, config: generateConfig()}, nil
}

// generateConfig は解説生成用のリクエスト設定を返します。
// 短い定型文なので思考トークンは使いません。
func generateConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr[float32](temperature),
		MaxOutputTokens:   maxOutputTokens,
		ThinkingConfig:    &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
	}
}

// Generate はプロンプトを使用して解説文を生成します。
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}
	return notesFromResponse(resp)
}

// notesFromResponse は応答から解説文を取り出し、1行1項目のプレーンテキストに整えます。
func notesFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrEmptyNotes
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt %s", ErrBlocked, fb.BlockReason)
	}

	var finish genai.FinishReason
	if len(resp.Candidates) > 0 {
		finish = resp.Candidates[0].FinishReason
	}

	notes := cleanNotes(resp.Text())
	if notes == "" {
		if finish == genai.FinishReasonSafety {
			return "", fmt.Errorf("%w: response %s", ErrBlocked, finish)
		}
		return "", ErrEmptyNotes
	}
	if finish == genai.FinishReasonMaxTokens {
		slog.Warn("species notes truncated", "max_output_tokens", maxOutputTokens)
	}
	return notes, nil
}

// cleanNotes は空行と箇条書き記号を取り除きます。
func cleanNotes(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		for _, bullet := range []string{"- ", "* ", "・", "•"} {
			line = strings.TrimSpace(strings.TrimPrefix(line, bullet))
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
