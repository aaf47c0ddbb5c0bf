// Package usecase はspeciesnotesフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"plantid_backend/internal/feature/speciesnotes/domain/entity"
)

const (
	// NotesPromptTemplate は種の解説を生成するプロンプトテンプレートです。
	NotesPromptTemplate = "日本語で、植物%sの特徴・分布・育て方の注意点をそれぞれ1文で説明して。"
	// MaxScientificNameLength は学名の最大文字数（rune数）です。
	MaxScientificNameLength = 100
)

// ErrInvalidScientificName は学名の入力値が不正な場合に返されます。
var ErrInvalidScientificName = errors.New("invalid scientific name")

// validScientificName は学名に許可される文字パターンです（文字・スペース・ピリオド・ハイフン・交雑記号）。
var validScientificName = regexp.MustCompile(`^[\p{L}\s.\-×]+$`)

// NotesGenerator はプロンプトから解説文を生成するインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type NotesGenerator interface {
	// Generate はプロンプトから解説文を生成します。
	Generate(ctx context.Context, prompt string) (string, error)
}

type speciesNotesUsecase struct {
	generator NotesGenerator
}

// NewSpeciesNotesUsecase はspeciesNotesUsecaseの新しいインスタンスを生成します。
func NewSpeciesNotesUsecase(g NotesGenerator) *speciesNotesUsecase {
	return &speciesNotesUsecase{generator: g}
}

// CreateNotes は学名から種の解説を生成します。
func (u *speciesNotesUsecase) CreateNotes(ctx context.Context, scientificName string) (*entity.SpeciesNotes, error) {
	name := strings.TrimSpace(scientificName)
	if name == "" {
		return nil, fmt.Errorf("%w: scientific name is required", ErrInvalidScientificName)
	}
	if utf8.RuneCountInString(name) > MaxScientificNameLength {
		return nil, fmt.Errorf("%w: exceeds maximum length of %d characters", ErrInvalidScientificName, MaxScientificNameLength)
	}
	if !validScientificName.MatchString(name) {
		return nil, fmt.Errorf("%w: contains invalid characters", ErrInvalidScientificName)
	}

	notes, err := u.generator.Generate(ctx, fmt.Sprintf(NotesPromptTemplate, name))
	if err != nil {
		return nil, fmt.Errorf("notes generator failed for %q: %w", name, err)
	}
	return &entity.SpeciesNotes{ScientificName: name, Notes: notes}, nil
}
