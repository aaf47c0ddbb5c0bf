package entity

// MatchCandidate はPl@ntNetが返した種の候補を表します。
// 境界でデコードされた時点で欠損フィールドはすべて既定値で埋められています。
type MatchCandidate struct {
	ScientificName string   // 著者名なしの学名
	CommonNames    []string // 一般名（提供順）
	Family         string   // 科名
	Genus          string   // 属名
	Score          float64  // 信頼度スコア（0.0 ~ 1.0）
}

// フィールドが欠けている場合に表示する既定値です。
const (
	UnknownSpecies = "Unknown Species"
	UnknownFamily  = "Unknown Family"
	UnknownGenus   = "Unknown Genus"
	NotAvailable   = "Not available"
)
