package entity

import "time"

// ConfidenceBucket はスコアを表示用に分類した信頼度区分です。
type ConfidenceBucket string

const (
	ConfidenceHigh   ConfidenceBucket = "high"
	ConfidenceMedium ConfidenceBucket = "medium"
	ConfidenceLow    ConfidenceBucket = "low"
)

// CSSClass はテンプレートで使うクラス名を返します。
func (b ConfidenceBucket) CSSClass() string {
	return "confidence-" + string(b)
}

// DisplayResult は1件の候補を画面表示用に整形したものです。
type DisplayResult struct {
	ScientificName  string
	CommonNames     string // 最大3件をカンマ区切りで連結
	Family          string
	Genus           string
	Score           float64 // パーセント（小数点以下2桁）
	Confidence      ConfidenceBucket
	ConfidenceLabel string // 例: "🟢 92.3% (High Confidence)"
}

// AnalysisSummary は1回の識別結果全体の統計です。
type AnalysisSummary struct {
	Total       int     // 表示件数で切り詰める前の候補数
	BestScore   float64 // 正のスコアを持つ候補の最大値（パーセント）
	AvgScore    float64 // 正のスコアを持つ候補の平均値（小数点以下1桁）
	GeneratedAt time.Time
}

// ShapedResult は整形済みの表示結果と統計の組です。
type ShapedResult struct {
	Results []DisplayResult
	Summary AnalysisSummary
}
