package usecase

import (
	"fmt"
	"math"
	"strings"
	"time"

	"plantid_backend/internal/feature/identify/domain/entity"
)

const (
	// HighConfidenceThreshold 以上のスコア（パーセント）はhighに分類されます。
	HighConfidenceThreshold = 70.0
	// MediumConfidenceThreshold 以上のスコア（パーセント）はmediumに分類されます。
	MediumConfidenceThreshold = 40.0
	// MaxCommonNames は表示する一般名の最大件数です。
	MaxCommonNames = 3
	// TimestampLayout はAnalysisSummaryの表示用タイムスタンプ形式です。
	TimestampLayout = "2006-01-02 15:04:05"
)

// Bucket はパーセント表記のスコアを信頼度区分に変換します。
func Bucket(score float64) entity.ConfidenceBucket {
	switch {
	case score >= HighConfidenceThreshold:
		return entity.ConfidenceHigh
	case score >= MediumConfidenceThreshold:
		return entity.ConfidenceMedium
	default:
		return entity.ConfidenceLow
	}
}

// FormatConfidence はスコアを絵文字付きのラベルに整形します。
func FormatConfidence(score float64) string {
	switch Bucket(score) {
	case entity.ConfidenceHigh:
		return fmt.Sprintf("🟢 %.1f%% (High Confidence)", score)
	case entity.ConfidenceMedium:
		return fmt.Sprintf("🟡 %.1f%% (Medium Confidence)", score)
	default:
		return fmt.Sprintf("🔴 %.1f%% (Low Confidence)", score)
	}
}

// Shape は候補リストの先頭maxResults件を表示用に整形し、全件の統計を計算します。
// 候補が0件の場合は第2戻り値がfalseになります（エラーではありません）。
// 並び順はPl@ntNetの返した順のままで、信頼度区分は並び順にも件数にも影響しません。
func Shape(matches []entity.MatchCandidate, maxResults int, now time.Time) (entity.ShapedResult, bool) {
	if len(matches) == 0 {
		return entity.ShapedResult{}, false
	}

	n := min(len(matches), max(maxResults, 0))
	results := make([]entity.DisplayResult, 0, n)
	for _, m := range matches[:n] {
		score := roundTo(m.Score*100, 2)
		results = append(results, entity.DisplayResult{
			ScientificName:  valueOr(m.ScientificName, entity.UnknownSpecies),
			CommonNames:     joinCommonNames(m.CommonNames),
			Family:          valueOr(m.Family, entity.UnknownFamily),
			Genus:           valueOr(m.Genus, entity.UnknownGenus),
			Score:           score,
			Confidence:      Bucket(score),
			ConfidenceLabel: FormatConfidence(score),
		})
	}

	return entity.ShapedResult{
		Results: results,
		Summary: summarize(matches, now),
	}, true
}

// summarize は正のスコアを持つ候補だけから最大値と平均を計算します。
// スコア0の候補は「未報告」と同じ扱いで集計から除外されます。
func summarize(matches []entity.MatchCandidate, now time.Time) entity.AnalysisSummary {
	var best, sum float64
	var positive int
	for _, m := range matches {
		if m.Score <= 0 {
			continue
		}
		pct := m.Score * 100
		best = math.Max(best, pct)
		sum += pct
		positive++
	}

	s := entity.AnalysisSummary{Total: len(matches), GeneratedAt: now}
	if positive > 0 {
		s.BestScore = roundTo(best, 2)
		s.AvgScore = roundTo(sum/float64(positive), 1)
	}
	return s
}

// joinCommonNames は先頭3件までの一般名を連結します。空の名前は除外します。
func joinCommonNames(names []string) string {
	if len(names) > MaxCommonNames {
		names = names[:MaxCommonNames]
	}
	kept := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			kept = append(kept, name)
		}
	}
	if len(kept) == 0 {
		return entity.NotAvailable
	}
	return strings.Join(kept, ", ")
}

func valueOr(v, placeholder string) string {
	if strings.TrimSpace(v) == "" {
		return placeholder
	}
	return v
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
