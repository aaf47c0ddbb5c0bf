package entity

// SpeciesNotes は種についての短い解説を表します。
type SpeciesNotes struct {
	ScientificName string // 対象の学名
	Notes          string // AI生成の解説文
}
