// Package entity はidentifyフィーチャーのドメインモデルを定義します。
package entity

// UploadedImage は利用者がアップロードした正規化前の画像を表します。
// リクエストの処理中だけ保持され、正規化後は破棄されます。
type UploadedImage struct {
	Filename    string // 元のファイル名
	ContentType string // 申告されたContent-Type
	Data        []byte // 生の画像バイト列
}

// NormalizedImage は送信用に再エンコードされた画像を表します。
// 外部APIの呼び出しが終わるまでだけ保持されます。
type NormalizedImage struct {
	Filename    string // 送信時のファイル名（拡張子は.jpg）
	ContentType string // 常に image/jpeg
	Data        []byte // JPEGバイト列
	Width       int
	Height      int
	Organ       string // Pl@ntNetに渡す器官（leaf, flower, auto など）
}
