// Package domain はidentifyフィーチャーのドメインエラーを定義します。
package domain

import (
	"errors"
	"fmt"
)

// 画像の正規化と外部API呼び出しで発生するエラーです。
// 上位レイヤーはerrors.Isで判定し、Categorizeで利用者向けの区分に変換します。
var (
	// ErrNoImages は画像が1枚も送信されなかったことを示します。
	ErrNoImages = errors.New("no images uploaded")

	// ErrImageTooLarge はアップロードされた画像がサイズ上限を超えていることを示します。
	ErrImageTooLarge = errors.New("image exceeds upload size limit")

	// ErrTooManyPixels は画像の画素数がデコード上限を超えていることを示します。
	ErrTooManyPixels = errors.New("image exceeds pixel limit")

	// ErrRequestTooLarge はmultipart本文全体がサイズ上限を超えていることを示します。
	ErrRequestTooLarge = errors.New("request body exceeds size limit")

	// ErrDecode は画像として読み取れなかったことを示します。
	ErrDecode = errors.New("image could not be decoded")

	// ErrEncode はJPEGへの再エンコードに失敗したことを示します。
	ErrEncode = errors.New("image could not be encoded")

	// ErrInvalidOrgan はPl@ntNetが受け付けない器官名が指定されたことを示します。
	ErrInvalidOrgan = errors.New("invalid organ")

	// ErrRemoteUnauthorized はAPIキーが拒否されたことを示します。
	ErrRemoteUnauthorized = errors.New("plantnet rejected the api key")

	// ErrRemoteRateLimited はPl@ntNet側でレート制限されたことを示します。
	ErrRemoteRateLimited = errors.New("plantnet rate limit exceeded")

	// ErrRemotePayloadTooLarge は送信サイズがPl@ntNetの上限を超えたことを示します。
	ErrRemotePayloadTooLarge = errors.New("plantnet payload too large")

	// ErrRemoteTimeout は外部API呼び出しがタイムアウトしたことを示します。
	ErrRemoteTimeout = errors.New("plantnet request timed out")

	// ErrRemoteConnection は外部APIに接続できなかったことを示します。
	ErrRemoteConnection = errors.New("plantnet connection failed")

	// ErrRemoteOther はその他の非200レスポンスを示します。
	ErrRemoteOther = errors.New("plantnet returned an error")
)

// NormalizationError は特定の画像の正規化に失敗したことを表します。
type NormalizationError struct {
	Filename string
	Stage    string // "read", "decode", "encode"
	Err      error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize %q (%s): %v", e.Filename, e.Stage, e.Err)
}

func (e *NormalizationError) Unwrap() error {
	return e.Err
}

// RemoteStatusError は想定外のHTTPステータスを、診断用の本文とともに保持します。
type RemoteStatusError struct {
	StatusCode int
	Body       string
}

func (e *RemoteStatusError) Error() string {
	return fmt.Sprintf("plantnet http %d: %s", e.StatusCode, e.Body)
}

// Unwrap によりerrors.Is(err, ErrRemoteOther)が成立します。
func (e *RemoteStatusError) Unwrap() error {
	return ErrRemoteOther
}

// LimitError はサイズ上限の超過を上限値とともに表します。
// ErrはErrImageTooLarge、ErrTooManyPixels、ErrRequestTooLargeのいずれかです。
type LimitError struct {
	Err    error
	Limit  int64 // バイト数または画素数
	Actual int64 // 0は不明
}

func (e *LimitError) Error() string {
	if e.Actual > 0 {
		return fmt.Sprintf("%v: %d > %d", e.Err, e.Actual, e.Limit)
	}
	return fmt.Sprintf("%v: limit %d", e.Err, e.Limit)
}

func (e *LimitError) Unwrap() error {
	return e.Err
}
