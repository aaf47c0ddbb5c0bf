// Package plantnet はPl@ntNet識別APIのクライアントを提供します。
package plantnet

import "time"

const (
	// DefaultBaseURL はPl@ntNet APIのベースURLです。
	DefaultBaseURL = "https://my-api.plantnet.org"
	// DefaultProject は識別に使うフローラ（プロジェクト）です。
	DefaultProject = "all"
	// DefaultTimeout はHTTPリクエスト全体のタイムアウトです。
	DefaultTimeout = 45 * time.Second
)

// Config はPl@ntNet APIクライアントの設定を保持します。起動時に一度だけ構築され、以後変更されません。
type Config struct {
	APIKey  string        // 認証用APIキー
	BaseURL string        // APIのベースURL（例: "https://my-api.plantnet.org"）
	Project string        // 識別プロジェクト（例: "all", "weurope"）
	Timeout time.Duration // HTTPリクエストタイムアウト
}

// withDefaults は未設定の項目を既定値で埋めた設定を返します。
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Project == "" {
		c.Project = DefaultProject
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
