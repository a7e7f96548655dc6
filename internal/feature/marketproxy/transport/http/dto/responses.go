// Package dto はmarketproxyフィーチャーのHTTPレスポンス形式を定義します。
package dto

// ErrorBody は {error:{message, request_id, ...extra}} のerrorオブジェクトです。
// Extraはmessage・request_idと同じ階層に展開されます。
type ErrorBody map[string]any

// ErrorResponse はプロキシが返す全エラーの共通形式です。
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// LivenessResponse は ?test=1 の応答です。
type LivenessResponse struct {
	OK        bool   `json:"ok"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// EnvCheckResponse は /api/env-check の応答です。キーの値そのものは含めません。
type EnvCheckResponse struct {
	OK      bool               `json:"ok"`
	Message string             `json:"message"`
	Present map[string]bool    `json:"present"`
	Sample  map[string]*string `json:"sample"`
}
