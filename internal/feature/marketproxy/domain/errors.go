// Package domain はmarketproxyフィーチャーのエラー種別と上流レスポンスを定義します。
package domain

import (
	"fmt"
	"net/http"
)

// ErrorKind はプロキシが返すエラーの分類です。
type ErrorKind string

const (
	KindMethodNotAllowed ErrorKind = "method_not_allowed"
	KindInvalidEndpoint  ErrorKind = "invalid_endpoint"
	KindMissingAccessKey ErrorKind = "missing_access_key"
	KindUpstream         ErrorKind = "upstream_error"
	KindUpstreamTimeout  ErrorKind = "upstream_timeout"
	KindFallbackFailed   ErrorKind = "fallback_failed"
	KindUnhandled        ErrorKind = "unhandled_server_error"
)

// ProxyError は呼び出し元へ {error:{message, request_id, ...extra}} として返すエラーです。
type ProxyError struct {
	Kind    ErrorKind
	Status  int
	Message string
	// Extra はエラーオブジェクトに追加で展開されるフィールドです。
	Extra map[string]any
	Err   error
}

func (e *ProxyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%d): %s: %v", e.Kind, e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
}

func (e *ProxyError) Unwrap() error { return e.Err }

// Is はKindが一致すれば同じエラーとみなします。errors.Is(err, domain.ErrInvalidEndpoint) のように使います。
func (e *ProxyError) Is(target error) bool {
	t, ok := target.(*ProxyError)
	return ok && t.Kind == e.Kind
}

var (
	// ErrMethodNotAllowed はGET以外のメソッドで呼ばれた場合に返されます。
	ErrMethodNotAllowed = &ProxyError{Kind: KindMethodNotAllowed, Status: http.StatusMethodNotAllowed, Message: "Method not allowed. Use GET."}

	// ErrInvalidEndpoint はendpointが空、または許可されない文字を含む場合に返されます。
	ErrInvalidEndpoint = &ProxyError{Kind: KindInvalidEndpoint, Status: http.StatusBadRequest, Message: "Invalid endpoint."}

	// ErrMissingAccessKey はアクセスキーが環境に設定されていない場合に返されます。
	ErrMissingAccessKey = &ProxyError{Kind: KindMissingAccessKey, Status: http.StatusInternalServerError, Message: "Missing MARKETSTACK_KEY environment variable."}
)

// NewUpstreamError は上流が成功以外のステータスを返した場合のエラーを生成します。
func NewUpstreamError(status int, endpoint string, body any) *ProxyError {
	extra := map[string]any{
		"endpoint":        endpoint,
		"upstream_status": status,
		"upstream_error":  body,
	}
	if hint := HintFromError(body); hint != "" {
		extra["hint"] = hint
	}
	return &ProxyError{Kind: KindUpstream, Status: status, Message: "Upstream API error.", Extra: extra}
}

// NewFallbackError はeod/latestへのフォールバックも失敗した場合のエラーを生成します。
func NewFallbackError(status int, endpoint string, body any) *ProxyError {
	return &ProxyError{
		Kind:    KindFallbackFailed,
		Status:  status,
		Message: "Fallback to eod/latest also failed.",
		Extra:   map[string]any{"endpoint": endpoint, "fb_error": body},
	}
}

// NewTimeoutError は上流呼び出しがタイムアウトで打ち切られた場合のエラーを生成します。
func NewTimeoutError(err error) *ProxyError {
	return &ProxyError{
		Kind:    KindUpstreamTimeout,
		Status:  http.StatusGatewayTimeout,
		Message: "Upstream request timed out.",
		Extra:   map[string]any{"detail": err.Error()},
		Err:     err,
	}
}

// NewUnhandledError はそれ以外の想定外の失敗をラップします。
func NewUnhandledError(err error) *ProxyError {
	return &ProxyError{
		Kind:    KindUnhandled,
		Status:  http.StatusInternalServerError,
		Message: "Unhandled server error.",
		Extra:   map[string]any{"detail": err.Error()},
		Err:     err,
	}
}
