package usecase

import (
	"regexp"
	"strings"

	"stock_dashboard/internal/feature/marketproxy/domain"
)

const (
	// DefaultEndpoint はendpoint未指定時に使うリソースです。
	DefaultEndpoint = "eod/latest"
	// IntradayLatestEndpoint はフォールバック判定の対象リソースです。
	IntradayLatestEndpoint = "intraday/latest"
	// FallbackEndpoint はアクセス制限時の代替リソースです。
	FallbackEndpoint = "eod/latest"
)

var endpointPattern = regexp.MustCompile(`^[A-Za-z0-9_/-]+$`)

// SanitizeEndpoint はendpointパラメータを検証し、上流に渡すリソースパスを返します。
//   - 未指定（空文字）は DefaultEndpoint
//   - 前後の空白と先頭の "/" は取り除く
//   - 英数字・"_"・"/"・"-" 以外を含む、または空になった場合は ErrInvalidEndpoint
func SanitizeEndpoint(raw string) (string, error) {
	if raw == "" {
		return DefaultEndpoint, nil
	}
	ep := strings.TrimLeft(strings.TrimSpace(raw), "/")
	if ep == "" || !endpointPattern.MatchString(ep) {
		return "", domain.ErrInvalidEndpoint
	}
	return ep, nil
}

// isIntradayLatest はendpointが intraday/latest で終わるかを返します。
func isIntradayLatest(endpoint string) bool {
	return strings.HasSuffix(endpoint, IntradayLatestEndpoint)
}
