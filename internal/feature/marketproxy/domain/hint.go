package domain

import (
	"regexp"
	"strings"
)

var (
	accessKeyPattern = regexp.MustCompile(`access[_ ]key`)
	quotaPattern     = regexp.MustCompile(`usage|limit|quota`)
)

// HintFromError は上流のエラーボディ {error:{code,message}} から運用向けのヒントを返します。
// 該当しなければ空文字を返します。
func HintFromError(body any) string {
	code, msg := ErrorFields(body)
	msg = strings.ToLower(msg)

	switch {
	case code == "missing_access_key" || accessKeyPattern.MatchString(msg):
		return "Set MARKETSTACK_KEY in the server environment."
	case code == "function_access_restricted":
		return "Plan does not include intraday. Use eod or upgrade."
	case code == "invalid_api_function":
		return "Check endpoint. Example: eod/latest or intraday/latest."
	case quotaPattern.MatchString(msg):
		return "Monthly request limit may be reached."
	}
	return ""
}

// ErrorFields は {error:{code,message}} からcodeとmessageを取り出します。
func ErrorFields(body any) (code, message string) {
	obj, ok := body.(map[string]any)
	if !ok {
		return "", ""
	}
	e, ok := obj["error"].(map[string]any)
	if !ok {
		return "", ""
	}
	code, _ = e["code"].(string)
	message, _ = e["message"].(string)
	return code, message
}
