// Package view はレコードを画面表示用の文字列・数値に変換します。
// ターミナルUIとHTTPハンドラーの両方から使われます。
package view

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"stock_dashboard/internal/feature/dashboard/domain/entity"
)

// Placeholder は値が無い場合に表示する文字です。
const Placeholder = "—"

// QuoteView はquoteパネルに表示する文字列の集合です。
type QuoteView struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Price    string `json:"price"`
	Change   string `json:"change"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Volume   string `json:"volume"`
	YearHigh string `json:"year_high"`
	YearLow  string `json:"year_low"`
}

// RenderQuote はレコードを表示用に変換します。
//   - Price は last, close, open の順で最初に存在する値
//   - Name は name, symbol の順で最初に空でない値
//   - Change は数値なら "<n>%"、それ以外は値そのもの
//
// どれも無ければ Placeholder を使います。
func RenderQuote(q entity.Record) QuoteView {
	return QuoteView{
		Name:     Format(firstTruthy(q.Value("name"), q.Value("symbol"))),
		Symbol:   Format(firstTruthy(q.Value("symbol"))),
		Price:    Format(q.Coalesce("last", "close", "open")),
		Change:   formatChange(q.Value("change_percentage")),
		Open:     Format(q.Value("open")),
		High:     Format(q.Value("high")),
		Low:      Format(q.Value("low")),
		Volume:   Format(q.Value("volume")),
		YearHigh: Format(q.Value("year_high")),
		YearLow:  Format(q.Value("year_low")),
	}
}

func formatChange(v any) string {
	if isNumber(v) {
		return Format(v) + "%"
	}
	return Format(firstTruthy(v))
}

// Format は値を表示用の文字列にします。nil は Placeholder です。
// 数値は FormatNumber の表記にそろえます（150.20 → 150.2、1529200.0 → 1529200）。
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return Placeholder
	case string:
		return x
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return x.String()
		}
		return FormatNumber(f)
	case float64:
		return FormatNumber(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return Placeholder
	}
	return string(b)
}

// FormatNumber は数値をJavaScriptの Number#toString と同じ表記にします。
// 絶対値が 1e21 以上または 1e-6 未満のときは指数表記（1e+21、1.5e-7）です。
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	if abs := math.Abs(f); abs < 1e21 && abs >= 1e-6 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + digits
}

func isNumber(v any) bool {
	switch v.(type) {
	case json.Number, float64, int, int64:
		return true
	}
	return false
}

// truthy は空文字・0・false・nil を偽として扱います。
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case json.Number:
		f, err := x.Float64()
		return err == nil && f != 0 && !math.IsNaN(f)
	case float64:
		return x != 0 && !math.IsNaN(x)
	case int:
		return x != 0
	case int64:
		return x != 0
	}
	return true
}

func firstTruthy(vs ...any) any {
	for _, v := range vs {
		if truthy(v) {
			return v
		}
	}
	return nil
}
