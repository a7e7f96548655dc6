package view

import (
	"encoding/json"
	"strconv"
	"time"

	"stock_dashboard/internal/feature/dashboard/domain/entity"
)

// ChartLabel はデータセットの名前です。
const ChartLabel = "Price"

const (
	timeOfDayLayout = "15:04"
	dateLayout      = "2006-01-02"
)

// dateLayouts はプロバイダーが返しうる日付表記です。
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05",
	dateLayout,
}

// ChartData は折れ線チャート1本分のデータです。
type ChartData struct {
	Label  string    `json:"label"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Len は点の数を返します。
func (d ChartData) Len() int { return len(d.Values) }

// BuildChart は系列をチャートデータに変換します。
// ラベルは1Dなら時刻、それ以外は日付で、値は close, last, open の順で最初に存在するものです（無ければ0）。
func BuildChart(rows []entity.Record, tf entity.Timeframe, loc *time.Location) ChartData {
	if loc == nil {
		loc = time.Local
	}
	layout := dateLayout
	if tf.IsIntraday() {
		layout = timeOfDayLayout
	}

	d := ChartData{
		Label:  ChartLabel,
		Labels: make([]string, 0, len(rows)),
		Values: make([]float64, 0, len(rows)),
	}
	for _, r := range rows {
		d.Labels = append(d.Labels, label(r.Value("date"), layout, loc))
		d.Values = append(d.Values, toFloat(r.Coalesce("close", "last", "open")))
	}
	return d
}

func label(v any, layout string, loc *time.Location) string {
	s, ok := v.(string)
	if !ok {
		return Format(v)
	}
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	return t.In(loc).Format(layout)
}

// ParseDate はプロバイダーの日付文字列を解釈します。
func ParseDate(s string) (time.Time, bool) {
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0
		}
		return f
	case float64:
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}
