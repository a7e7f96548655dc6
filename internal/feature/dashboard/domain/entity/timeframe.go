package entity

// Timeframe はチャートの表示期間を表すタグです。
type Timeframe string

const (
	Timeframe1D Timeframe = "1D"
	Timeframe1W Timeframe = "1W"
	Timeframe1M Timeframe = "1M"
	Timeframe3M Timeframe = "3M"
	Timeframe6M Timeframe = "6M"
	Timeframe1Y Timeframe = "1Y"
)

// DefaultEODLimit は未知のタグに対するeodの取得件数です。
const DefaultEODLimit = 30

var eodLimits = map[Timeframe]int{
	Timeframe1W: 7,
	Timeframe1M: 30,
	Timeframe3M: 90,
	Timeframe6M: 180,
	Timeframe1Y: 365,
}

// Timeframes は画面に並べる順序で全タグを返します。
func Timeframes() []Timeframe {
	return []Timeframe{Timeframe1D, Timeframe1W, Timeframe1M, Timeframe3M, Timeframe6M, Timeframe1Y}
}

// IsIntraday は1日足（intraday取得）かどうかを返します。
func (t Timeframe) IsIntraday() bool {
	return t == Timeframe1D
}

// EODLimit はeod取得時のlimitを返します。
func (t Timeframe) EODLimit() int {
	if n, ok := eodLimits[t]; ok {
		return n
	}
	return DefaultEODLimit
}
