// Package usecase はダッシュボードの株価・チャート取得ロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"stock_dashboard/internal/feature/dashboard/domain/entity"
)

const (
	// IntradayLimit は1日足で取得するintradayの件数です。
	IntradayLimit = 48
	// IntradayFallbackLimit はintraday失敗時にeodで取得する件数です。
	IntradayFallbackLimit = 30
)

// ErrNoQuote はintraday・eodのどちらからもレコードが得られなかった場合に返されます。
var ErrNoQuote = errors.New("no quote found")

// Fetcher はプロキシ経由でMarketstackのリソースを取得します。
// 戻り値はデコード済みのJSONです。エラーレスポンスはerrorとして返します。
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string, params url.Values) (any, error)
}

// LoadResult は銘柄1回分の読み込み結果です。副作用を持たないため tea.Cmd の中でも生成できます。
type LoadResult struct {
	Symbol    string
	Exchange  string
	Timeframe entity.Timeframe
	// Quote は取得できた場合のみ設定されます。系列取得が失敗しても保持されます。
	Quote  entity.Record
	Series []entity.Record
	// Message は画面に表示するエラーメッセージです。成功時は空です。
	Message string
	Err     error
}

// MarketUsecase はquoteと履歴データの取得を行います。
type MarketUsecase struct {
	fetcher      Fetcher
	now          func() time.Time
	fetchTimeout time.Duration
}

// NewMarketUsecase はMarketUsecaseの新しいインスタンスを生成します。
func NewMarketUsecase(fetcher Fetcher) *MarketUsecase {
	return &MarketUsecase{fetcher: fetcher, now: time.Now}
}

// WithClock は現在時刻の取得関数を差し替えます（テスト用）。
func (u *MarketUsecase) WithClock(now func() time.Time) *MarketUsecase {
	u.now = now
	return u
}

// WithFetchTimeout はプロキシ呼び出し1回ごとの上限を設定します。
// Load は最大4回呼び出すため、読み込み全体ではなく呼び出し単位で打ち切ります。0 なら上限なしです。
func (u *MarketUsecase) WithFetchTimeout(d time.Duration) *MarketUsecase {
	u.fetchTimeout = d
	return u
}

func (u *MarketUsecase) fetch(ctx context.Context, endpoint string, params url.Values) (any, error) {
	if u.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.fetchTimeout)
		defer cancel()
	}
	return u.fetcher.Fetch(ctx, endpoint, params)
}

func symbolParams(symbol, exchange string) url.Values {
	p := url.Values{"symbols": {symbol}}
	if exchange != "" {
		p.Set("exchange", exchange)
	}
	return p
}

// GetQuote はintraday/latestを試し、失敗またはレコード無しならeod/latestから先頭レコードを返します。
// eod/latestのエラーはそのまま返します。どちらも空なら nil, nil です。
func (u *MarketUsecase) GetQuote(ctx context.Context, symbol, exchange string) (entity.Record, error) {
	params := symbolParams(symbol, exchange)

	var q entity.Record
	intra, err := u.fetch(ctx, "intraday/latest", params)
	if err != nil {
		slog.Info("intraday quote failed, falling back to eod", "symbol", symbol, "error", err)
	} else {
		q = FirstRecord(intra)
	}
	if q != nil {
		return q, nil
	}

	eod, err := u.fetch(ctx, "eod/latest", params)
	if err != nil {
		return nil, err
	}
	return FirstRecord(eod), nil
}

// GetIntradayData は当日（UTC）のintradayを取得し、失敗した場合はeodを30件取得します。
func (u *MarketUsecase) GetIntradayData(ctx context.Context, symbol string, limit int) ([]entity.Record, error) {
	today := u.now().UTC().Format("2006-01-02")
	r, err := u.fetch(ctx, "intraday", url.Values{
		"symbols":   {symbol},
		"date_from": {today},
		"limit":     {strconv.Itoa(limit)},
	})
	if err == nil {
		return Records(r), nil
	}
	slog.Info("intraday series failed, falling back to eod", "symbol", symbol, "error", err)

	r, err = u.fetch(ctx, "eod", url.Values{
		"symbols": {symbol},
		"limit":   {strconv.Itoa(IntradayFallbackLimit)},
	})
	if err != nil {
		return nil, err
	}
	return Records(r), nil
}

// GetHistoricalData は表示期間に応じた系列を取得します。1Dはintraday、それ以外はeodです。
func (u *MarketUsecase) GetHistoricalData(ctx context.Context, symbol string, tf entity.Timeframe) ([]entity.Record, error) {
	if tf.IsIntraday() {
		return u.GetIntradayData(ctx, symbol, IntradayLimit)
	}
	r, err := u.fetch(ctx, "eod", url.Values{
		"symbols": {symbol},
		"limit":   {strconv.Itoa(tf.EODLimit())},
	})
	if err != nil {
		return nil, err
	}
	return Records(r), nil
}

// Load はquoteと系列をまとめて取得します。
// quoteが取れなければ MsgLoadFailed、系列が空なら MsgNoChartData を設定します。
func (u *MarketUsecase) Load(ctx context.Context, symbol, exchange string, tf entity.Timeframe) LoadResult {
	res := LoadResult{Symbol: symbol, Exchange: exchange, Timeframe: tf}

	q, err := u.GetQuote(ctx, symbol, exchange)
	if err == nil && q == nil {
		err = ErrNoQuote
	}
	if err != nil {
		slog.Warn("load data failed", "symbol", symbol, "timeframe", tf, "error", err)
		res.Err, res.Message = err, entity.MsgLoadFailed
		return res
	}
	res.Quote = q

	series, err := u.GetHistoricalData(ctx, symbol, tf)
	if err != nil {
		slog.Warn("load data failed", "symbol", symbol, "timeframe", tf, "error", err)
		res.Err, res.Message = err, entity.MsgLoadFailed
		return res
	}
	if len(series) == 0 {
		res.Message = entity.MsgNoChartData
		return res
	}
	res.Series = series
	return res
}
