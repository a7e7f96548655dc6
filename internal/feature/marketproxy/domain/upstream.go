package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"
)

// MaxBodyBytes はバッファするレスポンスボディの上限です。
const MaxBodyBytes int64 = 8 << 20

// ErrBodyTooLarge はボディが上限を超えた場合に返されます。途中で切ったボディは返しません。
var ErrBodyTooLarge = errors.New("response body too large")

// ReadBody は最大 limit バイトを読み込みます。limit を超える場合は ErrBodyTooLarge です。
func ReadBody(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: over %d bytes", ErrBodyTooLarge, limit)
	}
	return body, nil
}

// UpstreamResponse は上流プロバイダーから受け取った生のレスポンスです。
type UpstreamResponse struct {
	Status int
	Body   []byte
}

// OK はステータスが2xxかどうかを返します。
func (r *UpstreamResponse) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Payload はボディをJSONとして解釈した値を返します。
// JSONでなければボディ文字列をそのまま返します。数値はjson.Numberのまま保持します。
func (r *UpstreamResponse) Payload() any {
	v, err := DecodeJSON(r.Body)
	if err != nil {
		return string(r.Body)
	}
	return v
}

// ErrorCode は {error:{code}} のcodeを返します。
func (r *UpstreamResponse) ErrorCode() string {
	code, _ := ErrorFields(r.Payload())
	return code
}

// DecodeJSON は1つのJSON値をjson.Number付きでデコードします。後続データがあればエラーです。
func DecodeJSON(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}

// RequestContext は1リクエスト分のプロキシ処理の文脈です。レスポンス後に破棄されます。
type RequestContext struct {
	RequestID string
	Endpoint  string
	// Params はendpoint・autoFallback・noCacheを除いた転送パラメータです。
	Params    url.Values
	AccessKey string
	Debug     bool
	StartedAt time.Time
}

// UpstreamParams はaccess_keyを注入した転送パラメータのコピーを返します。
func (rc *RequestContext) UpstreamParams() url.Values {
	out := make(url.Values, len(rc.Params)+1)
	for k, vs := range rc.Params {
		out[k] = append([]string(nil), vs...)
	}
	out.Set("access_key", rc.AccessKey)
	return out
}
