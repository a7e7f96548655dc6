// Package entity はdashboardフィーチャーのエンティティを定義します。
package entity

// Record はプロバイダーが返す1件分のレコード（quote・intraday・eod）です。
// 値はデコードしたJSONのまま保持し、数値は json.Number です。
type Record map[string]any

// Value はキーに対応する値を返します。キーが無い、または null の場合は nil です。
func (r Record) Value(key string) any {
	if r == nil {
		return nil
	}
	return r[key]
}

// Coalesce は最初に nil でない値を返します（JavaScriptの ?? 相当）。
func (r Record) Coalesce(keys ...string) any {
	for _, k := range keys {
		if v := r.Value(k); v != nil {
			return v
		}
	}
	return nil
}
