package usecase

import "stock_dashboard/internal/feature/dashboard/domain/entity"

// FirstRecord はプロキシのレスポンスから先頭レコードを取り出します。
// 判定は次の順で行い、最初に当てはまったものを返します。
//  1. {data:[...]} の形なら data[0]
//  2. 配列そのものなら [0]
//  3. data が null でも配列でもないオブジェクトなら data
//  4. オブジェクトならそれ自体
//
// いずれにも当てはまらない、または取り出した要素がオブジェクトでない場合は nil を返します。
func FirstRecord(payload any) entity.Record {
	switch v := payload.(type) {
	case map[string]any:
		switch d := v["data"].(type) {
		case []any:
			return firstOf(d)
		case map[string]any:
			return entity.Record(d)
		}
		return entity.Record(v)
	case []any:
		return firstOf(v)
	}
	return nil
}

func firstOf(items []any) entity.Record {
	if len(items) == 0 {
		return nil
	}
	if obj, ok := items[0].(map[string]any); ok {
		return entity.Record(obj)
	}
	return nil
}

// Records はレスポンスから系列データを取り出します。{data:[...]} と配列の両方を受け付けます。
// オブジェクトでない要素は空のレコードになります。
func Records(payload any) []entity.Record {
	var items []any
	switch v := payload.(type) {
	case map[string]any:
		d, ok := v["data"].([]any)
		if !ok {
			return nil
		}
		items = d
	case []any:
		items = v
	default:
		return nil
	}

	out := make([]entity.Record, 0, len(items))
	for _, it := range items {
		obj, _ := it.(map[string]any)
		out = append(out, entity.Record(obj))
	}
	return out
}
