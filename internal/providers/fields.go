package providers

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"strconv"

	"github.com/cassiomorais/paygate/internal/domain/payment"
	"github.com/shopspring/decimal"
)

// Gateway payloads are decoded into loose maps. These helpers read them
// without panicking on missing or oddly typed values.

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringField(m, k); s != "" {
			return s
		}
	}
	return ""
}

func int64Field(m map[string]any, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(math.Round(v))
	case int:
		return int64(v)
	case int64:
		return v
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return int64(math.Round(f))
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

func decimalField(m map[string]any, key string) decimal.Decimal {
	switch v := m[key].(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case json.Number:
		if d, err := decimal.NewFromString(v.String()); err == nil {
			return d
		}
	case string:
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return decimal.Zero
}

func mapField(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

func objects(items []any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func passthrough(m map[string]any) payment.Fields {
	return payment.Fields(maps.Clone(m))
}

// majorAmount renders minor units as a JSON number in the major unit.
func majorAmount(amount int64, currency string) json.Number {
	return json.Number(payment.ToMajorUnits(amount, currency).String())
}

func metadataString(meta map[string]any, key string) string {
	s, _ := meta[key].(string)
	return s
}

// keep applies the canonical status filter shared by every listing.
func keep(result *payment.ChargeResult, filter *payment.ListPaymentsFilter) bool {
	return filter == nil || filter.Status == "" || result.Status == filter.Status
}
