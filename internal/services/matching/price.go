package matching

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"agence/internal/domain"
)

// ParsePrice приводит цену или бюджет произвольного вида к числу.
//
//   - nil и пустые значения → 0;
//   - числа возвращаются как есть (включая 0 и отрицательные);
//   - строки: убираются все пробелы, запятая становится точкой, остаются только
//     цифры, точка и минус; "1 500,50" → 1500.5;
//   - всё, что не разбирается или не конечно, → 0.
func ParsePrice(v any) float64 {
	switch p := v.(type) {
	case nil:
		return 0
	case domain.Amount:
		return ParsePrice(p.Raw())
	case *domain.Amount:
		if p == nil {
			return 0
		}
		return ParsePrice(p.Raw())
	case float64:
		return finite(p)
	case float32:
		return finite(float64(p))
	case int:
		return float64(p)
	case int8:
		return float64(p)
	case int16:
		return float64(p)
	case int32:
		return float64(p)
	case int64:
		return float64(p)
	case uint:
		return float64(p)
	case uint8:
		return float64(p)
	case uint16:
		return float64(p)
	case uint32:
		return float64(p)
	case uint64:
		return float64(p)
	case json.Number:
		n, err := p.Float64()
		if err != nil {
			return parsePriceString(p.String())
		}
		return finite(n)
	case string:
		return parsePriceString(p)
	case *string:
		if p == nil {
			return 0
		}
		return parsePriceString(*p)
	case *float64:
		if p == nil {
			return 0
		}
		return finite(*p)
	case *int64:
		if p == nil {
			return 0
		}
		return float64(*p)
	default:
		return parsePriceString(fmt.Sprint(p))
	}
}

func parsePriceString(s string) float64 {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
		case r == ',':
			b.WriteByte('.')
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if cleaned == "" {
		return 0
	}

	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return finite(n)
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
