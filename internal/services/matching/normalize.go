package matching

import (
	"regexp"
	"strings"
	"unicode"

	"agence/internal/domain"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Маркеры ищутся подстрокой в уже очищенном тексте.
	rentMarkers = []string{"louer", "location", "rent"}
	saleMarkers = []string{"vendre", "vente", "achat", "sell", "sale"}

	separators = regexp.MustCompile(`[_-]+`)
)

// NormalizeType приводит тип сделки из объявления или заявки к каноническому токену
// (a_louer / a_vendre). Нераспознанный текст возвращается очищенным: без диакритики,
// в нижнем регистре, с одиночными пробелами. Пустой ввод даёт TransactionUnknown.
//
// Результат предназначен только для сравнения на равенство.
func NormalizeType(raw string) domain.TransactionType {
	if raw == "" {
		return domain.TransactionUnknown
	}
	if t := domain.TransactionType(raw); t.IsCanonical() {
		return t
	}

	s := strings.ToLower(stripDiacritics(raw))
	s = separators.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")

	switch {
	case containsAny(s, rentMarkers):
		return domain.TransactionRent
	case containsAny(s, saleMarkers):
		return domain.TransactionSale
	}

	return domain.TransactionType(s)
}

// stripDiacritics убирает combining-символы после NFD: "À louer" → "A louer".
func stripDiacritics(s string) string {
	// transform.Chain хранит состояние, поэтому собирается на каждый вызов.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
