package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// Todo valor monetario do ledger e int64 em centavos. Nunca float.

// FormatReal renders centavos as "R$ 1.234,56".
func FormatReal(centavos int64) string {
	sign := ""
	if centavos < 0 {
		sign = "-"
		centavos = -centavos
	}
	reais := centavos / 100
	cents := centavos % 100
	return fmt.Sprintf("%sR$ %s,%02d", sign, formatThousand(reais), cents)
}

// ParseRealToCents parses "R$ 1.234,56", "1234,56" or plain "1234" (reais inteiros).
func ParseRealToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.ToLower(s), "r$")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, fmt.Errorf("valor monetario invalido")
	}

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole := s
	cents := int64(0)
	if i := strings.IndexByte(s, ','); i >= 0 {
		whole = s[:i]
		frac := s[i+1:]
		if len(frac) > 2 {
			return 0, fmt.Errorf("valor monetario invalido: %q", s)
		}
		for len(frac) < 2 {
			frac += "0"
		}
		c, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("valor monetario invalido: %q", s)
		}
		cents = c
	}
	if whole == "" {
		whole = "0"
	}
	reais, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("valor monetario invalido: %q", s)
	}
	total := reais*100 + cents
	if neg {
		total = -total
	}
	return total, nil
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte('.')
		}
		out.WriteRune(c)
	}
	return out.String()
}
