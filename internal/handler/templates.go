package handler

import (
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/artesania/internal/auth"
	"github.com/dukerupert/artesania/internal/domain"
	"github.com/dukerupert/artesania/internal/orders"
)

// TemplateFuncs returns a FuncMap with custom template functions. Amounts
// are labelled with currency.
func TemplateFuncs(currency string) template.FuncMap {
	f := orders.Formatter{Currency: currency}

	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"year": func() int {
			return time.Now().Year()
		},
		"money": func(d decimal.Decimal) string {
			return f.Amount(domain.Amount{Value: d, State: domain.AmountValid})
		},
		"amount":   f.Amount,
		"percent":  orders.Percent,
		"optional": f.Optional,
		"date":     orders.FormatDate,
		"statusLabel": func(status string) string {
			label, _ := orders.StatusLabel(status)
			return label
		},
		"statusTone": func(status string) string {
			_, tone := orders.StatusLabel(status)
			return string(tone)
		},
		"unitPrice":   orders.UnitPrice,
		"hasDiscount": orders.HasDiscount,
		"present":     orders.Present,
		"strength":    auth.PasswordStrength,
		"dict":        dict,
		"plural": func(n int, one, many string) string {
			if n == 1 {
				return one
			}
			return many
		},
	}
}

// dict builds a map from alternating keys and values so a partial can be
// handed more than one value.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}
