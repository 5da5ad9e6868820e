package docmark

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// number(value, decimals?, locale?) groups digits the way the locale does.
func formatNumber(args ...any) (any, error) {
	if args[0] == nil {
		return nil, nil
	}
	value, err := toNumber(args[0])
	if err != nil {
		return nil, err
	}
	decimals, err := intArg(args, 1, 2)
	if err != nil {
		return nil, err
	}
	tag, err := localeArg(args, 2)
	if err != nil {
		return nil, err
	}
	return message.NewPrinter(tag).Sprint(number.Decimal(value, number.Scale(decimals))), nil
}

// percent(value, decimals?, locale?) treats 0.25 as 25%.
func formatPercent(args ...any) (any, error) {
	if args[0] == nil {
		return nil, nil
	}
	value, err := toNumber(args[0])
	if err != nil {
		return nil, err
	}
	decimals, err := intArg(args, 1, 0)
	if err != nil {
		return nil, err
	}
	tag, err := localeArg(args, 2)
	if err != nil {
		return nil, err
	}
	return message.NewPrinter(tag).Sprint(number.Percent(value, number.Scale(decimals))), nil
}

// currency(value, code?, locale?) prefixes the amount with the currency
// symbol, rounded to the currency's standard number of digits.
func formatCurrency(args ...any) (any, error) {
	if args[0] == nil {
		return nil, nil
	}
	value, err := toNumber(args[0])
	if err != nil {
		return nil, err
	}

	unit := currency.USD
	if len(args) > 1 && args[1] != nil {
		code, ok := args[1].(string)
		if !ok {
			return nil, fmt.Errorf("currency code must be a string, got %T", args[1])
		}
		unit, err = currency.ParseISO(strings.ToUpper(code))
		if err != nil {
			return nil, fmt.Errorf("unknown currency %q: %w", code, err)
		}
	}
	tag, err := localeArg(args, 2)
	if err != nil {
		return nil, err
	}

	p := message.NewPrinter(tag)
	scale, _ := currency.Standard.Rounding(unit)
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}
	return sign + p.Sprint(currency.Symbol(unit)) + p.Sprint(number.Decimal(value, number.Scale(scale))), nil
}

// Common date layouts tried when a date arrives as a string.
var commonDateFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"02.01.2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
}

// date(layout, value) formats a date. The layout is either a Go reference
// layout or a pattern such as "dd.MM.yyyy".
func formatDate(args ...any) (any, error) {
	if args[1] == nil {
		return nil, nil
	}
	layout, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("date layout must be a string, got %T", args[0])
	}
	t, err := parseDate(args[1])
	if err != nil {
		return nil, err
	}
	return t.Format(translateDateFormat(layout)), nil
}

// parseDate attempts to parse a date from various input types
func parseDate(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return time.Time{}, fmt.Errorf("cannot parse nil time pointer")
		}
		return *v, nil
	case int64:
		// Large values are Unix milliseconds.
		if v > 1e10 {
			return time.Unix(v/1000, (v%1000)*1e6).UTC(), nil
		}
		return time.Unix(v, 0).UTC(), nil
	case int:
		return parseDate(int64(v))
	case float64:
		return parseDate(int64(v))
	case string:
		if v == "" {
			return time.Time{}, fmt.Errorf("cannot parse empty string as date")
		}
		for _, format := range commonDateFormats {
			if parsed, err := time.Parse(format, v); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("could not parse date string: %s", v)
	default:
		return time.Time{}, fmt.Errorf("cannot parse %T as date", value)
	}
}

// dateTokens maps pattern letters to Go layout elements, longest first.
var dateTokens = []struct{ pattern, layout string }{
	{"yyyy", "2006"}, {"yy", "06"},
	{"MMMM", "January"}, {"MMM", "Jan"}, {"MM", "01"}, {"M", "1"},
	{"dd", "02"}, {"d", "2"},
	{"EEEE", "Monday"}, {"EEE", "Mon"},
	{"HH", "15"}, {"hh", "03"}, {"h", "3"},
	{"mm", "04"}, {"m", "4"},
	{"ss", "05"}, {"s", "5"},
	{"SSS", "000"},
	{"a", "PM"},
}

// translateDateFormat turns a pattern such as "dd.MM.yyyy HH:mm" into a Go
// layout. Go layouts, recognised by the reference year or month, pass
// through.
func translateDateFormat(pattern string) string {
	for _, ref := range []string{"2006", "Jan", "Mon"} {
		if strings.Contains(pattern, ref) {
			return pattern
		}
	}

	var out strings.Builder
	for i := 0; i < len(pattern); {
		matched := false
		for _, tok := range dateTokens {
			if strings.HasPrefix(pattern[i:], tok.pattern) {
				out.WriteString(tok.layout)
				i += len(tok.pattern)
				matched = true
				break
			}
		}
		if !matched {
			out.WriteByte(pattern[i])
			i++
		}
	}
	return out.String()
}
