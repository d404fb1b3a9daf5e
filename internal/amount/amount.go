package amount

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var numericInput = regexp.MustCompile(`^[0-9]*\.?[0-9]*$`)

// ParseError reports user text that cannot become an exact amount.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse amount %q: %s", e.Input, e.Reason)
}

// Parse converts decimal text into base units for an asset with the given decimals.
// Empty text is absent and returns nil without error.
func Parse(text string, decimals uint8) (*big.Int, error) {
	text = strings.TrimSpace(text)
	if text == "" || text == "." {
		return nil, nil
	}
	if !numericInput.MatchString(text) {
		return nil, &ParseError{Input: text, Reason: "not a non-negative decimal number"}
	}

	whole, frac, _ := strings.Cut(text, ".")
	if len(strings.TrimRight(frac, "0")) > int(decimals) {
		return nil, &ParseError{Input: text, Reason: fmt.Sprintf("more than %d decimal places", decimals)}
	}
	if whole == "" {
		whole = "0"
	}

	value, err := decimal.NewFromString(whole + "." + frac + "0")
	if err != nil {
		return nil, &ParseError{Input: text, Reason: err.Error()}
	}
	return value.Shift(int32(decimals)).BigInt(), nil
}

// FormatSignificant renders base units with at most sig significant digits,
// rounding half up and trimming trailing zeros.
func FormatSignificant(raw *big.Int, decimals uint8, sig int) string {
	if raw == nil {
		return ""
	}
	if sig <= 0 {
		sig = 1
	}
	value := decimal.NewFromBigInt(raw, -int32(decimals))
	if value.IsZero() {
		return "0"
	}

	digits := len(new(big.Int).Abs(value.Coefficient()).String())
	magnitude := int32(digits) + value.Exponent() - 1
	return value.Round(int32(sig) - 1 - magnitude).String()
}

// FormatExact renders base units without rounding.
func FormatExact(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return ""
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).String()
}
