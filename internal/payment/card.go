package payment

import (
	"regexp"
	"strings"
)

// CardInfo is the card data submitted with a checkout. It is never stored and
// only MaskCard output of it may be logged.
type CardInfo struct {
	CardNumber     string `json:"cardNumber"`
	ExpirationDate string `json:"expirationDate"`
	CVV            string `json:"cvv"`
}

// ValidationError reports a card field that failed local checks.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	nonDigit     = regexp.MustCompile(`\D`)
	expiryFormat = regexp.MustCompile(`^\d{2}/(\d{2}|\d{4})$`)
	cvvFormat    = regexp.MustCompile(`^\d{3,4}$`)
)

// CleanCardNumber strips everything but digits.
func CleanCardNumber(number string) string {
	return nonDigit.ReplaceAllString(number, "")
}

// ValidateCard runs the checks that must pass before the gateway is called
// and returns the digits-only card number.
func ValidateCard(card CardInfo) (string, error) {
	number := CleanCardNumber(card.CardNumber)
	if len(number) < 13 || len(number) > 19 {
		return "", &ValidationError{
			Field:   "cardNumber",
			Message: "Invalid card number length. Please enter a valid card number.",
		}
	}
	if !LuhnValid(number) {
		return "", &ValidationError{
			Field:   "cardNumber",
			Message: "Invalid card number. Please check and try again.",
		}
	}
	if !expiryFormat.MatchString(card.ExpirationDate) {
		return "", &ValidationError{
			Field:   "expirationDate",
			Message: "Invalid expiration date format. Please use MM/YY or MM/YYYY format.",
		}
	}
	if !cvvFormat.MatchString(card.CVV) {
		return "", &ValidationError{
			Field:   "cvv",
			Message: "Invalid CVV. Please enter a 3 or 4 digit security code.",
		}
	}
	return number, nil
}

// LuhnValid applies the mod-10 checksum to a digits-only string.
func LuhnValid(digits string) bool {
	if digits == "" {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// MaskCard keeps the first and last four digits.
func MaskCard(number string) string {
	digits := CleanCardNumber(number)
	if len(digits) < 8 {
		return strings.Repeat("*", 4)
	}
	return digits[:4] + "****" + digits[len(digits)-4:]
}
