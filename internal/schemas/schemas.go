package schemas

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// UserCreate is the registration payload. The plaintext password lives
// only for the duration of the call and is never persisted as-is.
type UserCreate struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

// UserReturn is the outward shape of a registered user. It deliberately
// has no password or hash field.
type UserReturn struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Token is the login response body.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// CurrencyRequest is the conversion query: three-letter uppercase codes
// and a strictly positive amount (defaulting to 1 when omitted).
type CurrencyRequest struct {
	Currency1 string  `json:"currency_1" query:"currency_1" validate:"required,len=3,alpha,uppercase"`
	Currency2 string  `json:"currency_2" query:"currency_2" validate:"required,len=3,alpha,uppercase"`
	Amount    float64 `json:"amount" query:"amount" validate:"required,gt=0"`
}

// CurrencyResponse echoes the request plus the provider's result.
type CurrencyResponse struct {
	Currency1 string  `json:"currency_1" validate:"required,len=3,alpha,uppercase"`
	Currency2 string  `json:"currency_2" validate:"required,len=3,alpha,uppercase"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Result    float64 `json:"result" validate:"required,gt=0"`
}

// CurrencyAll maps three-letter currency codes to display names.
type CurrencyAll struct {
	Currencies map[string]string `json:"currencies" validate:"required,min=1,dive,keys,len=3,alpha,uppercase,endkeys,required"`
}

const passwordSpecials = "!@$%*?&"

// validatePassword enforces the complexity policy: minimum length 8, at
// least one uppercase, lowercase, digit and special from
// passwordSpecials, and no character outside the allowed set.
func validatePassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if len(password) < 8 {
		return false
	}
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, r):
			hasSpecial = true
		default:
			return false
		}
	}
	return hasUpper && hasLower && hasDigit && hasSpecial
}

// NewValidator returns a validator with the custom password rule
// registered. Handlers and services share this constructor so the rule
// set stays identical everywhere.
func NewValidator() *validator.Validate {
	validate := validator.New()
	// RegisterValidation only fails on an empty tag name.
	_ = validate.RegisterValidation("password", validatePassword)
	return validate
}
