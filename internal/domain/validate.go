package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	NameMin      = 20
	NameMax      = 60
	PasswordMin  = 8
	PasswordMax  = 16
	AddressMax   = 400
	StoreNameMax = 255

	PasswordSymbols = `!@#$%^&*(),.?":{}|<>`
)

var emailCheck = validator.New()

func ValidName(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= NameMin && n <= NameMax
}

func ValidEmail(s string) bool { return emailCheck.Var(s, "required,email") == nil }

func ValidAddress(s string) bool { return utf8.RuneCountInString(s) <= AddressMax }

// StrongPassword 8–16 位，至少一个大写字母和一个符号
func StrongPassword(pw string) bool {
	n := utf8.RuneCountInString(pw)
	if n < PasswordMin || n > PasswordMax {
		return false
	}
	var upper, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}
	return upper && symbol
}

const (
	MsgName     = "name must be between 20 and 60 characters"
	MsgEmail    = "please provide a valid email address"
	MsgPassword = "password must be 8-16 characters with at least one uppercase letter and one special character"
	MsgAddress  = "address cannot exceed 400 characters"
	MsgRole     = "invalid role specified"
	MsgRating   = "rating must be an integer between 1 and 5"
)

// ValidateAccount 账号字段校验，返回全部违规项
func ValidateAccount(name, email, password, address string) error {
	var details []string
	if !ValidName(name) {
		details = append(details, MsgName)
	}
	if !ValidEmail(email) {
		details = append(details, MsgEmail)
	}
	if !StrongPassword(password) {
		details = append(details, MsgPassword)
	}
	if !ValidAddress(address) {
		details = append(details, MsgAddress)
	}
	if len(details) > 0 {
		return Validation("validation failed", details...)
	}
	return nil
}
