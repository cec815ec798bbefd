// Copyright (c) 2026 Lantern. All rights reserved.
// Author: dahyun.kim.dev@gmail.com

// Package validate implements the credential validator: a chainable Validator
// that classifies login and registration input and collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// Rules are pure functions over strings — no I/O, no side effects — so the
// same validator runs in HTTP handlers and inside the client-side session
// controller. Failures carry symbolic codes (see the Code constants), never
// display strings; presentation is the caller's job.
package validate

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kimdahyun/lantern/internal/platform/apperr"
)

// # Symbolic Error Codes

const (
	CodeRequired         = "required"
	CodeInvalidEmail     = "invalid-email"
	CodeInvalidPhone     = "invalid-phone"
	CodeMinLength        = "min-length"
	CodeMaxLength        = "max-length"
	CodePasswordMismatch = "password-mismatch"
	CodeWeakPassword     = "weak-password"
)

// # Password Policy

const (
	// PasswordMinLen is the minimum accepted password length.
	PasswordMinLen = 8
	// PasswordMaxLen is the maximum accepted password length.
	PasswordMaxLen = 128
	// PasswordSymbols is the fixed symbol set the strict policy requires one of.
	PasswordSymbols = "@$!%*?&"
)

var (
	// emailRegex requires a local part, "@", and a dotted domain.
	emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

	// phoneRegex matches mobile numbers: "01" prefix plus carrier digit,
	// optional dash, 3-4 digits, optional dash, 4 digits.
	phoneRegex = regexp.MustCompile(`^01[0-9]-?[0-9]{3,4}-?[0-9]{4}$`)

	// ErrInvalidJSON is returned when a request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation. The rule functions themselves are stateless
// and safe to call repeatedly and concurrently.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails with "required" if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, CodeRequired)
	}
	return v
}

// Email fails with "invalid-email" unless the value has a local part, an "@",
// and a dotted domain.
func (v *Validator) Email(field, value string) *Validator {
	if !IsEmail(value) {
		v.add(field, CodeInvalidEmail)
	}
	return v
}

// Phone fails with "invalid-phone" unless the value matches the mobile
// number pattern (01X, optional dashes).
func (v *Validator) Phone(field, value string) *Validator {
	if !IsPhone(value) {
		v.add(field, CodeInvalidPhone)
	}
	return v
}

// EmailOrPhone fails with "invalid-email" unless the value is a valid email
// address or a valid phone number.
//
// The email code is reported for the combined field, matching the login
// form's single identifier input.
func (v *Validator) EmailOrPhone(field, value string) *Validator {
	if !IsEmail(value) && !IsPhone(value) {
		v.add(field, CodeInvalidEmail)
	}
	return v
}

// Password enforces the base policy: length in [PasswordMinLen, PasswordMaxLen].
// Too short fails with "min-length", too long with "max-length".
func (v *Validator) Password(field, value string) *Validator {
	length := utf8.RuneCountInString(value)
	switch {
	case length < PasswordMinLen:
		v.add(field, CodeMinLength)
	case length > PasswordMaxLen:
		v.add(field, CodeMaxLength)
	}
	return v
}

// StrongPassword enforces the base policy plus the strict character rules:
// at least one lowercase letter, one uppercase letter, one digit, and one
// symbol from [PasswordSymbols]. Character-rule failures report "weak-password".
func (v *Validator) StrongPassword(field, value string) *Validator {
	before := len(v.errs)
	v.Password(field, value)
	if len(v.errs) > before {
		// Length already failed; don't pile a weak-password code on top.
		return v
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range value {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(PasswordSymbols, r):
			hasSymbol = true
		}
	}

	if !hasLower || !hasUpper || !hasDigit || !hasSymbol {
		v.add(field, CodeWeakPassword)
	}
	return v
}

// Match fails with "password-mismatch" if the confirmation does not equal
// the original value.
func (v *Validator) Match(field, value, confirmation string) *Validator {
	if value != confirmation {
		v.add(field, CodePasswordMismatch)
	}
	return v
}

// True fails with "required" if the flag is false. Used for must-accept
// checkboxes such as terms agreement.
func (v *Validator) True(field string, value bool) *Validator {
	if !value {
		v.add(field, CodeRequired)
	}
	return v
}

// MinLen fails with "min-length" if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, CodeMinLength)
	}
	return v
}

// MaxLen fails with "max-length" if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, CodeMaxLength)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method — call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// Errors returns the collected field errors. The slice is nil when the
// chain passed.
func (v *Validator) Errors() []apperr.FieldError {
	return v.errs
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, code string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Code: code})
}

// # Classification Helpers

// IsEmail reports whether the value is a plausible email address.
func IsEmail(value string) bool {
	return emailRegex.MatchString(value)
}

// IsPhone reports whether the value matches the mobile number pattern.
func IsPhone(value string) bool {
	return phoneRegex.MatchString(value)
}
