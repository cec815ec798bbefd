// Copyright (c) 2026 Lantern. All rights reserved.
// Author: dahyun.kim.dev@gmail.com

package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimdahyun/lantern/internal/platform/apperr"
	"github.com/kimdahyun/lantern/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "name", "Lantern", false},
		{"empty_string", "name", "", true},
		{"whitespace_only", "name", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
				assert.Equal(t, validate.CodeRequired, ae.Details[0].Code)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Email checks the email format validation rule.
*/
func TestValidator_Email(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		isValid bool
	}{
		{"valid_email", "test@example.com", true},
		{"valid_subdomain", "user@mail.example.co.kr", true},
		{"invalid_format", "invalid-email", false},
		{"missing_domain", "test@", false},
		{"missing_tld", "test@example", false},
		{"embedded_space", "te st@example.com", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Email("email", tt.email)

			if tt.isValid {
				assert.False(t, v.HasErrors())
			} else {
				assert.True(t, v.HasErrors())
			}
		})
	}
}

/*
TestValidator_Phone checks the mobile number pattern: "01" prefix plus a
carrier digit, optional dashes, and a 3-4 digit middle group.
*/
func TestValidator_Phone(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		isValid bool
	}{
		{"dashed_four_digit_middle", "010-1234-5678", true},
		{"dashed_three_digit_middle", "011-123-4567", true},
		{"undashed", "01012345678", true},
		{"mixed_dashes", "010-12345678", true},
		{"wrong_prefix", "02-1234-5678", false},
		{"too_short", "010-12-3456", false},
		{"too_long", "010-12345-6789", false},
		{"letters", "010-abcd-5678", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Phone("phone", tt.phone)

			if tt.isValid {
				assert.False(t, v.HasErrors())
			} else {
				assert.True(t, v.HasErrors())
				assert.Equal(t, validate.CodeInvalidPhone, v.Errors()[0].Code)
			}
		})
	}
}

/*
TestValidator_EmailOrPhone checks the combined login identifier rule.
*/
func TestValidator_EmailOrPhone(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		isValid    bool
	}{
		{"email", "user@example.com", true},
		{"phone", "010-1234-5678", true},
		{"neither", "not-an-identifier", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.EmailOrPhone("emailOrPhone", tt.identifier)

			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Password checks the length-only password policy boundaries.
*/
func TestValidator_Password(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantCode string
	}{
		{"exact_minimum", strings.Repeat("a", 8), ""},
		{"one_below_minimum", strings.Repeat("a", 7), validate.CodeMinLength},
		{"exact_maximum", strings.Repeat("a", 128), ""},
		{"one_above_maximum", strings.Repeat("a", 129), validate.CodeMaxLength},
		{"empty", "", validate.CodeMinLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Password("password", tt.password)

			if tt.wantCode == "" {
				assert.False(t, v.HasErrors())
			} else {
				require.True(t, v.HasErrors())
				assert.Equal(t, tt.wantCode, v.Errors()[0].Code)
			}
		})
	}
}

/*
TestValidator_StrongPassword checks the strict character-class rules on top
of the base length policy.
*/
func TestValidator_StrongPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantCode string
	}{
		{"all_classes", "Abcdef1!", ""},
		{"symbol_from_set", "Passw0rd@", ""},
		{"no_uppercase", "abcdef1!", validate.CodeWeakPassword},
		{"no_lowercase", "ABCDEF1!", validate.CodeWeakPassword},
		{"no_digit", "Abcdefg!", validate.CodeWeakPassword},
		{"no_symbol", "Abcdefg1", validate.CodeWeakPassword},
		{"symbol_outside_set", "Abcdef1#", validate.CodeWeakPassword},
		{"too_short_reports_length_only", "Ab1!", validate.CodeMinLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.StrongPassword("password", tt.password)

			if tt.wantCode == "" {
				assert.False(t, v.HasErrors())
			} else {
				require.True(t, v.HasErrors())
				// Exactly one code per failure: length failures suppress
				// the weak-password code.
				assert.Len(t, v.Errors(), 1)
				assert.Equal(t, tt.wantCode, v.Errors()[0].Code)
			}
		})
	}
}

/*
TestValidator_Match checks the confirmation rule used for password repeat.
*/
func TestValidator_Match(t *testing.T) {
	v := &validate.Validator{}
	v.Match("confirmPassword", "Secret1!", "Secret1!")
	assert.False(t, v.HasErrors())

	v = &validate.Validator{}
	v.Match("confirmPassword", "Secret1!", "Different1!")
	require.True(t, v.HasErrors())
	assert.Equal(t, validate.CodePasswordMismatch, v.Errors()[0].Code)
}

/*
TestValidator_True checks the must-accept flag rule.
*/
func TestValidator_True(t *testing.T) {
	v := &validate.Validator{}
	v.True("agreeToTerms", true)
	assert.False(t, v.HasErrors())

	v = &validate.Validator{}
	v.True("agreeToTerms", false)
	require.True(t, v.HasErrors())
	assert.Equal(t, validate.CodeRequired, v.Errors()[0].Code)
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	// Multi-rule validation
	err := v.
		Required("name", "dahyun").
		MinLen("name", "dahyun", 2).
		MaxLen("name", "dahyun", 10).
		Email("email", "dahyun@lantern.dev").
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("name", "").           // Fails
		MinLen("name", "a", 5).         // Fails
		Email("email", "not-an-email"). // Fails
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	// Should accumulate all 3 errors
	assert.Len(t, ae.Details, 3)
}
