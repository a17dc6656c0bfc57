package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := RegisterRequest{
		Username:    "  alice  ",
		Password:    "  pass1234  ",
		DisplayName: " Alice Retail ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "alice", req.Username)
	assert.Equal(t, "pass1234", req.Password)
	assert.Equal(t, "Alice Retail", req.DisplayName)
}

func TestSanitizeStruct_EscapesHTML(t *testing.T) {
	reason := "item <script>alert('x')</script> never arrived"
	req := DisputeRequest{Reason: reason}
	SanitizeStruct(&req)

	assert.Contains(t, req.Reason, "&lt;script&gt;")
	assert.NotContains(t, req.Reason, "<script>")
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	s := "hello"
	SanitizeStruct(s) // should not panic
}

// --- Custom validator tests ---

func TestCurrencyCode_Valid(t *testing.T) {
	cases := []string{
		"NHB",
		"USDC",
		"usdc",
		"Eur2",
	}
	for _, tc := range cases {
		assert.True(t, currencyCodeRe.MatchString(tc), "expected valid: %s", tc)
	}
}

func TestCurrencyCode_Invalid(t *testing.T) {
	cases := []string{
		"N",             // too short
		"1NHB",          // leading digit
		"US DC",         // space
		"US-DC",         // punctuation
		"",              // empty
		"WAYTOOLONGCODE", // over limit
	}
	for _, tc := range cases {
		assert.False(t, currencyCodeRe.MatchString(tc), "expected invalid: %s", tc)
	}
}
