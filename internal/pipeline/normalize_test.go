package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"+61412345678", "+61412345678"},
		{"61412345678", "+61412345678"},
		{"0412345678", "+61412345678"},
		{"412345678", "+61412345678"},
		{"0412 345 678", "+61412345678"},
		{"+61 412 345 678", "+61412345678"},
		{"(04) 1234-5678", "+61412345678"},
		{"0312345678", ""},   // landline prefix
		{"12345", ""},        // too short
		{"+14155552671", ""}, // not AU
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePhone(tt.raw), "raw %q", tt.raw)
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jo@example.com", NormalizeEmail("  Jo@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestEmailDomain(t *testing.T) {
	assert.Equal(t, "cars24.com", EmailDomain("Tester@Cars24.com"))
	assert.Equal(t, "", EmailDomain("no-at-sign"))
}
