package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResourceName(t *testing.T) {
	// "é" as e + combining acute accent
	decomposed := "Cafe\u0301"
	assert.Equal(t, "Caf\u00e9", NormalizeResourceName("  "+decomposed+" "))

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Docs", false},
		{"unicode", "Résumé 2026.pdf", false},
		{"empty", "", true},
		{"max length", strings.Repeat("ä", 255), false},
		{"too long", strings.Repeat("a", 256), true},
		{"slash", "a/b", true},
		{"control", "a\nb", true},
		{"dot", ".", true},
		{"dot dot", "..", true},
		{"invalid utf-8", "report\xff.pdf", true},
		{"invalid utf-8 after normalizing", NormalizeResourceName(" bad\xc3 "), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResourceName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("Ada Lovelace"))
	assert.Error(t, ValidateName("   "))
	assert.Error(t, ValidateName("Ada\xffLovelace"))
	assert.Error(t, ValidateName(strings.Repeat("a", 101)))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("alice@example.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("Alice <alice@example.com>"))
	assert.Error(t, ValidateEmail(strings.Repeat("a", 250)+"@example.com"))

	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("correct horse battery"))
	assert.Error(t, ValidatePassword("short"))
	assert.Error(t, ValidatePassword("mypassword1234"))
	assert.Error(t, ValidatePassword(strings.Repeat("x", 73)))

	assert.NoError(t, ValidateLinkPassword("1234"))
	assert.Error(t, ValidateLinkPassword("123"))
	assert.Error(t, ValidateLinkPassword(strings.Repeat("x", 73)))
}

func TestUploadPolicy(t *testing.T) {
	policy := UploadPolicy{
		MaxBytes:     10 << 20,
		AllowedTypes: []string{"image/", "application/pdf", "application/vnd.openxmlformats-officedocument"},
	}

	tests := []struct {
		name    string
		size    int64
		mime    string
		wantErr bool
	}{
		{"image", 1024, "image/png", false},
		{"pdf with params", 1024, "application/pdf; charset=binary", false},
		{"docx", 1024, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", false},
		{"at max", 10 << 20, "image/jpeg", false},
		{"zero size", 0, "image/png", true},
		{"negative size", -1, "image/png", true},
		{"too large", 10<<20 + 1, "image/png", true},
		{"not allowed", 1024, "application/x-msdownload", true},
		{"pdf lookalike", 1024, "application/pdfx", true},
		{"garbage mime", 1024, "???", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Validate(tt.size, tt.mime)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
