package logger

import "testing"

func TestSanitizedIdentifier(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		want       string
	}{
		{"email", "user@example.com", "u***@*******.com"},
		{"single char local part", "u@example.com", "u@*******.com"},
		{"subdomain", "user@mail.example.com", "u***@****.*******.com"},
		{"malformed email", "a@b@c", "[invalid-email]"},
		{"username", "administrator", "a***********r"},
		{"short username", "ab", "**"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizedIdentifier(tt.identifier); got != tt.want {
				t.Errorf("SanitizedIdentifier(%q) = %q, want %q", tt.identifier, got, tt.want)
			}
		})
	}
}

func TestSanitizeQueryString(t *testing.T) {
	tests := []struct {
		name     string
		rawQuery string
		want     bool
	}{
		{"password param", "password=hunter2", true},
		{"token param", "access_token=abc", true},
		{"mixed case", "Token=abc", true},
		{"email param", "email=user@example.com", true},
		{"plain filters", "brand=Toyota&min_price=1000", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeQueryString(tt.rawQuery); got != tt.want {
				t.Errorf("SanitizeQueryString(%q) = %v, want %v", tt.rawQuery, got, tt.want)
			}
		})
	}
}
