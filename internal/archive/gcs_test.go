package archive

import (
	"regexp"
	"testing"
	"time"
)

func TestObjectName(t *testing.T) {
	now := time.Date(2025, 3, 9, 14, 30, 0, 0, time.UTC)

	name := objectName(now, "image/png")
	pattern := `^invoices/2025/03/09/[0-9a-f-]{36}\.png$`
	if !regexp.MustCompile(pattern).MatchString(name) {
		t.Errorf("objectName = %q, want match for %s", name, pattern)
	}

	if a, b := objectName(now, "image/png"), objectName(now, "image/png"); a == b {
		t.Error("objectName should be unique per call")
	}
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{"image/jpeg", ".jpg"},
		{"image/png", ".png"},
		{"image/webp", ".webp"},
		{"image/gif", ".gif"},
		{"application/octet-stream", ".bin"},
		{"", ".bin"},
	}

	for _, tt := range tests {
		if got := extensionFor(tt.mime); got != tt.want {
			t.Errorf("extensionFor(%q) = %q, want %q", tt.mime, got, tt.want)
		}
	}
}
