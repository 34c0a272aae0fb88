package utils

import (
	"strings"
	"testing"
	"time"
)

func TestDecorateText(t *testing.T) {
	s := DecorateText("hello", ErrorMessage)
	if !strings.HasPrefix(s, ErrorColor) || !strings.HasSuffix(s, DefaultColor) {
		t.Fatalf("unexpected decoration: %q", s)
	}
	if DecorateText("plain", MessageType(99)) != "plain" {
		t.Fatal("unknown message type must pass through")
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{1500 * time.Millisecond, "1.50s"},
		{90 * time.Second, "1m 30.00s"},
		{3690 * time.Second, "1h 1m 30.00s"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.d); got != tt.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
