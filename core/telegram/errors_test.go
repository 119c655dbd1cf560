package telegram

import (
	"errors"
	"fmt"
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestAPIStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "plain error", err: errors.New("boom"), want: 0},
		{name: "api error", err: &tele.Error{Code: 400, Description: "Bad Request"}, want: 400},
		{name: "forbidden", err: &tele.Error{Code: 403, Description: "Forbidden"}, want: 403},
		{name: "wrapped api error", err: fmt.Errorf("send: %w", &tele.Error{Code: 400}), want: 400},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := APIStatus(tc.err); got != tc.want {
				t.Fatalf("APIStatus(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestRedactToken(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot123456:AAH-secret_value/sendMessage": timeout`)
	got := RedactToken(err)
	if got != `Post "https://api.telegram.org/bot<redacted>/sendMessage": timeout` {
		t.Fatalf("token not redacted: %s", got)
	}
}

func TestRedactTokenPassthrough(t *testing.T) {
	if got := RedactToken(errors.New("plain failure")); got != "plain failure" {
		t.Fatalf("unexpected rewrite: %s", got)
	}
	if got := RedactToken(nil); got != "" {
		t.Fatalf("nil error should redact to empty, got %q", got)
	}
}
