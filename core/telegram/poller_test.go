package telegram

import (
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func TestBuildPollerWebhook(t *testing.T) {
	p := BuildPoller(PollerOptions{
		RunMode: "Webhook",
		Webhook: WebhookOptions{Listen: "0.0.0.0", Port: 8443, URL: "https://bot.example.org/hook"},
	})

	wh, ok := p.(*tele.Webhook)
	if !ok {
		t.Fatalf("expected *tele.Webhook, got %T", p)
	}
	if wh.Listen != "0.0.0.0:8443" {
		t.Fatalf("unexpected listen address: %s", wh.Listen)
	}
	if wh.Endpoint == nil || wh.Endpoint.PublicURL != "https://bot.example.org/hook" {
		t.Fatalf("unexpected endpoint: %+v", wh.Endpoint)
	}
}

func TestBuildPollerLongpollDefaults(t *testing.T) {
	p := BuildPoller(PollerOptions{RunMode: "longpoll"})

	lp, ok := p.(*tele.LongPoller)
	if !ok {
		t.Fatalf("expected *tele.LongPoller, got %T", p)
	}
	if lp.Timeout != 10*time.Second {
		t.Fatalf("default timeout = %s, want 10s", lp.Timeout)
	}
}

func TestBuildPollerLongpollTimeout(t *testing.T) {
	p := BuildPoller(PollerOptions{RunMode: "longpoll", LongPollTimeoutSeconds: 25})

	lp := p.(*tele.LongPoller)
	if lp.Timeout != 25*time.Second {
		t.Fatalf("timeout = %s, want 25s", lp.Timeout)
	}
}
