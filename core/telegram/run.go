package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	coreconfig "github.com/everyone-nodong/greetbot/core/config"
	"github.com/everyone-nodong/greetbot/core/logger"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Route binds a telebot endpoint to a fully wrapped handler.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions describes everything needed to build and run the bot.
type RunOptions struct {
	Config      *coreconfig.Config
	Registry    *Registry
	Middlewares []tele.MiddlewareFunc
	Routes      []Route

	// DisableWebhookCleanup keeps an existing webhook registration even in
	// long-polling mode. Telegram refuses getUpdates while a webhook is set,
	// so cleanup is on by default.
	DisableWebhookCleanup bool

	// OnStart runs after the bot is constructed and routed, just before
	// polling begins.
	OnStart func(rt *Runtime)
	// OnStop runs after polling has stopped.
	OnStop func(rt *Runtime)
}

// Runtime exposes the live bot to startup hooks.
type Runtime struct {
	Bot      *tele.Bot
	Registry *Registry
}

// Run builds the bot from options and blocks until ctx is cancelled or the
// poller fails.
func Run(ctx context.Context, opts RunOptions) error {
	cfg := opts.Config
	if cfg == nil {
		return errors.New("telegram: nil config")
	}

	poller := BuildPoller(PollerOptions{
		RunMode:                cfg.Telegram.RunMode,
		LongPollTimeoutSeconds: cfg.Telegram.LongPollTimeoutSeconds,
		Webhook: WebhookOptions{
			Listen: cfg.Webhook.Listen,
			Port:   cfg.Webhook.Port,
			URL:    cfg.Webhook.URL,
		},
	})

	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: poller,
		Client: BuildHTTPClient(),
		OnError: func(err error, c tele.Context) {
			attrs := []slog.Attr{
				slog.String("err", logger.SanitizeLimit(RedactToken(err), 256)),
			}
			if code := APIStatus(err); code != 0 {
				attrs = append(attrs, slog.Int("err_code", code))
			}
			if c != nil && c.Chat() != nil {
				attrs = append(attrs, slog.Int64("chat_id", c.Chat().ID))
			}
			logger.TG.LogAttrs(context.Background(), slog.LevelError, "update.error", attrs...)
		},
	})
	if err != nil {
		return fmt.Errorf("telegram: create bot: %w", RedactedError(err))
	}

	switch cfg.Telegram.RunMode {
	case RunModeWebhook:
		logger.TG.LogAttrs(ctx, slog.LevelInfo, "mode.webhook",
			slog.String("listen", fmt.Sprintf("%s:%d", cfg.Webhook.Listen, cfg.Webhook.Port)),
			slog.String("public_url", cfg.Webhook.URL),
		)
	default:
		if !opts.DisableWebhookCleanup {
			// A stale webhook blocks getUpdates; drop it before polling.
			if err := bot.RemoveWebhook(); err != nil {
				logger.TG.LogAttrs(ctx, slog.LevelWarn, "webhook.cleanup_failed",
					slog.String("err", logger.SanitizeLimit(RedactToken(err), 256)),
				)
			}
		}
		logger.TG.LogAttrs(ctx, slog.LevelInfo, "mode.longpoll",
			slog.Int("timeout_seconds", cfg.Telegram.LongPollTimeoutSeconds),
		)
	}

	for _, mw := range opts.Middlewares {
		bot.Use(mw)
	}
	for _, route := range opts.Routes {
		bot.Handle(route.Endpoint, route.Handler)
	}

	if opts.Registry != nil {
		SetupCommands(bot, opts.Registry)
	}

	rt := &Runtime{Bot: bot, Registry: opts.Registry}
	if opts.OnStart != nil {
		opts.OnStart(rt)
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		bot.Start()
	}()

	<-ctx.Done()
	bot.Stop()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		logger.TG.LogAttrs(context.Background(), slog.LevelWarn, "stop.timeout")
	}

	if opts.OnStop != nil {
		opts.OnStop(rt)
	}

	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// RedactedError wraps err with its token-redacted message so callers can
// return it without leaking credentials into logs upstream.
func RedactedError(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(RedactToken(err))
}
