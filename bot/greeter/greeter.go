// Package greeter implements the debounced welcome flow for a single group
// chat. A counter tracks ordinary messages since the previous greeting; a
// new-member event only produces a greeting once the counter has passed the
// configured threshold, which keeps a burst of joins from flooding the chat
// with identical welcomes.
package greeter

import (
	"sync"

	"github.com/everyone-nodong/greetbot/core/logger"
	tg "github.com/everyone-nodong/greetbot/core/telegram"
	tghelpers "github.com/everyone-nodong/greetbot/core/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Sender is the slice of the bot API the greeter needs. *tele.Bot satisfies it.
type Sender interface {
	Send(to tele.Recipient, what any, opts ...any) (*tele.Message, error)
	Delete(msg tele.Editable) error
}

// Greeter holds the debounce state. Safe for concurrent use, although telebot
// delivers updates to a handler sequentially per chat in practice.
type Greeter struct {
	mu           sync.Mutex
	threshold    int
	count        int
	lastGreeting *tele.Message

	sender  Sender
	welcome string
	opts    *tele.SendOptions
}

// New creates a Greeter. The counter starts above the threshold so the very
// first join after startup is always greeted. sender may be nil; HandleJoin
// then falls back to the bot carried by the update context.
func New(threshold int, welcome string, sender Sender) *Greeter {
	if threshold < 0 {
		threshold = 0
	}
	return &Greeter{
		threshold: threshold,
		count:     threshold + 1,
		sender:    sender,
		welcome:   welcome,
		opts: &tele.SendOptions{
			ParseMode:           tele.ModeMarkdown,
			DisableNotification: true,
		},
	}
}

// SetSender binds the live bot after construction.
func (g *Greeter) SetSender(s Sender) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sender = s
}

// RecordMessage counts one ordinary chat message and returns the new count.
func (g *Greeter) RecordMessage() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.count++
	return g.count
}

// MessageCount returns the number of ordinary messages seen since the last
// greeting (or since startup).
func (g *Greeter) MessageCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.count
}

// ShouldGreet reports whether a join arriving now would produce a greeting.
func (g *Greeter) ShouldGreet() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.count > g.threshold
}

// HandleJoin processes a new-chat-member update. When the debounce allows it,
// the previous greeting is deleted best-effort and a fresh one is posted
// silently. The counter resets as soon as a greeting is attempted, so a
// failed send still suppresses the next few joins; that mirrors how the chat
// actually behaves, where a join burst should cost at most one greeting try.
func (g *Greeter) HandleJoin(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)

	g.mu.Lock()
	count, threshold := g.count, g.threshold
	if count <= threshold {
		g.mu.Unlock()
		logger.LogEvent(ctx, logger.Greet, slog.LevelInfo, "greet.suppressed",
			slog.String("status", "skip"),
			slog.Int("message_count", count),
			slog.Int("threshold", threshold),
		)
		return nil
	}
	g.count = 0
	last := g.lastGreeting
	sender := g.sender
	g.mu.Unlock()

	chat := c.Chat()
	if chat == nil {
		return nil
	}
	if sender == nil {
		sender = c.Bot()
	}

	if last != nil {
		if err := sender.Delete(last); err != nil {
			switch code := tg.APIStatus(err); code {
			case 400, 403:
				// Already deleted, too old, or missing rights; nothing to do.
			default:
				logger.LogEvent(ctx, logger.Greet, slog.LevelWarn, "greet.delete_failed",
					slog.String("err", logger.SanitizeLimit(tg.RedactToken(err), 256)),
				)
			}
		}
	}

	msg, err := sender.Send(chat, g.welcome, g.opts)
	if err != nil {
		logger.LogEvent(ctx, logger.Greet, slog.LevelError, "greet.send_failed",
			slog.String("status", "fail"),
			slog.Int("threshold", threshold),
			slog.String("err", logger.SanitizeLimit(tg.RedactToken(err), 256)),
		)
		return err
	}

	g.mu.Lock()
	g.lastGreeting = msg
	g.mu.Unlock()

	logger.LogEvent(ctx, logger.Greet, slog.LevelInfo, "greet.sent",
		slog.String("status", "ok"),
		slog.Int("message_count", count),
		slog.Int("threshold", threshold),
	)
	return nil
}

// LastGreeting returns the most recently sent greeting, if any.
func (g *Greeter) LastGreeting() *tele.Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastGreeting
}
