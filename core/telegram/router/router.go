package router

import (
	"strings"
	"time"

	"github.com/everyone-nodong/greetbot/core/logger"
	tg "github.com/everyone-nodong/greetbot/core/telegram"
	tghelpers "github.com/everyone-nodong/greetbot/core/telegram/helpers"
	"github.com/everyone-nodong/greetbot/core/telegram/middleware"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	// Observe is invoked for every command update before its handler runs.
	// The greeting debounce uses it to count command messages as ordinary
	// chat traffic.
	Observe func(tele.Context)
}

// CommandRoutes prepares command handlers wrapped with shared middleware.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for cmd, def := range reg.Commands() {
		name := normalizeHandlerName(cmd)
		handler := def.Handler
		h := func(c tele.Context) error {
			start := time.Now()
			if opts.Observe != nil {
				opts.Observe(c)
			}
			return handleWithSummary(c, name, start, handler)
		}
		routes = append(routes, tg.Route{
			Endpoint: cmd,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(h)),
		})
	}

	logger.Info(logger.Background(), "tg.wire", "commands.wired",
		slog.Int("commands", len(reg.Commands())),
	)

	return routes
}

// EventRoute wraps a non-command handler (text, photo, member-joined) with
// the shared recover/logging middleware and summary logging.
func EventRoute(endpoint any, name string, handler tele.HandlerFunc) tg.Route {
	h := func(c tele.Context) error {
		start := time.Now()
		return handleWithSummary(c, name, start, handler)
	}
	return tg.Route{
		Endpoint: endpoint,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(h)),
	}
}

func handleWithSummary(c tele.Context, handlerName string, start time.Time, fn tele.HandlerFunc) error {
	tghelpers.WithHandler(c, handlerName)
	err := fn(c)
	logHandlerSummary(c, handlerName, start, err)
	return err
}

func logHandlerSummary(c tele.Context, handlerName string, start time.Time, err error) {
	ctx := tghelpers.WithHandler(c, handlerName)

	status := "ok"
	if err != nil {
		status = "fail"
	}

	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("handler", handlerName),
		slog.Int64("duration_ms", logger.Took(start).Milliseconds()),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(tg.RedactToken(err), 256)),
			slog.String("cause", handlerName),
		)
		if code := tg.APIStatus(err); code != 0 {
			attrs = append(attrs, slog.Int("err_code", code))
		}
	}
	logger.LogEvent(ctx, logger.Component("tg"), slog.LevelInfo, "handler.handled", attrs...)
}

func normalizeHandlerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown"
	}
	name = strings.TrimPrefix(name, "/")
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ToLower(name)
}
