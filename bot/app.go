// Package bot wires the greeting flow and the static info commands into a
// runnable Telegram bot.
package bot

import (
	coreconfig "github.com/everyone-nodong/greetbot/core/config"
	"github.com/everyone-nodong/greetbot/core/logger"
	"github.com/everyone-nodong/greetbot/core/telegram"
	"github.com/everyone-nodong/greetbot/core/telegram/commands"
	tghelpers "github.com/everyone-nodong/greetbot/core/telegram/helpers"
	"github.com/everyone-nodong/greetbot/core/telegram/router"
	"log/slog"

	"github.com/everyone-nodong/greetbot/bot/greeter"

	tele "gopkg.in/telebot.v4"
)

// App owns the command registry and the greeting state for one bot instance.
type App struct {
	cfg     *coreconfig.Config
	reg     *telegram.Registry
	greeter *greeter.Greeter
}

// New builds the application from loaded configuration.
func New(cfg *coreconfig.Config) *App {
	a := &App{
		cfg:     cfg,
		reg:     telegram.NewRegistry(),
		greeter: greeter.New(cfg.Greet.DebounceMessages, WelcomeText, nil),
	}

	a.reg.RegisterCommand("/about", commands.Command{
		Handler:     handleAbout,
		Description: "지회 소개와 환영 인사",
	})
	a.reg.RegisterCommand("/rules", commands.Command{
		Handler:     handleRules,
		Description: "민주노총 평등수칙",
	})
	a.reg.RegisterCommand("/question", commands.Command{
		Handler:     handleQuestion,
		Description: "문의 방법 안내",
	})
	a.reg.RegisterCommand("/calendar", commands.Command{
		Handler:     handleCalendar,
		Description: "지회 일정 달력",
	})

	return a
}

// Greeter exposes the debounce state, mainly for tests.
func (a *App) Greeter() *greeter.Greeter {
	return a.greeter
}

// Registry returns the command registry.
func (a *App) Registry() *telegram.Registry {
	return a.reg
}

// RunOptions assembles everything telegram.Run needs: commands count toward
// the debounce like any other chat message, plain text and photos are counted
// too, and member-joined updates go to the greeter.
func (a *App) RunOptions() telegram.RunOptions {
	routes := router.CommandRoutes(a.reg, router.CommandRouteOptions{
		Observe: func(c tele.Context) {
			a.greeter.RecordMessage()
		},
	})
	routes = append(routes,
		router.EventRoute(tele.OnText, "message.text", a.countMessage),
		router.EventRoute(tele.OnPhoto, "message.photo", a.countMessage),
		router.EventRoute(tele.OnUserJoined, "member.joined", a.greeter.HandleJoin),
	)

	return telegram.RunOptions{
		Config:   a.cfg,
		Registry: a.reg,
		Routes:   routes,
		OnStart: func(rt *telegram.Runtime) {
			a.greeter.SetSender(rt.Bot)
			logger.Info(logger.Background(), "app", "ready",
				slog.String("mode", a.cfg.Telegram.RunMode),
				slog.Int("threshold", a.cfg.Greet.DebounceMessages),
			)
		},
	}
}

func (a *App) countMessage(c tele.Context) error {
	count := a.greeter.RecordMessage()
	logger.Debug(tghelpers.BuildContext(c), "greet", "message.counted",
		slog.Int("message_count", count),
		slog.Int("threshold", a.cfg.Greet.DebounceMessages),
	)
	return nil
}
