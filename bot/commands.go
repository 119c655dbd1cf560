package bot

import (
	tele "gopkg.in/telebot.v4"
)

func replyBlock(c tele.Context, b Block) error {
	return c.Reply(b.Text, b.sendOptions())
}

// handleAbout replies with the welcome message on demand, bypassing the
// join debounce entirely.
func handleAbout(c tele.Context) error {
	return replyBlock(c, Block{Text: WelcomeText, ParseMode: tele.ModeMarkdown})
}

func handleRules(c tele.Context) error {
	return replyBlock(c, Block{Text: RulesText, ParseMode: tele.ModeHTML})
}

func handleQuestion(c tele.Context) error {
	return replyBlock(c, Block{Text: QuestionText, ParseMode: tele.ModeHTML})
}

func handleCalendar(c tele.Context) error {
	return replyBlock(c, Block{Text: CalendarText, ParseMode: tele.ModeHTML})
}
