package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/everyone-nodong/greetbot/core/config"
	"github.com/everyone-nodong/greetbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

type reply struct {
	what any
	opts []any
}

// fakeContext covers the slice of tele.Context exercised by command routing.
type fakeContext struct {
	tele.Context

	chat    *tele.Chat
	user    *tele.User
	update  tele.Update
	text    string
	store   map[string]any
	replies []reply
}

func newFakeContext(text string) *fakeContext {
	return &fakeContext{
		chat:   &tele.Chat{ID: -100, Type: tele.ChatGroup},
		user:   &tele.User{ID: 42, Username: "member"},
		update: tele.Update{ID: 7},
		text:   text,
		store:  map[string]any{},
	}
}

func (c *fakeContext) Chat() *tele.Chat    { return c.chat }
func (c *fakeContext) Sender() *tele.User  { return c.user }
func (c *fakeContext) Update() tele.Update { return c.update }
func (c *fakeContext) Text() string        { return c.text }
func (c *fakeContext) Get(key string) any  { return c.store[key] }
func (c *fakeContext) Set(key string, v any) {
	c.store[key] = v
}

func (c *fakeContext) Reply(what any, opts ...any) error {
	c.replies = append(c.replies, reply{what: what, opts: opts})
	return nil
}

type chatSender struct {
	sent int
}

func (s *chatSender) Send(to tele.Recipient, what any, opts ...any) (*tele.Message, error) {
	s.sent++
	return &tele.Message{ID: s.sent}, nil
}

func (s *chatSender) Delete(msg tele.Editable) error { return nil }

func testConfig() *coreconfig.Config {
	cfg := &coreconfig.Config{}
	cfg.Telegram.Token = "123:test-token"
	cfg.Greet.DebounceMessages = 3
	if err := coreconfig.Normalize(cfg); err != nil {
		panic(err)
	}
	return cfg
}

func findRoute(t *testing.T, routes []telegram.Route, endpoint any) tele.HandlerFunc {
	t.Helper()
	for _, r := range routes {
		if r.Endpoint == endpoint {
			return r.Handler
		}
	}
	t.Fatalf("route %v not wired", endpoint)
	return nil
}

func TestNewRegistersMenuCommands(t *testing.T) {
	app := New(testConfig())

	list := app.Registry().ListCommands(true)
	var names []string
	for _, cmd := range list {
		names = append(names, cmd.Text)
	}
	assert.Equal(t, []string{"about", "calendar", "question", "rules"}, names)
}

func TestCommandHandlersReplySilently(t *testing.T) {
	tests := []struct {
		command  string
		wantText string
		wantMode tele.ParseMode
	}{
		{command: "/about", wantText: WelcomeText, wantMode: tele.ModeMarkdown},
		{command: "/rules", wantText: RulesText, wantMode: tele.ModeHTML},
		{command: "/question", wantText: QuestionText, wantMode: tele.ModeHTML},
		{command: "/calendar", wantText: CalendarText, wantMode: tele.ModeHTML},
	}

	app := New(testConfig())
	for _, tc := range tests {
		t.Run(tc.command, func(t *testing.T) {
			def, ok := app.Registry().LookupCommand(tc.command)
			require.True(t, ok)

			c := newFakeContext(tc.command)
			require.NoError(t, def.Handler(c))

			require.Len(t, c.replies, 1)
			assert.Equal(t, tc.wantText, c.replies[0].what)

			require.Len(t, c.replies[0].opts, 1)
			opts, ok := c.replies[0].opts[0].(*tele.SendOptions)
			require.True(t, ok)
			assert.Equal(t, tc.wantMode, opts.ParseMode)
			assert.True(t, opts.DisableNotification, "info replies never ping the group")
		})
	}
}

func TestCommandsCountTowardDebounce(t *testing.T) {
	app := New(testConfig())
	routes := app.RunOptions().Routes

	h := findRoute(t, routes, "/about")
	before := app.Greeter().MessageCount()

	c := newFakeContext("/about")
	require.NoError(t, h(c))

	assert.Equal(t, before+1, app.Greeter().MessageCount())
	require.Len(t, c.replies, 1, "counting must not swallow the reply")
}

func TestTextAndPhotoCountTowardDebounce(t *testing.T) {
	app := New(testConfig())
	routes := app.RunOptions().Routes

	before := app.Greeter().MessageCount()

	require.NoError(t, findRoute(t, routes, tele.OnText)(newFakeContext("hello")))
	require.NoError(t, findRoute(t, routes, tele.OnPhoto)(newFakeContext("")))

	assert.Equal(t, before+2, app.Greeter().MessageCount())
}

func TestJoinRouteGreetsThroughDebounce(t *testing.T) {
	app := New(testConfig())
	sender := &chatSender{}
	app.Greeter().SetSender(sender)
	routes := app.RunOptions().Routes

	join := findRoute(t, routes, tele.OnUserJoined)
	text := findRoute(t, routes, tele.OnText)

	require.NoError(t, join(newFakeContext("")))
	assert.Equal(t, 1, sender.sent, "first join after startup is greeted")

	require.NoError(t, join(newFakeContext("")))
	assert.Equal(t, 1, sender.sent, "immediate second join is suppressed")

	for i := 0; i < 4; i++ {
		require.NoError(t, text(newFakeContext("chat")))
	}
	require.NoError(t, join(newFakeContext("")))
	assert.Equal(t, 2, sender.sent, "enough chatter re-arms the greeting")
}
