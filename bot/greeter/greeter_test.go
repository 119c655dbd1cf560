package greeter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

type sentMessage struct {
	to   tele.Recipient
	what any
	opts []any
}

// fakeSender records Send/Delete calls without touching the network.
type fakeSender struct {
	sent      []sentMessage
	sendErr   error
	deleted   []tele.Editable
	deleteErr error
	nextID    int
}

func (f *fakeSender) Send(to tele.Recipient, what any, opts ...any) (*tele.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, sentMessage{to: to, what: what, opts: opts})
	f.nextID++
	return &tele.Message{ID: f.nextID, Chat: to.(*tele.Chat)}, nil
}

func (f *fakeSender) Delete(msg tele.Editable) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, msg)
	return nil
}

// fakeContext implements just enough of tele.Context for join handling.
type fakeContext struct {
	tele.Context

	chat   *tele.Chat
	user   *tele.User
	update tele.Update
	store  map[string]any
}

func newFakeContext(chatID int64) *fakeContext {
	return &fakeContext{
		chat:   &tele.Chat{ID: chatID, Type: tele.ChatGroup},
		user:   &tele.User{ID: 42},
		update: tele.Update{ID: 1},
		store:  map[string]any{},
	}
}

func (c *fakeContext) Chat() *tele.Chat     { return c.chat }
func (c *fakeContext) Sender() *tele.User   { return c.user }
func (c *fakeContext) Update() tele.Update  { return c.update }
func (c *fakeContext) Get(key string) any   { return c.store[key] }
func (c *fakeContext) Set(key string, v any) {
	c.store[key] = v
}

const welcome = "환영합니다!"

func TestFirstJoinAfterStartupGreets(t *testing.T) {
	sender := &fakeSender{}
	g := New(3, welcome, sender)

	require.True(t, g.ShouldGreet(), "counter must start above the threshold")

	err := g.HandleJoin(newFakeContext(-100))
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, welcome, sender.sent[0].what)
	assert.Equal(t, 0, g.MessageCount(), "counter resets after greeting")
	assert.Empty(t, sender.deleted, "nothing to delete before the first greeting")
}

func TestJoinBurstProducesSingleGreeting(t *testing.T) {
	sender := &fakeSender{}
	g := New(3, welcome, sender)
	c := newFakeContext(-100)

	for i := 0; i < 5; i++ {
		require.NoError(t, g.HandleJoin(c))
	}

	assert.Len(t, sender.sent, 1, "back-to-back joins collapse into one greeting")
}

func TestSuppressedUntilEnoughMessages(t *testing.T) {
	tests := []struct {
		name      string
		messages  int
		wantSends int
	}{
		{name: "no messages", messages: 0, wantSends: 1},
		{name: "below threshold", messages: 2, wantSends: 1},
		{name: "exactly threshold", messages: 3, wantSends: 1},
		{name: "past threshold", messages: 4, wantSends: 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sender := &fakeSender{}
			g := New(3, welcome, sender)
			c := newFakeContext(-100)

			require.NoError(t, g.HandleJoin(c))

			for i := 0; i < tc.messages; i++ {
				g.RecordMessage()
			}
			require.NoError(t, g.HandleJoin(c))

			assert.Len(t, sender.sent, tc.wantSends)
		})
	}
}

func TestSecondGreetingDeletesPrevious(t *testing.T) {
	sender := &fakeSender{}
	g := New(3, welcome, sender)
	c := newFakeContext(-100)

	require.NoError(t, g.HandleJoin(c))
	first := g.LastGreeting()
	require.NotNil(t, first)

	for i := 0; i < 4; i++ {
		g.RecordMessage()
	}
	require.NoError(t, g.HandleJoin(c))

	require.Len(t, sender.deleted, 1)
	assert.Equal(t, tele.Editable(first), sender.deleted[0])
	assert.NotEqual(t, first.ID, g.LastGreeting().ID)
}

func TestDeleteFailureDoesNotBlockGreeting(t *testing.T) {
	for _, code := range []int{400, 403} {
		sender := &fakeSender{}
		g := New(3, welcome, sender)
		c := newFakeContext(-100)

		require.NoError(t, g.HandleJoin(c))

		sender.deleteErr = &tele.Error{Code: code, Description: "Bad Request: message to delete not found"}
		for i := 0; i < 4; i++ {
			g.RecordMessage()
		}

		err := g.HandleJoin(c)
		require.NoError(t, err, "delete failure with code %d is tolerated", code)
		assert.Len(t, sender.sent, 2)
	}
}

func TestSendFailureStillConsumesDebounce(t *testing.T) {
	sender := &fakeSender{sendErr: errors.New("telegram: unavailable")}
	g := New(3, welcome, sender)
	c := newFakeContext(-100)

	err := g.HandleJoin(c)
	require.Error(t, err)

	// The counter reset happens before the send, so a failed greeting still
	// suppresses the next joins until enough messages pass.
	assert.Equal(t, 0, g.MessageCount())
	assert.Nil(t, g.LastGreeting())

	sender.sendErr = nil
	require.NoError(t, g.HandleJoin(c))
	assert.Empty(t, sender.sent, "join right after a failed greeting stays suppressed")
}

func TestCounterWalkThroughThreshold(t *testing.T) {
	sender := &fakeSender{}
	g := New(3, welcome, sender)
	c := newFakeContext(-100)

	require.NoError(t, g.HandleJoin(c))
	require.Len(t, sender.sent, 1)

	assert.Equal(t, 1, g.RecordMessage())
	assert.Equal(t, 2, g.RecordMessage())
	assert.Equal(t, 3, g.RecordMessage())
	assert.False(t, g.ShouldGreet())

	assert.Equal(t, 4, g.RecordMessage())
	assert.True(t, g.ShouldGreet())

	require.NoError(t, g.HandleJoin(c))
	assert.Len(t, sender.sent, 2)
	assert.Equal(t, 0, g.MessageCount())
}

func TestMissingChatIsIgnored(t *testing.T) {
	sender := &fakeSender{}
	g := New(3, welcome, sender)
	c := newFakeContext(-100)
	c.chat = nil

	require.NoError(t, g.HandleJoin(c))
	assert.Empty(t, sender.sent)
}

func TestZeroThresholdGreetsEveryArmedJoin(t *testing.T) {
	sender := &fakeSender{}
	g := New(0, welcome, sender)
	c := newFakeContext(-100)

	require.NoError(t, g.HandleJoin(c))
	require.NoError(t, g.HandleJoin(c))
	assert.Len(t, sender.sent, 1, "count 0 is not above threshold 0")

	g.RecordMessage()
	require.NoError(t, g.HandleJoin(c))
	assert.Len(t, sender.sent, 2)
}
