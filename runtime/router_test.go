package runtime

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Mohammad-Harkous/chat-app/domain"
	"github.com/Mohammad-Harkous/chat-app/domain/event"
	"github.com/Mohammad-Harkous/chat-app/repositories"
	"github.com/Mohammad-Harkous/chat-app/services"
)

// recordingSink collects every consumed event for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (s *recordingSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) all() []event.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.DomainEvent(nil), s.events...)
}

func (s *recordingSink) byName(name string) []event.DomainEvent {
	var out []event.DomainEvent
	for _, e := range s.all() {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}

type routerFixture struct {
	router *Router
	users  *repositories.UserRepository

	alice domain.Profile
	bob   domain.Profile
	conv  domain.Conversation
}

func newRouterFixture(t *testing.T) routerFixture {
	t.Helper()
	req := require.New(t)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	req.NoError(err)
	t.Cleanup(func() { _ = blugeWriter.Close() })

	users := repositories.NewUserRepository(db, blugeWriter, slog.Default())
	conversations := repositories.NewConversationRepository(db, users, slog.Default())
	messages, err := repositories.NewMessageRepository(db, slog.Default())
	req.NoError(err)
	t.Cleanup(func() { _ = messages.Close() })

	conversationService := services.NewConversationService(conversations, users)
	messageService := services.NewMessageService(messages, conversations, users, nil, slog.Default())

	aliceUser, err := users.Create("alice", "alice@example.com", "hash")
	req.NoError(err)
	bobUser, err := users.Create("bob", "bob@example.com", "hash")
	req.NoError(err)
	conv, err := conversationService.CreateOrGet(aliceUser.ID, bobUser.ID)
	req.NoError(err)

	router := NewRouter(NewPresence(), users, conversationService, messageService, slog.Default())
	return routerFixture{
		router: router,
		users:  users,
		alice:  aliceUser.Profile(),
		bob:    bobUser.Profile(),
		conv:   conv,
	}
}

func Test_Connect_Broadcasts_Status_And_Flips_Flag(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t)
	ctx := context.Background()

	aliceSink := &recordingSink{}
	generation := f.router.Connect(ctx, f.alice.ID, aliceSink)

	stored, err := f.users.FindByID(f.alice.ID)
	req.NoError(err)
	req.True(stored.IsOnline)

	// The connecting user receives their own online broadcast.
	statuses := aliceSink.byName("userStatus")
	req.Len(statuses, 1)
	req.Equal(event.UserStatus{UserID: f.alice.ID, Status: event.StatusOnline}, statuses[0])

	f.router.Disconnect(ctx, f.alice.ID, generation)
	stored, err = f.users.FindByID(f.alice.ID)
	req.NoError(err)
	req.False(stored.IsOnline)
}

func Test_Stale_Disconnect_Leaves_New_Connection_Online(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t)
	ctx := context.Background()

	oldGeneration := f.router.Connect(ctx, f.alice.ID, &recordingSink{})
	f.router.Connect(ctx, f.alice.ID, &recordingSink{})

	// The superseded connection tears down late; nothing must change.
	f.router.Disconnect(ctx, f.alice.ID, oldGeneration)

	stored, err := f.users.FindByID(f.alice.ID)
	req.NoError(err)
	req.True(stored.IsOnline)
}

func Test_SendMessage_Delivers_And_Echoes(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t)
	ctx := context.Background()

	aliceSink := &recordingSink{}
	bobSink := &recordingSink{}
	f.router.Connect(ctx, f.alice.ID, aliceSink)
	f.router.Connect(ctx, f.bob.ID, bobSink)

	f.router.SendMessage(ctx, f.alice.ID, f.conv.ID, "hello bob")

	bobMessages := bobSink.byName("newMessage")
	req.Len(bobMessages, 1)
	delivered := bobMessages[0].(event.NewMessage)
	req.Equal("hello bob", delivered.Content)
	req.Equal(f.alice.ID, delivered.SenderID)
	req.Equal("alice", delivered.SenderUsername)

	// The sender gets the same event as confirmation.
	req.Len(aliceSink.byName("newMessage"), 1)
}

func Test_SendMessage_To_Offline_Recipient_Stays_Durable(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t)
	ctx := context.Background()

	aliceSink := &recordingSink{}
	f.router.Connect(ctx, f.alice.ID, aliceSink)

	f.router.SendMessage(ctx, f.alice.ID, f.conv.ID, "hello bob")

	// Echo still happens; bob simply receives nothing live.
	req.Len(aliceSink.byName("newMessage"), 1)
	req.Empty(aliceSink.byName("sendFailed"))
}

func Test_SendMessage_Failure_Reports_To_Sender(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t)
	ctx := context.Background()

	aliceSink := &recordingSink{}
	f.router.Connect(ctx, f.alice.ID, aliceSink)

	// Blank content never persists.
	f.router.SendMessage(ctx, f.alice.ID, f.conv.ID, "   ")

	failures := aliceSink.byName("sendFailed")
	req.Len(failures, 1)
	req.Equal(f.conv.ID, failures[0].(event.SendFailed).ConversationID)
	req.Empty(aliceSink.byName("newMessage"))

	// Unknown conversation fails the same way.
	f.router.SendMessage(ctx, f.alice.ID, uuid.New(), "hello")
	req.Len(aliceSink.byName("sendFailed"), 2)
}

func Test_Typing_Reaches_Other_Participant_Only(t *testing.T) {
	req := require.New(t)
	f := newRouterFixture(t)
	ctx := context.Background()

	aliceSink := &recordingSink{}
	bobSink := &recordingSink{}
	f.router.Connect(ctx, f.alice.ID, aliceSink)
	f.router.Connect(ctx, f.bob.ID, bobSink)

	f.router.Typing(ctx, f.alice.ID, f.conv.ID)

	typings := bobSink.byName("userTyping")
	req.Len(typings, 1)
	req.Equal(f.alice.ID, typings[0].(event.UserTyping).From)
	req.Empty(aliceSink.byName("userTyping"))

	// Unknown conversation is dropped without panicking.
	f.router.Typing(ctx, f.alice.ID, uuid.New())
	req.Len(bobSink.byName("userTyping"), 1)
}
