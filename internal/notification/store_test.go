package notification

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/reviewfighters/reviewfighters-api/internal/kv"
	"github.com/reviewfighters/reviewfighters-api/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlatform struct {
	mu        sync.Mutex
	supported bool
	status    models.PermissionStatus
	answer    models.PermissionStatus
	err       error
	shown     []models.SystemNotification
}

func (p *fakePlatform) Supported() bool { return p.supported }

func (p *fakePlatform) Permission() models.PermissionStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *fakePlatform) RequestPermission(ctx context.Context) (models.PermissionStatus, error) {
	if p.err != nil {
		return models.PermissionDefault, p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = p.answer
	return p.status, nil
}

func (p *fakePlatform) Show(_ context.Context, n models.SystemNotification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shown = append(p.shown, n)
	return nil
}

func (p *fakePlatform) RestorePermission(status models.PermissionStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = status
}

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	counter := 0
	opts.Logger = zerolog.Nop()
	if opts.newID == nil {
		opts.newID = func() string {
			counter++
			return fmt.Sprintf("n-%d", counter)
		}
	}
	if opts.now == nil {
		base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		opts.now = func() time.Time { return base }
	}
	s := NewStore(context.Background(), opts)
	t.Cleanup(s.Close)
	return s
}

func info(title, userID string) NotifyInput {
	return NotifyInput{Title: title, Message: "hi", Type: models.NotificationTypeInfo, UserID: userID}
}

func unreadIn(list []models.SystemNotification) int {
	n := 0
	for _, item := range list {
		if !item.Read {
			n++
		}
	}
	return n
}

func TestNotifyCreatesUnreadNotification(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	created := s.Notify(ctx, NotifyInput{Title: " A ", Message: "hi", Type: models.NotificationTypeInfo, UserID: "u1"})

	assert.Equal(t, "n-1", created.ID)
	assert.Equal(t, "A", created.Title)
	assert.False(t, created.Read)
	assert.Equal(t, "u1", created.UserID)
	assert.False(t, created.Timestamp.IsZero())
	assert.Equal(t, 1, s.UnreadCount("u1"))
}

func TestNotifyDefaultsUnknownType(t *testing.T) {
	s := newTestStore(t, Options{})
	created := s.Notify(context.Background(), NotifyInput{Title: "x", Type: "critical"})
	assert.Equal(t, models.NotificationTypeInfo, created.Type)
}

func TestNotifyUniqueIDs(t *testing.T) {
	s := NewStore(context.Background(), Options{Logger: zerolog.Nop()})
	defer s.Close()

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		n := s.Notify(context.Background(), info("t", ""))
		require.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true
	}
}

func TestVisibility(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	owned := s.Notify(ctx, info("owned", "u1"))
	broadcast := s.Notify(ctx, info("broadcast", ""))

	ids := func(list []models.SystemNotification) []string {
		var out []string
		for _, n := range list {
			out = append(out, n.ID)
		}
		return out
	}

	assert.Equal(t, []string{broadcast.ID, owned.ID}, ids(s.Notifications("u1")))
	assert.Equal(t, []string{broadcast.ID}, ids(s.Notifications("u2")))
	assert.Equal(t, []string{broadcast.ID}, ids(s.Notifications("")))
}

func TestScenarioMarkAllThenClear(t *testing.T) {
	s := newTestStore(t, Options{})

	s.Notify(context.Background(), NotifyInput{Title: "A", Message: "hi", Type: models.NotificationTypeInfo, UserID: "u1"})
	require.Len(t, s.Notifications("u1"), 1)
	require.Equal(t, 1, s.UnreadCount("u1"))

	s.MarkAllAsRead("u1")
	assert.Equal(t, 0, s.UnreadCount("u1"))

	s.ClearAllNotifications("u1")
	assert.Empty(t, s.Notifications("u1"))
}

func TestClearAllLeavesOtherUsers(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()
	s.Notify(ctx, info("mine", "u1"))
	s.Notify(ctx, info("theirs", "u2"))
	s.Notify(ctx, info("everyone", ""))

	s.ClearAllNotifications("u1")

	list := s.Notifications("u2")
	require.Len(t, list, 1)
	assert.Equal(t, "theirs", list[0].Title)
}

func TestMarkAllAsReadScopedToUser(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()
	s.Notify(ctx, info("mine", "u1"))
	s.Notify(ctx, info("theirs", "u2"))

	s.MarkAllAsRead("u1")

	assert.Equal(t, 0, s.UnreadCount("u1"))
	assert.Equal(t, 1, s.UnreadCount("u2"))
}

func TestUnreadCountMatchesVisibleList(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()
	users := []string{"u1", "u2", ""}

	var ids []string
	for i := 0; i < 30; i++ {
		user := users[i%len(users)]
		ids = append(ids, s.Notify(ctx, info(fmt.Sprintf("n%d", i), user)).ID)
		switch i % 4 {
		case 1:
			s.MarkAsRead(ids[i/2])
		case 2:
			s.DeleteNotification(ids[i/3])
		case 3:
			s.MarkAsRead("missing")
		}
		for _, u := range users {
			assert.Equal(t, unreadIn(s.Notifications(u)), s.UnreadCount(u), "user %q after step %d", u, i)
		}
	}
}

func TestMarkAsReadIdempotent(t *testing.T) {
	s := newTestStore(t, Options{})
	n := s.Notify(context.Background(), info("A", "u1"))

	var calls int
	unsubscribe := s.Subscribe(func([]models.SystemNotification) { calls++ })
	defer unsubscribe()

	s.MarkAsRead(n.ID)
	before := s.Notifications("u1")
	s.MarkAsRead(n.ID)

	assert.Equal(t, 1, calls)
	assert.Equal(t, before, s.Notifications("u1"))
}

func TestMissingIDsAreNoOps(t *testing.T) {
	s := newTestStore(t, Options{})
	n := s.Notify(context.Background(), info("A", "u1"))

	var calls int
	unsubscribe := s.Subscribe(func([]models.SystemNotification) { calls++ })
	defer unsubscribe()

	s.MarkAsRead("nope")
	s.DeleteNotification("nope")
	s.DeleteNotification(n.ID)
	s.DeleteNotification(n.ID)
	s.MarkAsRead(n.ID)
	s.ClearAllNotifications("u1")
	s.MarkAllAsRead("u1")

	assert.Equal(t, 1, calls)
	assert.Empty(t, s.Notifications("u1"))
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	s := newTestStore(t, Options{})

	called := false
	unsubscribe := s.Subscribe(func([]models.SystemNotification) { called = true })
	unsubscribe()
	unsubscribe()

	s.Notify(context.Background(), info("A", ""))
	assert.False(t, called)
}

func TestSubscribersAreIndependent(t *testing.T) {
	s := newTestStore(t, Options{})

	var first, second []models.SystemNotification
	unsubFirst := s.Subscribe(func(list []models.SystemNotification) { first = list })
	unsubSecond := s.Subscribe(func(list []models.SystemNotification) { second = list })
	defer unsubSecond()

	s.Notify(context.Background(), info("A", "u1"))
	require.Len(t, first, 1)
	require.Len(t, second, 1)

	// Each subscriber holds its own copy.
	first[0].Title = "mutated"
	assert.Equal(t, "A", second[0].Title)
	assert.Equal(t, "A", s.Notifications("u1")[0].Title)

	unsubFirst()
	s.Notify(context.Background(), info("B", "u1"))
	assert.Len(t, first, 1)
	assert.Len(t, second, 2)
}

func TestSubscriberSeesCommittedState(t *testing.T) {
	s := newTestStore(t, Options{})

	var counts []int
	unsubscribe := s.Subscribe(func(list []models.SystemNotification) {
		counts = append(counts, s.UnreadCount("u1"))
		assert.Equal(t, len(list), len(s.Notifications("u1")))
	})
	defer unsubscribe()

	n := s.Notify(context.Background(), info("A", "u1"))
	s.Notify(context.Background(), info("B", "u1"))
	s.MarkAsRead(n.ID)

	assert.Equal(t, []int{1, 2, 1}, counts)
}

func TestListenerMayUnsubscribeItself(t *testing.T) {
	s := newTestStore(t, Options{})

	calls := 0
	var unsubscribe func()
	unsubscribe = s.Subscribe(func([]models.SystemNotification) {
		calls++
		unsubscribe()
	})

	s.Notify(context.Background(), info("A", ""))
	s.Notify(context.Background(), info("B", ""))
	assert.Equal(t, 1, calls)
}

func TestFanOutOrderUnderConcurrency(t *testing.T) {
	s := NewStore(context.Background(), Options{Logger: zerolog.Nop()})
	defer s.Close()

	var lengths []int
	unsubscribe := s.Subscribe(func(list []models.SystemNotification) {
		lengths = append(lengths, len(list))
	})
	defer unsubscribe()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Notify(context.Background(), info("c", "u1"))
		}()
	}
	wg.Wait()

	require.Len(t, lengths, 20)
	for i, l := range lengths {
		assert.Equal(t, i+1, l)
	}
}

func TestPersistenceAcrossStores(t *testing.T) {
	storage := kv.NewMemoryStore()
	ctx := context.Background()

	first := newTestStore(t, Options{Storage: storage, Namespace: "rf"})
	n := first.Notify(ctx, info("A", "u1"))
	first.Notify(ctx, info("B", ""))
	first.MarkAsRead(n.ID)
	first.SetSoundEnabled(true)

	second := newTestStore(t, Options{Storage: storage, Namespace: "rf"})
	assert.Equal(t, first.Notifications("u1"), second.Notifications("u1"))
	assert.Equal(t, 1, second.UnreadCount("u1"))
	assert.True(t, second.SoundEnabled())

	other := newTestStore(t, Options{Storage: storage, Namespace: "other"})
	assert.Empty(t, other.Notifications("u1"))
}

func TestSoundPreference(t *testing.T) {
	s := newTestStore(t, Options{SoundEnabled: true})
	assert.True(t, s.SoundEnabled())
	s.SetSoundEnabled(false)
	assert.False(t, s.SoundEnabled())
}

func TestUnsupportedPlatform(t *testing.T) {
	s := newTestStore(t, Options{})
	assert.False(t, s.IsSupported())
	assert.Equal(t, models.PermissionDenied, s.PermissionStatus())
	assert.False(t, s.RequestPermission(context.Background()))
}

func TestRequestPermission(t *testing.T) {
	tests := []struct {
		name    string
		answer  models.PermissionStatus
		err     error
		granted bool
		status  models.PermissionStatus
	}{
		{name: "granted", answer: models.PermissionGranted, granted: true, status: models.PermissionGranted},
		{name: "denied", answer: models.PermissionDenied, status: models.PermissionDenied},
		{name: "error", err: context.Canceled, status: models.PermissionDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform := &fakePlatform{supported: true, status: models.PermissionDefault, answer: tt.answer, err: tt.err}
			s := newTestStore(t, Options{Platform: platform})

			assert.True(t, s.IsSupported())
			assert.Equal(t, tt.granted, s.RequestPermission(context.Background()))
			assert.Equal(t, tt.status, s.PermissionStatus())
		})
	}
}

func TestPermissionPersisted(t *testing.T) {
	storage := kv.NewMemoryStore()
	first := newTestStore(t, Options{Storage: storage, Platform: &fakePlatform{supported: true, status: models.PermissionDefault, answer: models.PermissionGranted}})
	require.True(t, first.RequestPermission(context.Background()))

	restored := &fakePlatform{supported: true, status: models.PermissionDefault}
	newTestStore(t, Options{Storage: storage, Platform: restored})
	assert.Equal(t, models.PermissionGranted, restored.Permission())
}

func TestShowBrowserRequiresGrant(t *testing.T) {
	platform := &fakePlatform{supported: true, status: models.PermissionDefault, answer: models.PermissionGranted}
	s := newTestStore(t, Options{Platform: platform})
	ctx := context.Background()

	s.Notify(ctx, NotifyInput{Title: "before", ShowBrowser: true})
	assert.Empty(t, platform.shown)

	require.True(t, s.RequestPermission(ctx))
	s.Notify(ctx, NotifyInput{Title: "quiet"})
	s.Notify(ctx, NotifyInput{Title: "loud", ShowBrowser: true})

	require.Len(t, platform.shown, 1)
	assert.Equal(t, "loud", platform.shown[0].Title)
}

func TestCloseDropsSubscribers(t *testing.T) {
	s := NewStore(context.Background(), Options{Logger: zerolog.Nop()})
	called := false
	s.Subscribe(func([]models.SystemNotification) { called = true })

	s.Close()
	s.Notify(context.Background(), info("after", ""))
	assert.False(t, called)
}

func TestOwnedOperationsLeaveBroadcasts(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()
	s.Notify(ctx, info("mine", "u1"))
	s.Notify(ctx, info("theirs", "u2"))
	s.Notify(ctx, info("everyone", ""))

	s.MarkOwnedAsRead("u1")
	assert.Equal(t, 1, s.UnreadCount("u1"), "broadcast stays unread")
	assert.Equal(t, 2, s.UnreadCount("u2"))

	s.ClearOwnedNotifications("u1")
	list := s.Notifications("u1")
	require.Len(t, list, 1)
	assert.Equal(t, "everyone", list[0].Title)
	assert.Len(t, s.Notifications("u2"), 2)
}

func TestOwnedOperationsIgnoreUndefinedUser(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()
	s.Notify(ctx, info("everyone", ""))

	calls := 0
	unsubscribe := s.Subscribe(func([]models.SystemNotification) { calls++ })
	defer unsubscribe()

	s.MarkOwnedAsRead("")
	s.ClearOwnedNotifications("")
	assert.Zero(t, calls)
	assert.Equal(t, 1, s.UnreadCount(""))
}
