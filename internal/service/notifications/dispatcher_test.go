package notifications

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mark-szabo/carwash/internal/domain"
	"github.com/mark-szabo/carwash/internal/integrations/push"
	"github.com/mark-szabo/carwash/pkg/logger"
	"github.com/mark-szabo/carwash/pkg/ptr"
)

type mockEmail struct{ mock.Mock }

func (m *mockEmail) Send(ctx context.Context, email domain.Email, delay time.Duration) error {
	return m.Called(ctx, email, delay).Error(0)
}

type mockPush struct{ mock.Mock }

func (m *mockPush) Send(ctx context.Context, userID string, n domain.PushNotification) error {
	return m.Called(ctx, userID, n).Error(0)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) UpdateNotificationChannel(ctx context.Context, id string, channel domain.NotificationChannel) error {
	return m.Called(ctx, id, channel).Error(0)
}

type countingObserver struct {
	results    map[string]int
	downgrades int
}

func (o *countingObserver) ObserveNotification(channel, result string) {
	o.results[channel+":"+result]++
}

func (o *countingObserver) ObserveDowngrade() { o.downgrades++ }

type fixture struct {
	email    *mockEmail
	push     *mockPush
	users    *mockUsers
	observer *countingObserver
	d        *Dispatcher
}

func newFixture() *fixture {
	f := &fixture{
		email:    &mockEmail{},
		push:     &mockPush{},
		users:    &mockUsers{},
		observer: &countingObserver{results: map[string]int{}},
	}
	f.d = NewDispatcher(f.email, f.push, f.users, f.observer, time.Minute, logger.NewWithWriter(io.Discard, "error"))
	return f
}

func reservation() *domain.Reservation {
	return &domain.Reservation{
		ID:                 5,
		UserID:             "u1",
		VehiclePlateNumber: "ABC123",
		StartDate:          time.Date(2024, 1, 10, 7, 0, 0, 0, time.UTC),
	}
}

func owner(channel domain.NotificationChannel) *domain.User {
	return &domain.User{ID: "u1", Email: "u1@example.com", FirstName: "Anna", NotificationChannel: channel}
}

func TestDispatch_Disabled(t *testing.T) {
	f := newFixture()

	f.d.NotifyCompleted(context.Background(), reservation(), owner(domain.ChannelDisabled))

	f.email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	f.push.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatch_EmailAndNotSet(t *testing.T) {
	for _, channel := range []domain.NotificationChannel{domain.ChannelEmail, domain.ChannelNotSet} {
		t.Run(string(channel), func(t *testing.T) {
			f := newFixture()
			f.email.On("Send", mock.Anything, mock.MatchedBy(func(e domain.Email) bool {
				return e.To == "u1@example.com"
			}), time.Minute).Return(nil).Once()

			f.d.NotifyCompleted(context.Background(), reservation(), owner(channel))

			f.email.AssertExpectations(t)
			f.push.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
			assert.Equal(t, 1, f.observer.results["email:sent"])
		})
	}
}

func TestDispatch_PushSucceeds(t *testing.T) {
	f := newFixture()
	f.push.On("Send", mock.Anything, "u1", mock.Anything).Return(nil).Once()

	f.d.NotifyCompleted(context.Background(), reservation(), owner(domain.ChannelPush))

	f.push.AssertExpectations(t)
	f.email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatch_PushWithoutSubscriptionDowngrades(t *testing.T) {
	f := newFixture()
	u := owner(domain.ChannelPush)
	f.push.On("Send", mock.Anything, "u1", mock.Anything).Return(push.ErrNoSubscription).Once()
	f.users.On("UpdateNotificationChannel", mock.Anything, "u1", domain.ChannelEmail).Return(nil).Once()
	f.email.On("Send", mock.Anything, mock.Anything, time.Minute).Return(nil).Once()

	f.d.NotifyCompleted(context.Background(), reservation(), u)

	f.push.AssertExpectations(t)
	f.users.AssertExpectations(t)
	f.email.AssertExpectations(t)
	assert.Equal(t, domain.ChannelEmail, u.NotificationChannel)
	assert.Equal(t, 1, f.observer.downgrades)

	// the next notification goes straight to email
	f.email.On("Send", mock.Anything, mock.Anything, time.Duration(0)).Return(nil).Once()
	f.d.NotifyComment(context.Background(), reservation(), u, domain.Comment{Message: "hi"})
	f.push.AssertNumberOfCalls(t, "Send", 1)
}

func TestDispatch_PushFailureFallsBackWithoutDowngrade(t *testing.T) {
	f := newFixture()
	u := owner(domain.ChannelPush)
	f.push.On("Send", mock.Anything, "u1", mock.Anything).Return(errors.New("gateway down")).Once()
	f.email.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	f.d.NotifyCompleted(context.Background(), reservation(), u)

	f.email.AssertExpectations(t)
	f.users.AssertNotCalled(t, "UpdateNotificationChannel", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, domain.ChannelPush, u.NotificationChannel)
	assert.Equal(t, 1, f.observer.results["push:failed"])
}

func TestDispatch_EmailFailureIsSwallowed(t *testing.T) {
	f := newFixture()
	f.email.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()

	assert.NotPanics(t, func() {
		f.d.NotifyComment(context.Background(), reservation(), owner(domain.ChannelEmail), domain.Comment{Message: "hi"})
	})
	assert.Equal(t, 1, f.observer.results["email:failed"])
}

func TestCompletedMessage(t *testing.T) {
	r := reservation()

	msg := completedMessage(r, owner(domain.ChannelEmail))
	assert.NotContains(t, msg.subject, "pay")
	assert.True(t, msg.completion)

	r.Private = true
	r.KeyLockerBoxID = ptr.Ptr("B7")
	msg = completedMessage(r, owner(domain.ChannelEmail))
	assert.Contains(t, msg.subject, "pay")
	assert.Contains(t, msg.body, "Please pay")
	assert.Contains(t, msg.body, "box B7")
	assert.Contains(t, msg.body, "Hi Anna,")
	assert.Equal(t, "5", msg.push.Tag)
}

func TestCommentMessage(t *testing.T) {
	msg := commentMessage(reservation(), &domain.User{}, domain.Comment{Message: "We found a scratch"})

	require.False(t, msg.completion)
	assert.Contains(t, msg.body, "We found a scratch")
	assert.Contains(t, msg.body, "2024-01-10")
	assert.Equal(t, "We found a scratch", msg.push.Body)
}
