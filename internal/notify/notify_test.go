package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/models"
	"github.com/mmynk/hisab/internal/storage"
	"github.com/mmynk/hisab/internal/storage/memory"
	"github.com/mmynk/hisab/internal/websocket"
)

type recordingPusher struct {
	sent []string
	err  error
}

func (p *recordingPusher) SendTo(userID string, msg websocket.Message) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	p.sent = append(p.sent, userID)
	return 1, nil
}

type failingStore struct {
	storage.NotificationStore
}

func (failingStore) CreateNotification(context.Context, *models.Notification) error {
	return errors.New("disk full")
}

func TestDispatcherStoresThenPushes(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	pusher := &recordingPusher{}
	d := NewDispatcher(store, pusher)

	alice := &models.User{ID: "alice", DisplayName: "Alice"}
	g := &models.Group{ID: "g1", Name: "Flat"}
	d.Notify(ctx,
		GroupInvite("bob", alice, g),
		GroupInvite("carol", alice, g),
		GroupInvite("alice", alice, g),
	)

	if len(pusher.sent) != 2 || pusher.sent[0] != "bob" || pusher.sent[1] != "carol" {
		t.Errorf("pushed to %v, want [bob carol]", pusher.sent)
	}
	stored, _ := store.ListNotifications(ctx, storage.NotificationFilter{UserID: "bob"})
	if len(stored) != 1 || stored[0].ID == "" || stored[0].GroupID != "g1" {
		t.Errorf("stored for bob = %+v", stored)
	}
	if n, _ := store.CountUnread(ctx, "alice"); n != 0 {
		t.Errorf("actor notified about own action: %d", n)
	}
}

func TestDispatcherSwallowsFailures(t *testing.T) {
	ctx := context.Background()
	alice := &models.User{ID: "alice", DisplayName: "Alice"}
	g := &models.Group{ID: "g1", Name: "Flat"}

	pusher := &recordingPusher{}
	NewDispatcher(failingStore{}, pusher).Notify(ctx, GroupInvite("bob", alice, g))
	if len(pusher.sent) != 0 {
		t.Error("pushed a notification that was never stored")
	}

	store := memory.New()
	NewDispatcher(store, &recordingPusher{err: errors.New("closed")}).Notify(ctx, GroupInvite("bob", alice, g))
	if n, _ := store.CountUnread(ctx, "bob"); n != 1 {
		t.Errorf("push failure lost the stored notification: unread = %d", n)
	}

	// nil pusher only persists
	NewDispatcher(store, nil).Notify(ctx, GroupInvite("bob", alice, g))
	if n, _ := store.CountUnread(ctx, "bob"); n != 2 {
		t.Errorf("unread = %d, want 2", n)
	}
}

// ctxCheckingStore refuses writes on a done context, like the SQL backends.
type ctxCheckingStore struct {
	storage.NotificationStore
}

func (s ctxCheckingStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.NotificationStore.CreateNotification(ctx, n)
}

func TestDispatcherOutlivesCanceledRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := memory.New()
	pusher := &recordingPusher{}
	alice := &models.User{ID: "alice", DisplayName: "Alice"}
	NewDispatcher(ctxCheckingStore{store}, pusher).Notify(ctx, GroupInvite("bob", alice, &models.Group{ID: "g1", Name: "Flat"}))

	if n, _ := store.CountUnread(context.Background(), "bob"); n != 1 {
		t.Errorf("unread = %d, want 1 after the request was canceled", n)
	}
	if len(pusher.sent) != 1 {
		t.Errorf("pushed to %v, want [bob]", pusher.sent)
	}
}

func TestMessages(t *testing.T) {
	alice := &models.User{ID: "alice", DisplayName: "Alice"}
	e := &models.Expense{ID: "e1", Description: "Court", Amount: decimal.RequireFromString("1200"), Currency: "INR", GroupID: "g1"}
	st := &models.Settlement{FromUserID: "bob", ToUserID: "alice", Amount: decimal.RequireFromString("300")}

	tests := []struct {
		name        string
		n           *models.Notification
		wantType    models.NotificationType
		wantTitle   string
		wantMessage string
	}{
		{"expense added", ExpenseAdded("bob", alice, e, decimal.RequireFromString("300")),
			models.NotificationExpenseAdded, "New expense: Court", "Alice added an expense of ₹1200.00. Your share is ₹300.00"},
		{"expense updated", ExpenseUpdated("bob", alice, e, decimal.RequireFromString("250.5")),
			models.NotificationExpenseUpdated, "Expense updated: Court", "Alice updated an expense to ₹1200.00. Your share is ₹250.50"},
		{"settlement to receiver", SettlementRecorded("alice", &models.User{ID: "bob", DisplayName: "Bob"}, st),
			models.NotificationSettlement, "Payment received", "Bob paid you ₹300.00"},
		{"settlement to payer", SettlementRecorded("bob", alice, st),
			models.NotificationSettlement, "Payment recorded", "Alice recorded your payment of ₹300.00"},
		{"unknown actor", GroupInvite("bob", nil, &models.Group{ID: "g1", Name: "Flat"}),
			models.NotificationGroupInvite, "Added to group: Flat", "Someone added you to the group 'Flat'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.n.Type != tt.wantType {
				t.Errorf("Type = %s, want %s", tt.n.Type, tt.wantType)
			}
			if tt.n.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", tt.n.Title, tt.wantTitle)
			}
			if tt.n.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", tt.n.Message, tt.wantMessage)
			}
		})
	}

	if got := FormatAmount("USD", decimal.RequireFromString("12.5")); !strings.HasPrefix(got, "USD 12.50") {
		t.Errorf("FormatAmount(USD) = %q", got)
	}
}
