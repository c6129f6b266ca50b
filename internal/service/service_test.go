package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/hisab/internal/auth"
	"github.com/mmynk/hisab/internal/ledger"
	"github.com/mmynk/hisab/internal/middleware"
	"github.com/mmynk/hisab/internal/notify"
	"github.com/mmynk/hisab/internal/storage/sqlite"
	"github.com/mmynk/hisab/pkg/api"
	"github.com/mmynk/hisab/pkg/api/apiconnect"
)

type testServer struct {
	url      string
	verifier *auth.JWTVerifier
}

// session is one signed-in user's set of clients.
type session struct {
	userID        string
	users         apiconnect.UserServiceClient
	groups        apiconnect.GroupServiceClient
	expenses      apiconnect.ExpenseServiceClient
	settlements   apiconnect.SettlementServiceClient
	notifications apiconnect.NotificationServiceClient
}

// setupTestServer serves every service over a temp SQLite database, behind
// the same auth and logging interceptors as the server.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	l := ledger.New(store, ledger.WithNotifier(notify.NewDispatcher(store, nil)))
	verifier := auth.NewJWTVerifier("test-secret", "hisab-test")
	interceptors := connect.WithInterceptors(middleware.RequireAuth(verifier), middleware.LoggingInterceptor())

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewUserServiceHandler(NewUserService(l), interceptors))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(l), interceptors))
	mux.Handle(apiconnect.NewExpenseServiceHandler(NewExpenseService(l), interceptors))
	mux.Handle(apiconnect.NewSettlementServiceHandler(NewSettlementService(l), interceptors))
	mux.Handle(apiconnect.NewNotificationServiceHandler(NewNotificationService(l), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})
	return &testServer{url: server.URL, verifier: verifier}
}

// as returns clients that call with a token for userID. An empty userID
// returns anonymous clients.
func (s *testServer) as(t *testing.T, userID, email string) *session {
	t.Helper()

	var opts []connect.ClientOption
	if userID != "" {
		token, err := s.verifier.Issue(userID, email, "", time.Hour)
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		opts = append(opts, connect.WithInterceptors(bearer(token)))
	}

	return &session{
		userID:        userID,
		users:         apiconnect.NewUserServiceClient(http.DefaultClient, s.url, opts...),
		groups:        apiconnect.NewGroupServiceClient(http.DefaultClient, s.url, opts...),
		expenses:      apiconnect.NewExpenseServiceClient(http.DefaultClient, s.url, opts...),
		settlements:   apiconnect.NewSettlementServiceClient(http.DefaultClient, s.url, opts...),
		notifications: apiconnect.NewNotificationServiceClient(http.DefaultClient, s.url, opts...),
	}
}

// register signs userID in and creates their profile.
func (s *testServer) register(t *testing.T, userID, name string) *session {
	t.Helper()

	sess := s.as(t, userID, userID+"@example.com")
	if _, err := sess.users.RegisterUser(context.Background(), connect.NewRequest(&api.RegisterUserRequest{
		DisplayName: name,
	})); err != nil {
		t.Fatalf("RegisterUser(%s) failed: %v", userID, err)
	}
	return sess
}

func bearer(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set("Authorization", "Bearer "+token)
			return next(ctx, req)
		}
	}
}

func wantCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", code)
	}
	if got := connect.CodeOf(err); got != code {
		t.Fatalf("code = %v, want %v (err: %v)", got, code, err)
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func equalSplit(userIDs ...string) api.SplitConfig {
	cfg := api.SplitConfig{Type: "equal"}
	for _, id := range userIDs {
		cfg.Participants = append(cfg.Participants, api.Participant{UserID: id})
	}
	return cfg
}

// balanceWith finds the balance with userID, zero when absent.
func balanceWith(balances []*api.Balance, userID string) decimal.Decimal {
	for _, b := range balances {
		if b.UserID == userID {
			return b.Amount
		}
	}
	return decimal.Zero
}
