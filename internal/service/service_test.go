package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/paysplit/internal/auth"
	"github.com/mmynk/paysplit/internal/payment"
	"github.com/mmynk/paysplit/internal/realtime"
	"github.com/mmynk/paysplit/internal/storage/sqlite"
	"github.com/mmynk/paysplit/pkg/api"
	"github.com/mmynk/paysplit/pkg/api/apiconnect"
)

const gatewaySecret = "test-key-secret"

// fakeGateway issues sequential order IDs and signs like Razorpay.
type fakeGateway struct {
	mu     sync.Mutex
	orders int
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*payment.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.orders++
	return &payment.Order{
		ID:       fmt.Sprintf("order_%d", g.orders),
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

func (g *fakeGateway) Verify(orderID, paymentID, signature string) bool {
	return payment.Sign(gatewaySecret, orderID, paymentID) == signature
}

func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

type sentNotification struct {
	memberID string
	message  string
	metadata map[string]any
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(memberID, message string, metadata map[string]any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{memberID, message, metadata})
}

// ofType returns the notifications of the given type, in send order.
func (n *recordingNotifier) ofType(kind string) []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentNotification
	for _, s := range n.sent {
		if s.metadata["type"] == kind {
			out = append(out, s)
		}
	}
	return out
}

type recordingPublisher struct {
	mu     sync.Mutex
	events map[string][]realtime.Event
}

func (p *recordingPublisher) Publish(memberID string, event realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		p.events = make(map[string][]realtime.Event)
	}
	p.events[memberID] = append(p.events[memberID], event)
}

func (p *recordingPublisher) count(memberID, eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events[memberID] {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

type testEnv struct {
	store     *sqlite.SQLiteStore
	notifier  *recordingNotifier
	publisher *recordingPublisher

	auth      apiconnect.AuthServiceClient
	users     apiconnect.UserServiceClient
	groups    apiconnect.GroupServiceClient
	payments  apiconnect.PaymentServiceClient
	analytics apiconnect.AnalyticsServiceClient
}

// setupTestServer serves every service over httptest with the production
// interceptor chain and a temp SQLite database.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	env := &testEnv{
		store:     store,
		notifier:  &recordingNotifier{},
		publisher: &recordingPublisher{},
	}

	jwtManager := auth.NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	services := New(Deps{
		Store:         store,
		Authenticator: auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost),
		JWT:           jwtManager,
		Gateway:       &fakeGateway{},
		Publisher:     env.publisher,
		Notifier:      env.notifier,
	})

	mux := http.NewServeMux()
	services.Register(func(path string, handler http.Handler) {
		mux.Handle(path, handler)
	})
	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	env.auth = apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL)
	env.users = apiconnect.NewUserServiceClient(http.DefaultClient, server.URL)
	env.groups = apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL)
	env.payments = apiconnect.NewPaymentServiceClient(http.DefaultClient, server.URL)
	env.analytics = apiconnect.NewAnalyticsServiceClient(http.DefaultClient, server.URL)
	return env
}

// session is a registered user and their access token.
type session struct {
	id    string
	email string
	token string
}

func (e *testEnv) register(t *testing.T, username string) session {
	t.Helper()
	email := username + "@example.com"
	resp, err := e.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Username: username,
		Email:    email,
		Password: "password123",
	}))
	if err != nil {
		t.Fatalf("Register %s failed: %v", username, err)
	}
	return session{id: resp.Msg.User.ID, email: email, token: resp.Msg.AccessToken}
}

// as builds a request authenticated as s.
func as[T any](s session, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+s.token)
	return req
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("expected code %v, got %v (%v)", want, got, err)
	}
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Errorf("%s = %s, want %s", what, got, want)
	}
}
