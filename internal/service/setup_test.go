package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitroom/internal/auth"
	"github.com/mmynk/splitroom/internal/lifecycle"
	"github.com/mmynk/splitroom/internal/middleware"
	"github.com/mmynk/splitroom/internal/models"
	"github.com/mmynk/splitroom/internal/realtime"
	"github.com/mmynk/splitroom/internal/storage/sqlite"
	"github.com/mmynk/splitroom/pkg/api"
	"github.com/mmynk/splitroom/pkg/api/apiconnect"
)

// testServer runs every service behind the auth interceptor.
type testServer struct {
	url     string
	store   *sqlite.SQLiteStore
	broker  *realtime.MemoryBroker
	scanner *fakeScanner
	auth    apiconnect.AuthServiceClient
}

// testClient is one signed-in caller.
type testClient struct {
	user     api.User
	token    string
	auth     apiconnect.AuthServiceClient
	rooms    apiconnect.RoomServiceClient
	bill     apiconnect.BillServiceClient
	receipts apiconnect.ReceiptServiceClient
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	broker := realtime.NewMemoryBroker()
	scanner := &fakeScanner{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)

	interceptors := connect.WithInterceptors(middleware.NewAuthInterceptor(jwtManager,
		apiconnect.AuthServiceRegisterProcedure,
		apiconnect.AuthServiceLoginProcedure,
		apiconnect.AuthServiceSignInGuestProcedure,
	))

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(NewAuthService(authenticator, store, jwtManager, logger), interceptors))
	mux.Handle(apiconnect.NewRoomServiceHandler(NewRoomService(store, broker, lifecycle.DefaultPolicy, "en-US"), interceptors))
	mux.Handle(apiconnect.NewBillServiceHandler(NewBillService(store, broker, "en-US"), interceptors))
	mux.Handle(apiconnect.NewReceiptServiceHandler(NewReceiptService(store, broker, scanner), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		broker.Close()
		store.Close()
	})

	return &testServer{
		url:     server.URL,
		store:   store,
		broker:  broker,
		scanner: scanner,
		auth:    apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
	}
}

// guest signs in a new guest and returns clients carrying its token.
func (s *testServer) guest(t *testing.T, name string) *testClient {
	t.Helper()
	resp, err := s.auth.SignInGuest(context.Background(), connect.NewRequest(&api.SignInGuestRequest{DisplayName: name}))
	require.NoError(t, err)
	return s.client(resp.Msg.Token, resp.Msg.User)
}

func (s *testServer) client(token string, user api.User) *testClient {
	opt := connect.WithInterceptors(bearer(token))
	return &testClient{
		user:     user,
		token:    token,
		auth:     apiconnect.NewAuthServiceClient(http.DefaultClient, s.url, opt),
		rooms:    apiconnect.NewRoomServiceClient(http.DefaultClient, s.url, opt),
		bill:     apiconnect.NewBillServiceClient(http.DefaultClient, s.url, opt),
		receipts: apiconnect.NewReceiptServiceClient(http.DefaultClient, s.url, opt),
	}
}

// anonymous returns clients that send no token.
func (s *testServer) anonymous() *testClient {
	return &testClient{
		auth:     s.auth,
		rooms:    apiconnect.NewRoomServiceClient(http.DefaultClient, s.url),
		bill:     apiconnect.NewBillServiceClient(http.DefaultClient, s.url),
		receipts: apiconnect.NewReceiptServiceClient(http.DefaultClient, s.url),
	}
}

func (c *testClient) createRoom(t *testing.T, req *api.CreateRoomRequest) api.Room {
	t.Helper()
	if req == nil {
		req = &api.CreateRoomRequest{Currency: "USD"}
	}
	resp, err := c.rooms.CreateRoom(context.Background(), connect.NewRequest(req))
	require.NoError(t, err)
	return resp.Msg.Room
}

func (c *testClient) join(t *testing.T, code string) api.Room {
	t.Helper()
	resp, err := c.rooms.JoinRoom(context.Background(), connect.NewRequest(&api.JoinRoomRequest{Code: code}))
	require.NoError(t, err)
	return resp.Msg.Room
}

func (c *testClient) addItem(t *testing.T, roomID, name string, price float64, quantity int) api.Item {
	t.Helper()
	resp, err := c.rooms.AddItem(context.Background(), connect.NewRequest(&api.AddItemRequest{
		RoomID:   roomID,
		Name:     name,
		Price:    price,
		Quantity: quantity,
	}))
	require.NoError(t, err)
	return resp.Msg.Item
}

func (c *testClient) toggle(t *testing.T, roomID, itemID string) bool {
	t.Helper()
	resp, err := c.rooms.ToggleSelection(context.Background(), connect.NewRequest(&api.ToggleSelectionRequest{RoomID: roomID, ItemID: itemID}))
	require.NoError(t, err)
	return resp.Msg.Selected
}

func (c *testClient) summary(t *testing.T, roomID string) api.Summary {
	t.Helper()
	resp, err := c.bill.GetSummary(context.Background(), connect.NewRequest(&api.GetSummaryRequest{RoomID: roomID}))
	require.NoError(t, err)
	return resp.Msg.Summary
}

// requireCode asserts err is a Connect error with the given code.
func requireCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, connect.CodeOf(err), "error: %v", err)
}

// bearer attaches a token to every outgoing request, streams included.
type bearer string

func (b bearer) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		req.Header().Set("Authorization", "Bearer "+string(b))
		return next(ctx, req)
	}
}

func (b bearer) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return func(ctx context.Context, spec connect.Spec) connect.StreamingClientConn {
		conn := next(ctx, spec)
		conn.RequestHeader().Set("Authorization", "Bearer "+string(b))
		return conn
	}
}

func (b bearer) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return next
}

// fakeScanner returns a canned draft.
type fakeScanner struct {
	mu    sync.Mutex
	draft *models.ReceiptDraft
	err   error
	calls int
}

func (f *fakeScanner) set(draft *models.ReceiptDraft, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft, f.err = draft, err
}

func (f *fakeScanner) Scan(ctx context.Context, image []byte, mimeType string) (*models.ReceiptDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.draft, f.err
}
