package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"hanpick.kr/shopping-proxy/internal/config"
	"hanpick.kr/shopping-proxy/internal/core"
	"hanpick.kr/shopping-proxy/internal/store"
)

const productReply = `**상품명:** 삼성 갤럭시 버즈3 프로
**카테고리:** 이어폰
**가격:** 219,000원
**상품평:** 별점 4.6/5 (리뷰 3,210개)
**추천 이유:** 노이즈 캔슬링 성능이 뛰어납니다.
**구매 링크:** https://example.com/buds3-pro`

type scriptedModel struct {
	content string
}

func (m *scriptedModel) Reply(ctx context.Context, history []store.Message) (*core.ModelReply, error) {
	return &core.ModelReply{Content: m.content}, nil
}

type staticImageGenerator struct{}

func (staticImageGenerator) GenerateImage(ctx context.Context, productName string) (string, error) {
	return "data:image/jpeg;base64,abcd", nil
}

type fakeKV struct {
	data map[string]string
}

func (f *fakeKV) Get(key string) (string, error)        { return f.data[key], nil }
func (f *fakeKV) Put(key string, value string) error    { f.data[key] = value; return nil }
func (f *fakeKV) Delete(key string) error               { delete(f.data, key); return nil }

func newTestServer(t *testing.T) (*httptest.Server, *store.AdminStore) {
	t.Helper()

	config.AppConfig.JWTSecret = "test-secret"
	config.AppConfig.AdminPassword = "admin123"

	adminStore := store.NewAdminStore(&fakeKV{data: make(map[string]string)})
	sessions := core.NewSessionManager(func() *core.Session {
		return core.NewSession(
			core.NewConversationStore(core.GreetingMessage),
			&scriptedModel{content: productReply},
			core.NewEnricher(staticImageGenerator{}),
			adminStore,
			config.AppConfig.AdminPassword,
		)
	})

	srv := httptest.NewServer(NewRouter(NewAPIHandler(sessions, adminStore)))
	t.Cleanup(srv.Close)
	return srv, adminStore
}

func doJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func loginAs(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/login", "", LoginRequest{Email: email})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var loginResp LoginResponse
	decode(t, resp, &loginResp)
	require.NotEmpty(t, loginResp.Token)
	return loginResp.Token
}

func TestLoginRejectsInvalidEmail(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/login", "", LoginRequest{Email: "no-at-sign"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMessagesRequireToken(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/messages", "", PostMessageRequest{Content: "추천해줘"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChatAndPurchaseFlow(t *testing.T) {
	srv, adminStore := newTestServer(t)
	token := loginAs(t, srv, "user@example.com")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/messages", token, PostMessageRequest{Content: "이어폰 추천해줘"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var msg store.Message
	decode(t, resp, &msg)
	require.NotNil(t, msg.Product)
	require.Equal(t, "삼성 갤럭시 버즈3 프로", msg.Product.Name)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/purchase", token, PurchaseRequestBody{MessageID: msg.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var purchase PurchaseResponse
	decode(t, resp, &purchase)
	require.NotEmpty(t, purchase.RequestID)

	requests, err := adminStore.GetPurchaseRequests()
	require.NoError(t, err)
	require.Len(t, requests, 1)
	require.Equal(t, "user@example.com", requests[0].UserEmail)
}

func TestAdminFlow(t *testing.T) {
	srv, adminStore := newTestServer(t)
	token := loginAs(t, srv, "admin@example.com")

	// A plain user token cannot reach admin routes.
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/admin/stats", token, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Wrong password is a retryable validation failure.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/admin/login", token, AdminLoginRequest{Password: "nope"})
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/admin/login", token, AdminLoginRequest{Password: "admin123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tokenResp map[string]string
	decode(t, resp, &tokenResp)
	adminToken := tokenResp["token"]
	require.NotEmpty(t, adminToken)

	// Seed one request to have something to update.
	user, err := adminStore.UpsertUser("user@example.com")
	require.NoError(t, err)
	requestID, err := adminStore.CreatePurchaseRequest(user.ID, user.Email, store.Product{
		Name: "LG 그램 17", Category: "노트북", Description: "가볍습니다",
		Price: "2,190,000원", Link: "https://example.com/gram", Rating: "별점 4.7/5",
	})
	require.NoError(t, err)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/admin/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats store.DashboardStats
	decode(t, resp, &stats)
	require.Equal(t, 1, stats.TotalPurchaseRequests)

	notes := "정상적으로 주문 완료되었습니다."
	resp = doJSON(t, http.MethodPatch, srv.URL+"/api/admin/requests/"+requestID, adminToken,
		UpdateRequestBody{Status: store.StatusCompleted, AdminNotes: &notes})
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	requests, err := adminStore.GetPurchaseRequests()
	require.NoError(t, err)
	require.Equal(t, store.StatusCompleted, requests[0].Status)
	require.NotNil(t, requests[0].CompletedDate)

	resp = doJSON(t, http.MethodPatch, srv.URL+"/api/admin/requests/req_missing", adminToken,
		UpdateRequestBody{Status: store.StatusCancelled})
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
