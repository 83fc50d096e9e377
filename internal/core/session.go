package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"hanpick.kr/shopping-proxy/internal/store"
)

// GreetingMessage opens every conversation and survives logout resets.
const GreetingMessage = "안녕하세요! AI 쇼핑 구매 대행 서비스입니다. 어떤 상품을 찾아드릴까요? 당신에게 딱 맞는 최고의 상품 하나를 찾아드리겠습니다."

const (
	modelErrorMessage = "오류가 발생했습니다. 잠시 후 다시 시도해주세요."
	emptyReplyMessage = "죄송합니다, 답변을 생성하지 못했습니다."
	logoutMessage     = "로그아웃되었습니다. 다음에 또 만나요!"
)

var (
	ErrLoginRequired        = errors.New("login required")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrInvalidAdminPassword = errors.New("invalid admin password")
	ErrEmptyMessage         = errors.New("message is empty")
	ErrNoProduct            = errors.New("message carries no product")
	ErrMessageNotFound      = errors.New("message not found")
)

// Session state names.
const (
	StateAnonymous     = "anonymous"
	StateAuthenticated = "authenticated"
	StateAdminOverlay  = "authenticated+adminOverlay"
)

// Session orchestrates one user's conversation: turns, login/logout, the
// admin overlay and purchase requests.
type Session struct {
	conv          *ConversationStore
	model         ModelAdapter
	enricher      *Enricher
	admin         *store.AdminStore
	adminPassword string

	mu        sync.Mutex
	user      *store.User
	adminMode bool
	loading   bool
}

func NewSession(conv *ConversationStore, model ModelAdapter, enricher *Enricher, admin *store.AdminStore, adminPassword string) *Session {
	s := &Session{
		conv:          conv,
		model:         model,
		enricher:      enricher,
		admin:         admin,
		adminPassword: adminPassword,
	}
	conv.SetEnrichmentTrigger(s.startEnrichment)
	return s
}

// startEnrichment runs one image enrichment in the background and routes the
// completion back to its message by id. A completion that arrives after the
// conversation was reset hits the patch no-op and is discarded.
func (s *Session) startEnrichment(messageID int64, productName string) {
	go func() {
		imageURL := s.enricher.Enrich(context.Background(), productName)
		s.conv.PatchProductImage(messageID, imageURL)
	}()
}

// Login authenticates by email. The only syntactic requirement is an "@";
// this is a demo-grade mechanism by design.
func (s *Session) Login(email string) (store.User, error) {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return store.User{}, ErrInvalidEmail
	}

	user, err := s.admin.UpsertUser(email)
	if err != nil {
		return store.User{}, fmt.Errorf("failed to upsert user: %w", err)
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	s.conv.Append(store.Message{
		Role:    store.RoleSystem,
		Content: fmt.Sprintf("환영합니다, %s님! 이제부터 쇼핑을 시작할 수 있습니다.", email),
	})
	return user, nil
}

// Logout clears the user and resets the conversation to its single greeting
// message, then notes the logout.
func (s *Session) Logout() {
	s.mu.Lock()
	s.user = nil
	s.adminMode = false
	s.mu.Unlock()

	s.conv.Reset()
	s.conv.Append(store.Message{Role: store.RoleSystem, Content: logoutMessage})
}

// AdminLogin raises the admin overlay when the shared secret matches. The
// check is a plain string comparison, retryable indefinitely.
func (s *Session) AdminLogin(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return ErrLoginRequired
	}
	if password != s.adminPassword {
		return ErrInvalidAdminPassword
	}
	s.adminMode = true
	return nil
}

// AdminLogout drops the overlay but keeps the user session.
func (s *Session) AdminLogout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adminMode = false
}

func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.user == nil:
		return StateAnonymous
	case s.adminMode:
		return StateAdminOverlay
	default:
		return StateAuthenticated
	}
}

func (s *Session) CurrentUser() (store.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return store.User{}, false
	}
	return *s.user, true
}

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Session) Messages() []store.Message {
	return s.conv.Messages()
}

// SendMessage runs one user turn: append the user message, call the model
// with the full history, parse a product out of the reply and append the AI
// message. A model failure becomes a canned Korean chat message, never an
// error to the caller. Loading covers the whole round trip and is always
// cleared.
func (s *Session) SendMessage(ctx context.Context, text string) (store.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return store.Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return store.Message{}, ErrLoginRequired
	}
	s.loading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	s.conv.Append(store.Message{Role: store.RoleUser, Content: text})

	reply, err := s.model.Reply(ctx, s.conv.Messages())
	if err != nil {
		log.Printf("Model call failed: %v", err)
		return s.conv.Append(store.Message{Role: store.RoleAI, Content: modelErrorMessage}), nil
	}

	content := reply.Content
	if content == "" {
		content = emptyReplyMessage
	}

	aiMsg := store.Message{
		Role:    store.RoleAI,
		Content: content,
		Sources: reply.Sources,
	}
	// A failed parse is not an error; the reply stays plain text.
	if product := ParseProduct(reply.Content); product != nil {
		aiMsg.Product = product
	}

	// Appending triggers image enrichment when the message carries a product.
	return s.conv.Append(aiMsg), nil
}

// RequestPurchase files a purchase-proxy request for the given product. The
// snapshot is whatever the product holds at request time, including the
// current image URL (possibly still empty). The confirmation message quotes
// the last 8 characters of the request id.
func (s *Session) RequestPurchase(product store.Product) (string, error) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return "", ErrLoginRequired
	}
	user := *s.user
	s.mu.Unlock()

	requestID, err := s.admin.CreatePurchaseRequest(user.ID, user.Email, product)
	if err != nil {
		return "", fmt.Errorf("failed to create purchase request: %w", err)
	}

	s.conv.Append(store.Message{
		Role: store.RoleSystem,
		Content: fmt.Sprintf("'%s' 상품에 대한 구매 대행 요청이 관리자에게 전송되었습니다. 곧 연락드리겠습니다. (요청 번호: %s)",
			product.Name, shortRequestID(requestID)),
	})
	return requestID, nil
}

// RequestPurchaseFromMessage resolves the product on a conversation message
// and files the request from its current snapshot.
func (s *Session) RequestPurchaseFromMessage(messageID int64) (string, error) {
	msg, ok := s.conv.Get(messageID)
	if !ok {
		return "", ErrMessageNotFound
	}
	if msg.Product == nil {
		return "", ErrNoProduct
	}
	return s.RequestPurchase(*msg.Product)
}

func shortRequestID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}
