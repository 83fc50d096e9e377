package core

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"hanpick.kr/shopping-proxy/internal/store"
)

func productFixture() *store.Product {
	return &store.Product{
		Name:        "애플 에어팟 프로 2세대",
		Category:    "이어폰",
		Description: "노이즈 캔슬링이 뛰어난 무선 이어폰",
		Price:       "359,000원",
		Link:        "https://example.com/airpods-pro",
		Rating:      "별점 4.8/5",
	}
}

func TestConversationAppendAssignsOrderedIDs(t *testing.T) {
	conv := NewConversationStore(GreetingMessage)

	first := conv.Append(store.Message{Role: store.RoleUser, Content: "안녕"})
	second := conv.Append(store.Message{Role: store.RoleAI, Content: "반갑습니다"})

	require.Greater(t, second.ID, first.ID)

	messages := conv.Messages()
	require.Len(t, messages, 3)
	require.Equal(t, GreetingMessage, messages[0].Content)
	require.Equal(t, first.ID, messages[1].ID)
	require.Equal(t, second.ID, messages[2].ID)
}

func TestPatchProductImageIsIdempotent(t *testing.T) {
	conv := NewConversationStore(GreetingMessage)
	msg := conv.Append(store.Message{Role: store.RoleAI, Content: "추천", Product: productFixture()})

	require.True(t, conv.PatchProductImage(msg.ID, "https://img.example.com/a.jpg"))
	require.False(t, conv.PatchProductImage(msg.ID, "https://img.example.com/b.jpg"))

	patched, ok := conv.Get(msg.ID)
	require.True(t, ok)
	require.Equal(t, "https://img.example.com/a.jpg", patched.Product.ImageURL)
}

func TestPatchProductImageIgnoresUnknownAndNonProductMessages(t *testing.T) {
	conv := NewConversationStore(GreetingMessage)
	plain := conv.Append(store.Message{Role: store.RoleAI, Content: "텍스트 답변"})
	user := conv.Append(store.Message{Role: store.RoleUser, Content: "질문"})

	require.False(t, conv.PatchProductImage(plain.ID, "https://img.example.com/a.jpg"))
	require.False(t, conv.PatchProductImage(user.ID, "https://img.example.com/a.jpg"))
	require.False(t, conv.PatchProductImage(99999, "https://img.example.com/a.jpg"))
}

func TestEnrichmentTriggerFiresOncePerMessage(t *testing.T) {
	conv := NewConversationStore(GreetingMessage)

	var fired int64
	conv.SetEnrichmentTrigger(func(messageID int64, productName string) {
		atomic.AddInt64(&fired, 1)
	})

	msg := conv.Append(store.Message{Role: store.RoleAI, Content: "추천", Product: productFixture()})
	require.Equal(t, int64(1), atomic.LoadInt64(&fired))

	// Reads of the store must not re-trigger.
	conv.Messages()
	conv.Messages()
	conv.Get(msg.ID)
	require.Equal(t, int64(1), atomic.LoadInt64(&fired))

	// Neither do messages without a pending product.
	conv.Append(store.Message{Role: store.RoleAI, Content: "텍스트"})
	conv.Append(store.Message{Role: store.RoleUser, Content: "질문"})
	enriched := productFixture()
	enriched.ImageURL = "https://img.example.com/done.jpg"
	conv.Append(store.Message{Role: store.RoleAI, Content: "이미 보강됨", Product: enriched})
	require.Equal(t, int64(1), atomic.LoadInt64(&fired))
}

func TestResetDropsEverythingButGreeting(t *testing.T) {
	conv := NewConversationStore(GreetingMessage)
	msg := conv.Append(store.Message{Role: store.RoleAI, Content: "추천", Product: productFixture()})
	conv.Append(store.Message{Role: store.RoleUser, Content: "질문"})

	conv.Reset()

	messages := conv.Messages()
	require.Len(t, messages, 1)
	require.Equal(t, GreetingMessage, messages[0].Content)

	// A stale enrichment completion for the dropped message is discarded.
	require.False(t, conv.PatchProductImage(msg.ID, "https://img.example.com/late.jpg"))
}

func TestMessagesReturnsIsolatedSnapshots(t *testing.T) {
	conv := NewConversationStore(GreetingMessage)
	msg := conv.Append(store.Message{Role: store.RoleAI, Content: "추천", Product: productFixture()})

	snapshot := conv.Messages()
	snapshot[1].Product.ImageURL = "tampered"

	current, ok := conv.Get(msg.ID)
	require.True(t, ok)
	require.Empty(t, current.Product.ImageURL)
}
