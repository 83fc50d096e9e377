package core

import (
	"context"
	"fmt"

	"hanpick.kr/shopping-proxy/internal/config"
	"hanpick.kr/shopping-proxy/internal/store"
)

const shoppingSystemInstruction = `You are an expert AI shopping purchase proxy for users in South Korea. Your primary goal is to find and recommend the single best product based on the user's request. You must be decisive and provide only one final choice.

After using your web search tool to research, analyze, and select the best product, your final output MUST strictly follow this format in Korean. Do not add any extra text before or after this structure. The user's application will parse this exact format.

**상품명:** [제조사, 브랜드, 모델명 등 검색에 용이한 정확한 전체 상품명을 기입하세요. 이 이름은 이미지 검색의 정확도를 위해 매우 중요합니다.]
**카테고리:** [A single, relevant product category, e.g., 남성 등산화, 주방 가전, 유아용 장난감]
**가격:** [Price in KRW]
**상품평:** [Customer rating summary, e.g., 별점 4.8/5 (리뷰 1,234개)]
**추천 이유:** [A concise reason for choosing this specific product, under 150 characters]
**구매 링크:** [The direct, final URL to the product purchase page. This is critical for the next step of fetching the image.]`

// ModelReply is the raw outcome of one model round trip: the reply text plus
// any web grounding sources the provider reported.
type ModelReply struct {
	Content string
	Sources []store.Source
}

// ModelAdapter generates a reply to the full ordered conversation history.
// Only role and content of each message are sent to the provider.
type ModelAdapter interface {
	Reply(ctx context.Context, history []store.Message) (*ModelReply, error)
}

// NewModelAdapter builds the chat adapter for the configured provider.
func NewModelAdapter() (ModelAdapter, error) {
	switch config.AppConfig.LLMProvider {
	case "gemini":
		return NewGeminiService()
	case "openai":
		return NewOpenAIService()
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", config.AppConfig.LLMProvider)
	}
}
