package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const wellFormedReply = `요청하신 조건에 가장 잘 맞는 상품을 찾았습니다.

**상품명:** 삼성 갤럭시 버즈3 프로
**카테고리:** 이어폰
**가격:** 219,000원
**상품평:** 별점 4.6/5 (리뷰 3,210개)
**추천 이유:** 노이즈 캔슬링 성능이 뛰어나고 가격 대비 음질이 우수합니다.
**구매 링크:** https://example.com/buds3-pro`

func TestParseProductWellFormed(t *testing.T) {
	product := ParseProduct(wellFormedReply)
	require.NotNil(t, product)

	require.Equal(t, "삼성 갤럭시 버즈3 프로", product.Name)
	require.Equal(t, "이어폰", product.Category)
	require.Equal(t, "219,000원", product.Price)
	require.Equal(t, "별점 4.6/5 (리뷰 3,210개)", product.Rating)
	require.Equal(t, "노이즈 캔슬링 성능이 뛰어나고 가격 대비 음질이 우수합니다.", product.Description)
	require.Equal(t, "https://example.com/buds3-pro", product.Link)
	require.Empty(t, product.ImageURL)
}

func TestParseProductMissingMarkerFailsClosed(t *testing.T) {
	missingPrice := `**상품명:** LG 그램 17
**카테고리:** 노트북
**상품평:** 별점 4.7/5 (리뷰 567개)
**추천 이유:** 가볍고 배터리가 오래갑니다.
**구매 링크:** https://example.com/lg-gram`

	require.Nil(t, ParseProduct(missingPrice))
	require.Nil(t, ParseProduct("그냥 일반적인 답변입니다."))
	require.Nil(t, ParseProduct(""))
}

func TestParseProductFirstMatchWins(t *testing.T) {
	duplicated := `**상품명:** 첫 번째 상품
**카테고리:** 가전
**가격:** 100,000원
**가격:** 200,000원
**상품평:** 별점 4.5/5
**추천 이유:** 첫 번째 가격이 정답입니다.
**구매 링크:** https://example.com/first
**구매 링크:** https://example.com/second`

	product := ParseProduct(duplicated)
	require.NotNil(t, product)
	require.Equal(t, "100,000원", product.Price)
	require.Equal(t, "https://example.com/first", product.Link)
}

func TestParseProductDescriptionStopsBeforeLinkMarker(t *testing.T) {
	reply := `**상품명:** 다이슨 V15
**카테고리:** 청소기
**가격:** 990,000원
**상품평:** 별점 4.9/5 (리뷰 812개)
**추천 이유:** 흡입력이 강하고 구매 링크 할인 행사 중이라 지금이 적기입니다.
**구매 링크:** https://example.com/dyson-v15`

	product := ParseProduct(reply)
	require.NotNil(t, product)
	// The bare words "구매 링크" inside the reasoning are not the marker and
	// must survive; the formatted marker line terminates the section.
	require.Equal(t, "흡입력이 강하고 구매 링크 할인 행사 중이라 지금이 적기입니다.", product.Description)
	require.NotContains(t, product.Description, "https://")
}

func TestParseProductRejectsLinkWithWhitespace(t *testing.T) {
	reply := `**상품명:** 무선 키보드
**카테고리:** 주변기기
**가격:** 59,000원
**상품평:** 별점 4.4/5
**추천 이유:** 타건감이 좋습니다.
**구매 링크:** 여기를 클릭하세요`

	require.Nil(t, ParseProduct(reply))
}

func TestParseProductRejectsEmptyFieldValues(t *testing.T) {
	reply := `**상품명:** 무선 마우스
**카테고리:**
**가격:** 29,000원
**상품평:** 별점 4.2/5
**추천 이유:** 손에 잘 맞습니다.
**구매 링크:** https://example.com/mouse`

	require.Nil(t, ParseProduct(reply))
}

func TestParseProductIsDeterministic(t *testing.T) {
	first := ParseProduct(wellFormedReply)
	second := ParseProduct(wellFormedReply)
	require.Equal(t, first, second)
}
