package store

import "time"

// SeedDemoData populates the collections with sample users and requests so
// the dashboard has something to show during development. Collections that
// already hold data are left alone.
func (s *AdminStore) SeedDemoData() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if len(s.loadUsers()) == 0 {
		users := []User{
			{
				Email:                 "user1@example.com",
				ID:                    "user_1",
				JoinDate:              now.Add(-7 * 24 * time.Hour),
				LastActive:            now.Add(-24 * time.Hour),
				TotalPurchaseRequests: 2,
			},
			{
				Email:                 "user2@example.com",
				ID:                    "user_2",
				JoinDate:              now.Add(-3 * 24 * time.Hour),
				LastActive:            now,
				TotalPurchaseRequests: 1,
			},
		}
		if err := s.saveUsers(users); err != nil {
			return err
		}
	}

	if len(s.loadRequests()) == 0 {
		completed := now.Add(-12 * time.Hour)
		requests := []PurchaseRequest{
			{
				ID:        "req_demo_1",
				UserID:    "user_1",
				UserEmail: "user1@example.com",
				Product: Product{
					Name:        "애플 에어팟 프로 2세대",
					Category:    "이어폰",
					Description: "최신 노이즈 캔슬링 기술이 적용된 프리미엄 무선 이어폰",
					Price:       "359,000원",
					Link:        "https://example.com/airpods-pro",
					Rating:      "별점 4.8/5 (리뷰 2,341개)",
				},
				Status:      StatusPending,
				RequestDate: now.Add(-2 * time.Hour),
			},
			{
				ID:        "req_demo_2",
				UserID:    "user_2",
				UserEmail: "user2@example.com",
				Product: Product{
					Name:        "삼성 갤럭시 S24 Ultra",
					Category:    "스마트폰",
					Description: "AI 기능이 강화된 프리미엄 스마트폰",
					Price:       "1,698,400원",
					Link:        "https://example.com/galaxy-s24-ultra",
					Rating:      "별점 4.9/5 (리뷰 1,892개)",
				},
				Status:        StatusCompleted,
				RequestDate:   now.Add(-24 * time.Hour),
				CompletedDate: &completed,
				AdminNotes:    "정상적으로 주문 완료되었습니다.",
			},
			{
				ID:        "req_demo_3",
				UserID:    "user_1",
				UserEmail: "user1@example.com",
				Product: Product{
					Name:        "LG 그램 17인치 노트북",
					Category:    "노트북",
					Description: "가벼우면서도 고성능을 자랑하는 17인치 노트북",
					Price:       "2,190,000원",
					Link:        "https://example.com/lg-gram-17",
					Rating:      "별점 4.7/5 (리뷰 567개)",
				},
				Status:      StatusProcessing,
				RequestDate: now.Add(-6 * time.Hour),
				AdminNotes:  "재고 확인 중입니다.",
			},
		}
		if err := s.saveRequests(requests); err != nil {
			return err
		}
	}

	return nil
}
