package core

import (
	"regexp"
	"strings"

	"hanpick.kr/shopping-proxy/internal/store"
)

// The model is instructed to emit its recommendation in a fixed Korean
// six-marker format. Each marker captures the rest of its line, except the
// reasoning section which runs until the purchase-link marker.
var (
	nameRe     = regexp.MustCompile(`\*\*상품명:\*\*\s*(.*)`)
	categoryRe = regexp.MustCompile(`\*\*카테고리:\*\*\s*(.*)`)
	priceRe    = regexp.MustCompile(`\*\*가격:\*\*\s*(.*)`)
	ratingRe   = regexp.MustCompile(`\*\*상품평:\*\*\s*(.*)`)
	reasonRe   = regexp.MustCompile(`(?s)\*\*추천 이유:\*\*\s*(.*)`)
	linkRe     = regexp.MustCompile(`\*\*구매 링크:\*\*\s*(https?://\S+)`)
)

const linkMarker = "**구매 링크:**"

// ParseProduct extracts a product record from raw model output. All six
// markers must be present or the whole parse fails and nil is returned, so a
// half-formed reply degrades to plain text instead of a broken card.
//
// Each field uses the first occurrence of its marker. The reasoning section
// deliberately scans forward only to the first link marker after it, so a
// repeated marker later in the text is ignored.
func ParseProduct(text string) *store.Product {
	name := nameRe.FindStringSubmatch(text)
	category := categoryRe.FindStringSubmatch(text)
	price := priceRe.FindStringSubmatch(text)
	rating := ratingRe.FindStringSubmatch(text)
	reason := reasonRe.FindStringSubmatch(text)
	link := linkRe.FindStringSubmatch(text)

	if name == nil || category == nil || price == nil || rating == nil || reason == nil || link == nil {
		return nil
	}

	description := strings.TrimSpace(reason[1])
	if idx := strings.Index(description, linkMarker); idx != -1 {
		description = strings.TrimSpace(description[:idx])
	}

	product := &store.Product{
		Name:        strings.TrimSpace(name[1]),
		Category:    strings.TrimSpace(category[1]),
		Price:       strings.TrimSpace(price[1]),
		Rating:      strings.TrimSpace(rating[1]),
		Description: description,
		Link:        strings.TrimSpace(link[1]),
	}

	// A marker with an empty value is as useless as a missing one.
	if product.Name == "" || product.Category == "" || product.Price == "" ||
		product.Rating == "" || product.Description == "" || product.Link == "" {
		return nil
	}

	return product
}
