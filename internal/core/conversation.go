package core

import (
	"sync"

	"hanpick.kr/shopping-proxy/internal/store"
)

// EnrichmentTrigger is invoked exactly once when a message enters the
// "AI message with a product but no image" state.
type EnrichmentTrigger func(messageID int64, productName string)

// ConversationStore holds the append-only ordered message list for one
// session. Messages are immutable once appended except for the single
// permitted patch: filling in a product's image URL.
type ConversationStore struct {
	mu        sync.Mutex
	messages  []store.Message
	nextID    int64
	triggered map[int64]bool
	onPending EnrichmentTrigger
}

func NewConversationStore(greeting string) *ConversationStore {
	c := &ConversationStore{
		nextID:    1,
		triggered: make(map[int64]bool),
	}
	c.messages = append(c.messages, store.Message{
		ID:      c.takeID(),
		Role:    store.RoleAI,
		Content: greeting,
	})
	return c
}

func (c *ConversationStore) takeID() int64 {
	id := c.nextID
	c.nextID++
	return id
}

// SetEnrichmentTrigger registers the callback fired when an appended AI
// message carries a product without an image. Must be set before messages
// with products are appended.
func (c *ConversationStore) SetEnrichmentTrigger(fn EnrichmentTrigger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPending = fn
}

// Append assigns the next id, adds the message to the end of the list and
// returns the stored message. The enrichment trigger fires at most once per
// message, keyed on the message id, never on later reads of the store.
func (c *ConversationStore) Append(msg store.Message) store.Message {
	c.mu.Lock()
	msg.ID = c.takeID()
	if msg.Product != nil {
		product := *msg.Product
		msg.Product = &product
	}
	c.messages = append(c.messages, msg)

	var trigger EnrichmentTrigger
	var productName string
	if msg.Role == store.RoleAI && msg.Product != nil && msg.Product.ImageURL == "" && !c.triggered[msg.ID] {
		c.triggered[msg.ID] = true
		trigger = c.onPending
		productName = msg.Product.Name
	}
	c.mu.Unlock()

	// Fired outside the lock; the trigger routinely calls back into the store.
	if trigger != nil {
		trigger(msg.ID, productName)
	}
	return msg
}

// Messages returns a snapshot of the conversation. Products are copied so
// callers never observe a patch mid-write.
func (c *ConversationStore) Messages() []store.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]store.Message, len(c.messages))
	copy(out, c.messages)
	for i := range out {
		if out[i].Product != nil {
			product := *out[i].Product
			out[i].Product = &product
		}
	}
	return out
}

// Get returns the message with the given id.
func (c *ConversationStore) Get(id int64) (store.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, msg := range c.messages {
		if msg.ID == id {
			if msg.Product != nil {
				product := *msg.Product
				msg.Product = &product
			}
			return msg, true
		}
	}
	return store.Message{}, false
}

// PatchProductImage sets the image URL on the AI message with the given id.
// It is a silent no-op when the message is gone (conversation was reset) or
// already has an image, which makes racing and stale enrichment completions
// harmless: the first write wins and nothing is ever reset.
func (c *ConversationStore) PatchProductImage(id int64, imageURL string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.messages {
		msg := &c.messages[i]
		if msg.ID != id || msg.Role != store.RoleAI || msg.Product == nil {
			continue
		}
		if msg.Product.ImageURL != "" {
			return false
		}
		msg.Product.ImageURL = imageURL
		return true
	}
	return false
}

// Reset drops everything except the initial greeting message. Pending
// enrichment completions for dropped messages land in PatchProductImage's
// no-op path.
func (c *ConversationStore) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = c.messages[:1]
	c.triggered = make(map[int64]bool)
}
