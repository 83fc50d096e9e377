package store

import "time"

type Role string

const (
	RoleUser   Role = "user"
	RoleAI     Role = "ai"
	RoleSystem Role = "system"
)

// Product is a single shopping recommendation extracted from a model reply.
// ImageURL stays empty until enrichment fills it in.
type Product struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Price       string `json:"price"`
	ImageURL    string `json:"imageUrl"`
	Link        string `json:"link"`
	Rating      string `json:"rating"`
}

// Source is a web grounding reference attached to an AI message.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type Message struct {
	ID      int64    `json:"id"`
	Role    Role     `json:"role"`
	Content string   `json:"content"`
	Product *Product `json:"product,omitempty"`
	Sources []Source `json:"sources,omitempty"`
}

type User struct {
	Email                 string    `json:"email"`
	ID                    string    `json:"id,omitempty"`
	JoinDate              time.Time `json:"joinDate"`
	LastActive            time.Time `json:"lastActive"`
	TotalPurchaseRequests int       `json:"totalPurchaseRequests"`
}

type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusProcessing RequestStatus = "processing"
	StatusCompleted  RequestStatus = "completed"
	StatusCancelled  RequestStatus = "cancelled"
)

// PurchaseRequest tracks a purchase-proxy request. Product is a snapshot
// taken at request time, not a live reference into the conversation.
type PurchaseRequest struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	UserEmail     string        `json:"userEmail"`
	Product       Product       `json:"product"`
	Status        RequestStatus `json:"status"`
	RequestDate   time.Time     `json:"requestDate"`
	CompletedDate *time.Time    `json:"completedDate,omitempty"`
	AdminNotes    string        `json:"adminNotes,omitempty"`
}

// DashboardStats is derived on demand from the user and request collections
// and never stored.
type DashboardStats struct {
	TotalUsers            int `json:"totalUsers"`
	TotalPurchaseRequests int `json:"totalPurchaseRequests"`
	PendingRequests       int `json:"pendingRequests"`
	CompletedRequests     int `json:"completedRequests"`
	TodayRequests         int `json:"todayRequests"`
	MonthlyRequests       int `json:"monthlyRequests"`
}
