package store

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	usersKey    = "adminUsers"
	requestsKey = "purchaseRequests"
)

// AdminStore manages the user and purchase-request collections on top of a
// key-value store. Each collection is one JSON array under a fixed key.
// All mutations take the store lock and re-read the collection immediately
// before writing, so rapid successive calls never clobber each other.
type AdminStore struct {
	kv  KVStore
	mu  sync.Mutex
	now func() time.Time
}

func NewAdminStore(kv KVStore) *AdminStore {
	return &AdminStore{kv: kv, now: time.Now}
}

// loadUsers fails closed: a missing or corrupt payload yields an empty
// collection, and the next write re-establishes a fresh one.
func (s *AdminStore) loadUsers() []User {
	raw, err := s.kv.Get(usersKey)
	if err != nil {
		log.Printf("Failed to read %s, treating as empty: %v", usersKey, err)
		return nil
	}
	if raw == "" {
		return nil
	}
	var users []User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		log.Printf("Corrupt %s payload, treating as empty: %v", usersKey, err)
		return nil
	}
	return users
}

func (s *AdminStore) saveUsers(users []User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("failed to marshal users: %w", err)
	}
	return s.kv.Put(usersKey, string(data))
}

func (s *AdminStore) loadRequests() []PurchaseRequest {
	raw, err := s.kv.Get(requestsKey)
	if err != nil {
		log.Printf("Failed to read %s, treating as empty: %v", requestsKey, err)
		return nil
	}
	if raw == "" {
		return nil
	}
	var requests []PurchaseRequest
	if err := json.Unmarshal([]byte(raw), &requests); err != nil {
		log.Printf("Corrupt %s payload, treating as empty: %v", requestsKey, err)
		return nil
	}
	return requests
}

func (s *AdminStore) saveRequests(requests []PurchaseRequest) error {
	data, err := json.Marshal(requests)
	if err != nil {
		return fmt.Errorf("failed to marshal purchase requests: %w", err)
	}
	return s.kv.Put(requestsKey, string(data))
}

func (s *AdminStore) GetUsers() ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadUsers(), nil
}

func (s *AdminStore) GetPurchaseRequests() ([]PurchaseRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadRequests(), nil
}

// UpsertUser matches by email. New users get a generated id, joinDate and a
// zero request count; existing users only get their lastActive refreshed.
// Id and joinDate are never overwritten.
func (s *AdminStore) UpsertUser(email string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	users := s.loadUsers()
	for i := range users {
		if users[i].Email == email {
			users[i].LastActive = now
			if err := s.saveUsers(users); err != nil {
				return User{}, err
			}
			return users[i], nil
		}
	}

	user := User{
		Email:                 email,
		ID:                    fmt.Sprintf("user_%d", now.UnixMilli()),
		JoinDate:              now,
		LastActive:            now,
		TotalPurchaseRequests: 0,
	}
	users = append(users, user)
	if err := s.saveUsers(users); err != nil {
		return User{}, err
	}
	return user, nil
}

// CreatePurchaseRequest appends a pending request with a generated id and
// recomputes the submitting user's request count. The product argument is
// copied by value, so later conversation-side mutation never reaches the
// stored snapshot.
func (s *AdminStore) CreatePurchaseRequest(userID, userEmail string, product Product) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	requests := s.loadRequests()
	request := PurchaseRequest{
		ID:          newRequestID(now),
		UserID:      userID,
		UserEmail:   userEmail,
		Product:     product,
		Status:      StatusPending,
		RequestDate: now,
	}
	requests = append(requests, request)
	if err := s.saveRequests(requests); err != nil {
		return "", err
	}

	if err := s.updateUserRequestCount(userEmail, requests); err != nil {
		return "", err
	}
	return request.ID, nil
}

// newRequestID combines a millisecond timestamp with random entropy so two
// requests in the same millisecond still get distinct ids.
func newRequestID(now time.Time) string {
	entropy := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("req_%d_%s", now.UnixMilli(), entropy)
}

func (s *AdminStore) updateUserRequestCount(userEmail string, requests []PurchaseRequest) error {
	users := s.loadUsers()
	for i := range users {
		if users[i].Email != userEmail {
			continue
		}
		count := 0
		for _, r := range requests {
			if r.UserEmail == userEmail {
				count++
			}
		}
		users[i].TotalPurchaseRequests = count
		return s.saveUsers(users)
	}
	return nil
}

// UpdatePurchaseRequest merges a status and optional admin notes into the
// request with the given id. The first transition into completed sets
// completedDate; it is never set again. Returns false when the id is
// unknown.
func (s *AdminStore) UpdatePurchaseRequest(id string, status RequestStatus, adminNotes *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	requests := s.loadRequests()
	for i := range requests {
		if requests[i].ID != id {
			continue
		}
		if status != "" {
			requests[i].Status = status
		}
		if adminNotes != nil {
			requests[i].AdminNotes = *adminNotes
		}
		if requests[i].Status == StatusCompleted && requests[i].CompletedDate == nil {
			completed := s.now()
			requests[i].CompletedDate = &completed
		}
		if err := s.saveRequests(requests); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// ComputeStats aggregates both collections at call time. Nothing is cached;
// the admin view always reflects the latest persisted state.
func (s *AdminStore) ComputeStats() (DashboardStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.loadUsers()
	requests := s.loadRequests()
	now := s.now()

	stats := DashboardStats{
		TotalUsers:            len(users),
		TotalPurchaseRequests: len(requests),
	}
	for _, r := range requests {
		switch r.Status {
		case StatusPending:
			stats.PendingRequests++
		case StatusCompleted:
			stats.CompletedRequests++
		}
		if sameDay(r.RequestDate, now) {
			stats.TodayRequests++
		}
		if sameMonth(r.RequestDate, now) {
			stats.MonthlyRequests++
		}
	}
	return stats, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sameMonth(a, b time.Time) bool {
	ay, am, _ := a.Date()
	by, bm, _ := b.Date()
	return ay == by && am == bm
}

type backupPayload struct {
	Users            []User            `json:"users"`
	PurchaseRequests []PurchaseRequest `json:"purchaseRequests"`
	ExportDate       time.Time         `json:"exportDate"`
}

// ExportData serializes both collections for backup.
func (s *AdminStore) ExportData() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload := backupPayload{
		Users:            s.loadUsers(),
		PurchaseRequests: s.loadRequests(),
		ExportDate:       s.now(),
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal backup: %w", err)
	}
	return data, nil
}

// ImportData restores collections from a backup payload. Only the
// collections present in the payload are replaced.
func (s *AdminStore) ImportData(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload backupPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("failed to parse backup: %w", err)
	}
	if payload.Users != nil {
		if err := s.saveUsers(payload.Users); err != nil {
			return err
		}
	}
	if payload.PurchaseRequests != nil {
		if err := s.saveRequests(payload.PurchaseRequests); err != nil {
			return err
		}
	}
	return nil
}

// ClearAllData drops both collections.
func (s *AdminStore) ClearAllData() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(usersKey); err != nil {
		return err
	}
	return s.kv.Delete(requestsKey)
}
