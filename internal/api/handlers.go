package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"hanpick.kr/shopping-proxy/internal/auth"
	"hanpick.kr/shopping-proxy/internal/core"
	"hanpick.kr/shopping-proxy/internal/store"
)

type APIHandler struct {
	sessions   *core.SessionManager
	adminStore *store.AdminStore
}

func NewAPIHandler(sessions *core.SessionManager, adminStore *store.AdminStore) *APIHandler {
	return &APIHandler{sessions: sessions, adminStore: adminStore}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		email, admin, err := auth.ValidateJWT(tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), "userEmail", email)
		ctx = context.WithValue(ctx, "isAdmin", admin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *APIHandler) AdminOnlyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if admin, _ := r.Context().Value("isAdmin").(bool); !admin {
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type LoginRequest struct {
	Email string `json:"email"`
}

type LoginResponse struct {
	Token    string          `json:"token"`
	User     store.User      `json:"user"`
	Messages []store.Message `json:"messages"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	email := strings.TrimSpace(req.Email)
	if !strings.Contains(email, "@") {
		writeError(w, http.StatusBadRequest, "올바른 이메일 주소를 입력해주세요.")
		return
	}

	session := h.sessions.Get(email)
	user, err := session.Login(email)
	if err != nil {
		if errors.Is(err, core.ErrInvalidEmail) {
			writeError(w, http.StatusBadRequest, "올바른 이메일 주소를 입력해주세요.")
			return
		}
		log.Printf("Error logging in user %s: %v", email, err)
		writeError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	token, err := auth.GenerateJWT(email, false)
	if err != nil {
		log.Printf("Error generating JWT for user %s: %v", email, err)
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:    token,
		User:     user,
		Messages: session.Messages(),
	})
}

func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	email := r.Context().Value("userEmail").(string)
	h.sessions.Get(email).Logout()
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) GetMessagesHandler(w http.ResponseWriter, r *http.Request) {
	email := r.Context().Value("userEmail").(string)
	session := h.sessions.Get(email)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"messages": session.Messages(),
		"loading":  session.Loading(),
	})
}

type PostMessageRequest struct {
	Content string `json:"content"`
}

func (h *APIHandler) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	email := r.Context().Value("userEmail").(string)

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	session := h.sessions.Get(email)
	msg, err := session.SendMessage(r.Context(), req.Content)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrEmptyMessage):
			writeError(w, http.StatusBadRequest, "Message content cannot be empty")
		case errors.Is(err, core.ErrLoginRequired):
			writeError(w, http.StatusUnauthorized, "로그인이 필요합니다.")
		default:
			log.Printf("Error posting message for user %s: %v", email, err)
			writeError(w, http.StatusInternalServerError, "Failed to post message")
		}
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

type PurchaseRequestBody struct {
	MessageID int64 `json:"message_id"`
}

type PurchaseResponse struct {
	RequestID string `json:"request_id"`
}

func (h *APIHandler) PurchaseHandler(w http.ResponseWriter, r *http.Request) {
	email := r.Context().Value("userEmail").(string)

	var req PurchaseRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	session := h.sessions.Get(email)
	requestID, err := session.RequestPurchaseFromMessage(req.MessageID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrMessageNotFound):
			writeError(w, http.StatusNotFound, "Message not found")
		case errors.Is(err, core.ErrNoProduct):
			writeError(w, http.StatusBadRequest, "Message carries no product")
		case errors.Is(err, core.ErrLoginRequired):
			writeError(w, http.StatusUnauthorized, "로그인이 필요합니다.")
		default:
			log.Printf("Error creating purchase request for user %s: %v", email, err)
			writeError(w, http.StatusInternalServerError, "Failed to create purchase request")
		}
		return
	}
	writeJSON(w, http.StatusCreated, PurchaseResponse{RequestID: requestID})
}

type AdminLoginRequest struct {
	Password string `json:"password"`
}

func (h *APIHandler) AdminLoginHandler(w http.ResponseWriter, r *http.Request) {
	email := r.Context().Value("userEmail").(string)

	var req AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	session := h.sessions.Get(email)
	if err := session.AdminLogin(req.Password); err != nil {
		if errors.Is(err, core.ErrInvalidAdminPassword) {
			writeError(w, http.StatusUnauthorized, "관리자 비밀번호가 올바르지 않습니다.")
			return
		}
		writeError(w, http.StatusUnauthorized, "로그인이 필요합니다.")
		return
	}

	token, err := auth.GenerateJWT(email, true)
	if err != nil {
		log.Printf("Error generating admin JWT for user %s: %v", email, err)
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *APIHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminStore.ComputeStats()
	if err != nil {
		log.Printf("Error computing dashboard stats: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *APIHandler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminStore.GetUsers()
	if err != nil {
		log.Printf("Error listing users: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *APIHandler) ListRequestsHandler(w http.ResponseWriter, r *http.Request) {
	requests, err := h.adminStore.GetPurchaseRequests()
	if err != nil {
		log.Printf("Error listing purchase requests: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list purchase requests")
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

type UpdateRequestBody struct {
	Status     store.RequestStatus `json:"status"`
	AdminNotes *string             `json:"admin_notes,omitempty"`
}

func validStatus(status store.RequestStatus) bool {
	switch status {
	case "", store.StatusPending, store.StatusProcessing, store.StatusCompleted, store.StatusCancelled:
		return true
	}
	return false
}

func (h *APIHandler) UpdateRequestHandler(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	var req UpdateRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if !validStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	updated, err := h.adminStore.UpdatePurchaseRequest(requestID, req.Status, req.AdminNotes)
	if err != nil {
		log.Printf("Error updating purchase request %s: %v", requestID, err)
		writeError(w, http.StatusInternalServerError, "Failed to update purchase request")
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "Purchase request not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	data, err := h.adminStore.ExportData()
	if err != nil {
		log.Printf("Error exporting admin data: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to export data")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (h *APIHandler) ImportHandler(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if err := h.adminStore.ImportData(data); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid backup payload: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
