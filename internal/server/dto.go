package server

import (
	"portfolio/internal/domain"
	"portfolio/internal/site"
)

// Request payloads

// ContactRequest fields are checked by the contact rules, not the schema, so
// a missing field and an empty one produce the same error.
type ContactRequest struct {
	Name    string `json:"name" required:"false" example:"Ada Lovelace"`
	Email   string `json:"email" required:"false" example:"ada@example.com"`
	Message string `json:"message" required:"false" example:"Hello!"`
}

// Response payloads

type ContactResponse struct {
	ID     string `json:"id"`
	Status string `json:"status" enum:"received"`
}

type MessageResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Message    string `json:"message"`
	RemoteAddr string `json:"remote_addr,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
	ReadAt     string `json:"read_at,omitempty" format:"date-time"`
	CreatedAt  string `json:"created_at" format:"date-time"`
}

type MessageListResponse struct {
	Items []MessageResponse `json:"items"`
}

type InboxStatsResponse struct {
	Total  int `json:"total"`
	Unread int `json:"unread"`
}

type SectionListResponse struct {
	Items []site.Section `json:"items"`
}

type ProjectListResponse struct {
	Filter  string         `json:"filter"`
	Filters []string       `json:"filters"`
	Items   []site.Project `json:"items"`
}

func messageResponse(m domain.Message) MessageResponse {
	return MessageResponse{
		ID:         m.ID,
		Name:       m.Name,
		Email:      m.Email,
		Message:    m.Body,
		RemoteAddr: m.RemoteAddr,
		UserAgent:  m.UserAgent,
		ReadAt:     m.ReadAt,
		CreatedAt:  m.CreatedAt,
	}
}

func mapMessages(items []domain.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(items))
	for _, m := range items {
		out = append(out, messageResponse(m))
	}
	return out
}
