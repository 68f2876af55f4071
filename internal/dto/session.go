package dto

type CreateSessionRequest struct {
	Name      string `json:"name"`
	AuditMode *bool  `json:"audit_mode,omitempty"`
}

type SessionResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AuditMode bool   `json:"audit_mode"`
	CreatedAt string `json:"created_at"`
}
