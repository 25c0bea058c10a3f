package domain

// LeadDTO is the API representation of a lead
type LeadDTO struct {
	TaskID         string         `json:"taskId"`
	LeadName       string         `json:"leadName"`
	Phase          Phase          `json:"phase"`
	Qualified      bool           `json:"qualified"`
	Street         string         `json:"street"`
	HouseNumber    string         `json:"houseNumber"`
	PostalCode     string         `json:"postalCode"`
	City           string         `json:"city"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone"`
	TotalDebt      string         `json:"totalDebt"`
	CreditorCount  string         `json:"creditorCount"`
	ExternalStatus ExternalStatus `json:"externalStatus"`
	Checklist      Checklist      `json:"checklist"`
	Documents      []Document     `json:"documents"`
	Notes          string         `json:"notes"`
	CreatedAt      string         `json:"createdAt"`
	UpdatedAt      string         `json:"updatedAt"`
}

// LeadStatsDTO summarizes the lead pipeline
type LeadStatsDTO struct {
	Total     int64           `json:"total"`
	Qualified int64           `json:"qualified"`
	ByPhase   map[Phase]int64 `json:"byPhase"`
}

// Request DTOs

type CreateLeadRequest struct {
	TaskID        string `json:"taskId" validate:"required,max=255"`
	LeadName      string `json:"leadName" validate:"max=255"`
	Phase         Phase  `json:"phase,omitempty" validate:"omitempty,oneof=initial-consultation checklist documents completed"`
	Qualified     bool   `json:"qualified"`
	Street        string `json:"street,omitempty" validate:"max=255"`
	HouseNumber   string `json:"houseNumber,omitempty" validate:"max=50"`
	PostalCode    string `json:"postalCode,omitempty" validate:"max=20"`
	City          string `json:"city,omitempty" validate:"max=255"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	Phone         string `json:"phone,omitempty" validate:"max=100"`
	TotalDebt     string `json:"totalDebt,omitempty" validate:"max=100"`
	CreditorCount string `json:"creditorCount,omitempty" validate:"max=100"`
	Notes         string `json:"notes,omitempty"`
}

// UpdateLeadRequest is a partial update. Nil fields are left untouched.
type UpdateLeadRequest struct {
	LeadName       *string         `json:"leadName,omitempty" validate:"omitempty,max=255"`
	Phase          *Phase          `json:"phase,omitempty" validate:"omitempty,oneof=initial-consultation checklist documents completed"`
	Qualified      *bool           `json:"qualified,omitempty"`
	Street         *string         `json:"street,omitempty" validate:"omitempty,max=255"`
	HouseNumber    *string         `json:"houseNumber,omitempty" validate:"omitempty,max=50"`
	PostalCode     *string         `json:"postalCode,omitempty" validate:"omitempty,max=20"`
	City           *string         `json:"city,omitempty" validate:"omitempty,max=255"`
	Email          *string         `json:"email,omitempty" validate:"omitempty,max=255"`
	Phone          *string         `json:"phone,omitempty" validate:"omitempty,max=100"`
	TotalDebt      *string         `json:"totalDebt,omitempty" validate:"omitempty,max=100"`
	CreditorCount  *string         `json:"creditorCount,omitempty" validate:"omitempty,max=100"`
	ExternalStatus *ExternalStatus `json:"externalStatus,omitempty"`
	Checklist      *Checklist      `json:"checklist,omitempty"`
	Notes          *string         `json:"notes,omitempty"`
}

type UpdatePhaseRequest struct {
	Phase Phase `json:"phase" validate:"required,oneof=initial-consultation checklist documents completed"`
}

type AddDocumentRequest struct {
	Name string `json:"name" validate:"required,max=255"`
	Type string `json:"type" validate:"required,max=100"`
	Size string `json:"size,omitempty" validate:"max=50"`
	Path string `json:"path,omitempty" validate:"max=1024"`
}

// ExternalFormData is the payload of the external initial-consultation form
type ExternalFormData struct {
	TaskID        string `json:"taskId,omitempty"`
	LeadName      string `json:"leadName,omitempty"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Street        string `json:"street,omitempty"`
	HouseNumber   string `json:"houseNumber,omitempty"`
	PostalCode    string `json:"postalCode,omitempty"`
	City          string `json:"city,omitempty"`
	CreditorCount string `json:"creditorCount,omitempty"`
	TotalDebt     string `json:"totalDebt,omitempty"`
}

type ExternalFormRequest struct {
	FormData      *ExternalFormData `json:"formData" validate:"required"`
	ClickUpTaskID string            `json:"clickupTaskId,omitempty"`
	SyncToClickUp *bool             `json:"syncToClickUp,omitempty"`
}

// Webhook operations accepted by the automation dispatch endpoints
const (
	OperationCreateTask       = "createTask"
	OperationUpdateTask       = "updateTask"
	OperationSyncForm         = "syncForm"
	OperationSyncExternalForm = "syncExternalForm"
)

// OperationRequest is the envelope sent by Make.com and n8n scenarios
type OperationRequest struct {
	Operation     string             `json:"operation"`
	Task          any                `json:"task,omitempty"`
	TaskID        string             `json:"taskId,omitempty"`
	UpdateData    *UpdateLeadRequest `json:"updateData,omitempty"`
	SyncBack      bool               `json:"syncBack,omitempty"`
	FormData      *ExternalFormData  `json:"formData,omitempty"`
	ClickUpTaskID string             `json:"clickupTaskId,omitempty"`
	SyncToClickUp *bool              `json:"syncToClickUp,omitempty"`
}

// Response DTOs

// WebhookResults counts the outcome of a webhook batch
type WebhookResults struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Failed    int `json:"failed"`
	Processed int `json:"processed"`
}

type WebhookResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Results *WebhookResults `json:"results,omitempty"`
	Lead    *LeadDTO        `json:"lead,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// SyncError records a lead that could not be pushed to the tracker
type SyncError struct {
	TaskID string `json:"taskId"`
	Error  string `json:"error"`
}

// SyncSummary is the result of a batch sync
type SyncSummary struct {
	Total      int         `json:"total"`
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Errors     []SyncError `json:"errors"`
}

// IntegrationStatusDTO reports which integrations are configured. Secrets are never included.
type IntegrationStatusDTO struct {
	ClickUpAPIKeyConfigured bool   `json:"clickupApiKeyConfigured"`
	ClickUpListConfigured   bool   `json:"clickupListConfigured"`
	ClickUpOAuthConnected   bool   `json:"clickupOAuthConnected"`
	MakeWebhookConfigured   bool   `json:"makeWebhookConfigured"`
	N8nWebhookConfigured    bool   `json:"n8nWebhookConfigured"`
	OplogDriver             string `json:"oplogDriver"`
	DatabaseDriver          string `json:"databaseDriver"`
}

type OAuthStatusDTO struct {
	Authenticated bool    `json:"authenticated"`
	TokenExists   bool    `json:"tokenExists"`
	Expired       bool    `json:"expired"`
	Expires       *string `json:"expires,omitempty"`
	Provider      string  `json:"provider"`
}

// PaginatedResponse wraps a page of results
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}
