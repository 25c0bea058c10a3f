package domain

import (
	"time"
)

// Lead is the client record tracked through the firm's workflow. TaskID is the
// ClickUp task id and correlates the record across systems.
type Lead struct {
	TaskID    string `gorm:"type:varchar(255);primaryKey;column:task_id" bson:"taskId" json:"taskId"`
	LeadName  string `gorm:"type:varchar(255);not null;column:lead_name" bson:"leadName" json:"leadName"`
	Phase     Phase  `gorm:"type:varchar(50);not null;index" bson:"phase" json:"phase"`
	Qualified bool   `gorm:"not null;index" bson:"qualified" json:"qualified"`

	// Contact
	Street      string `gorm:"type:varchar(255)" bson:"street,omitempty" json:"street,omitempty"`
	HouseNumber string `gorm:"type:varchar(50);column:house_number" bson:"houseNumber,omitempty" json:"houseNumber,omitempty"`
	PostalCode  string `gorm:"type:varchar(20);column:postal_code" bson:"postalCode,omitempty" json:"postalCode,omitempty"`
	City        string `gorm:"type:varchar(255)" bson:"city,omitempty" json:"city,omitempty"`
	Email       string `gorm:"type:varchar(255)" bson:"email,omitempty" json:"email,omitempty"`
	Phone       string `gorm:"type:varchar(100)" bson:"phone,omitempty" json:"phone,omitempty"`

	// Financial values are kept as free-form strings because upstream formatting is inconsistent
	TotalDebt     string `gorm:"type:varchar(100);column:total_debt" bson:"totalDebt,omitempty" json:"totalDebt,omitempty"`
	CreditorCount string `gorm:"type:varchar(100);column:creditor_count" bson:"creditorCount,omitempty" json:"creditorCount,omitempty"`

	ExternalStatus ExternalStatus `gorm:"embedded;embeddedPrefix:external_" bson:"externalStatus" json:"externalStatus"`
	Checklist      Checklist      `gorm:"type:text;serializer:json" bson:"checklist" json:"checklist"`
	Documents      []Document     `gorm:"type:text;serializer:json" bson:"documents" json:"documents"`
	Notes          string         `gorm:"type:text" bson:"notes,omitempty" json:"notes,omitempty"`

	Deleted   bool       `gorm:"not null;index" bson:"deleted" json:"-"`
	DeletedAt *time.Time `gorm:"column:deleted_at" bson:"deletedAt,omitempty" json:"-"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime:false;column:created_at" bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"not null;autoUpdateTime:false;column:updated_at;index" bson:"updatedAt" json:"updatedAt"`
}

func (Lead) TableName() string {
	return "leads"
}

// ExternalStatus is a snapshot of the tracker's status for display
type ExternalStatus struct {
	Status   string `gorm:"type:varchar(100);column:status" bson:"status" json:"status"`
	Color    string `gorm:"type:varchar(20);column:color" bson:"color" json:"color"`
	Priority string `gorm:"type:varchar(50);column:priority" bson:"priority" json:"priority"`
}

// Default external status values used when the tracker omits them
const (
	DefaultExternalStatus   = "Unbekannt"
	DefaultExternalColor    = "#cccccc"
	DefaultExternalPriority = "normal"
	ErrorExternalStatus     = "ERROR"
)

// Checklist holds manually tracked completion flags grouped by category
type Checklist struct {
	Documents    DocumentChecklist     `bson:"documents" json:"documents"`
	Consultation ConsultationChecklist `bson:"consultation" json:"consultation"`
	Appointments AppointmentChecklist  `bson:"appointments" json:"appointments"`
}

type DocumentChecklist struct {
	IDCard                  bool `bson:"idCard" json:"idCard"`
	RegistrationCertificate bool `bson:"registrationCertificate" json:"registrationCertificate"`
	IncomeProof             bool `bson:"incomeProof" json:"incomeProof"`
	RentalAgreement         bool `bson:"rentalAgreement" json:"rentalAgreement"`
	BankStatements          bool `bson:"bankStatements" json:"bankStatements"`
	DebtOverview            bool `bson:"debtOverview" json:"debtOverview"`
	AssetOverview           bool `bson:"assetOverview" json:"assetOverview"`
}

type ConsultationChecklist struct {
	InitialMeetingDone    bool `bson:"initialMeetingDone" json:"initialMeetingDone"`
	BriefingDone          bool `bson:"briefingDone" json:"briefingDone"`
	QuestionsAnswered     bool `bson:"questionsAnswered" json:"questionsAnswered"`
	RisksDiscussed        bool `bson:"risksDiscussed" json:"risksDiscussed"`
	AlternativesDiscussed bool `bson:"alternativesDiscussed" json:"alternativesDiscussed"`
}

type AppointmentChecklist struct {
	DeadlineMet          bool `bson:"deadlineMet" json:"deadlineMet"`
	AppointmentScheduled bool `bson:"appointmentScheduled" json:"appointmentScheduled"`
	ClientInformed       bool `bson:"clientInformed" json:"clientInformed"`
}

// Document is metadata for a file the client handed in. No file content is stored.
type Document struct {
	ID         string `bson:"id" json:"id"`
	Name       string `bson:"name" json:"name"`
	Type       string `bson:"type" json:"type"`
	UploadDate string `bson:"uploadDate" json:"uploadDate"`
	Size       string `bson:"size" json:"size"`
	Path       string `bson:"path,omitempty" json:"path,omitempty"`
}

// DefaultDocumentSize is used when a document is added without a size
const DefaultDocumentSize = "0 KB"

// DocumentDateLayout is the format of Document.UploadDate
const DocumentDateLayout = "2006-01-02"

// OAuthProviderClickUp is the provider key for ClickUp tokens
const OAuthProviderClickUp = "clickup"

// OAuthToken is an access token obtained through the tracker's OAuth flow
type OAuthToken struct {
	Provider     string    `gorm:"type:varchar(50);primaryKey" bson:"provider" json:"provider"`
	AccessToken  string    `gorm:"type:text;not null;column:access_token" bson:"accessToken" json:"-"`
	RefreshToken string    `gorm:"type:text;column:refresh_token" bson:"refreshToken,omitempty" json:"-"`
	ExpiresAt    time.Time `gorm:"not null;column:expires_at" bson:"expiresAt" json:"expiresAt"`
	CreatedAt    time.Time `gorm:"column:created_at" bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at" bson:"updatedAt" json:"updatedAt"`
}

func (OAuthToken) TableName() string {
	return "oauth_tokens"
}

// IsValidAt reports whether the token carries a value and has not expired at now
func (t *OAuthToken) IsValidAt(now time.Time) bool {
	return t != nil && t.AccessToken != "" && t.ExpiresAt.After(now)
}
