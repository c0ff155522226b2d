package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is money collected on site for a task.
type Payment struct {
	ID          int64           `json:"id"`
	TaskID      int64           `json:"taskId"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	CollectedBy string          `json:"collectedBy"`
	InvoiceKey  *string         `json:"invoiceKey,omitempty"`
	Notes       *string         `json:"notes,omitempty"`
	CollectedAt time.Time       `json:"collectedAt"`
}

// PaymentSummary compares collected money with the expected task revenue.
type PaymentSummary struct {
	TaskID      int64               `json:"taskId"`
	Currency    string              `json:"currency"`
	Expected    decimal.NullDecimal `json:"expected"`
	Collected   decimal.Decimal     `json:"collected"`
	Outstanding decimal.NullDecimal `json:"outstanding"`
	Payments    int                 `json:"payments"`
}

// Attachment references a stored file linked to a task.
type Attachment struct {
	ID          int64     `json:"id"`
	TaskID      int64     `json:"taskId"`
	StorageKey  string    `json:"storageKey"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UploadedBy  string    `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}
