package models

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a task or payment does not carry an explicit currency code.
const DefaultCurrency = "VND"

// TaskStatus is a state of the task lifecycle.
type TaskStatus string

const (
	StatusPreparing  TaskStatus = "PREPARING"
	StatusReady      TaskStatus = "READY"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusOnHold     TaskStatus = "ON_HOLD"
	StatusCompleted  TaskStatus = "COMPLETED"
)

// Statuses lists every lifecycle state in display order.
var Statuses = []TaskStatus{StatusPreparing, StatusReady, StatusInProgress, StatusOnHold, StatusCompleted}

// IsValid reports whether the status is one of the known lifecycle states.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusPreparing, StatusReady, StatusInProgress, StatusOnHold, StatusCompleted:
		return true
	}
	return false
}

// Task represents a dispatched unit of field work.
type Task struct {
	ID                   int64               `json:"id"`
	Title                string              `json:"title"`
	Description          *string             `json:"description,omitempty"`
	Status               TaskStatus          `json:"status"`
	AssigneeIDs          []string            `json:"assigneeIds"`
	CompletedAssigneeIDs []string            `json:"completedAssigneeIds,omitempty"` // snapshot taken on completion
	ExpectedRevenue      decimal.NullDecimal `json:"expectedRevenue"`
	Currency             string              `json:"currency"`
	CustomerID           *int64              `json:"customerId,omitempty"`
	Customer             *Customer           `json:"customer,omitempty"`
	Location             *Location           `json:"location,omitempty"`
	ScheduledAt          *time.Time          `json:"scheduledAt,omitempty"`
	StartedAt            *time.Time          `json:"startedAt,omitempty"`
	CompletedAt          *time.Time          `json:"completedAt,omitempty"`
	CreatedAt            time.Time           `json:"createdAt"`
	UpdatedAt            time.Time           `json:"updatedAt"`
	CreatedBy            string              `json:"createdBy"`
	SearchableText       string              `json:"-"`
	DeletedAt            *time.Time          `json:"-"`
}

// Customer is the person the work is done for.
type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Location is the site where the work is done.
type Location struct {
	ID        int64         `json:"id"`
	Latitude  pgtype.Float8 `json:"latitude"`
	Longitude pgtype.Float8 `json:"longitude"`
	Name      string        `json:"name"`
	Address   string        `json:"address"`
}

// NewTask holds the input for creating a task.
type NewTask struct {
	Title           string
	Description     *string
	AssigneeIDs     []string
	ExpectedRevenue decimal.NullDecimal
	Currency        string
	ScheduledAt     *time.Time
	Customer        *Customer
	Location        *Location
	CreatedBy       string
}

// TaskPatch holds a partial update of task details. Nil fields are left unchanged;
// the Clear* flags remove optional relations.
type TaskPatch struct {
	Title           *string
	Description     *string
	ExpectedRevenue *decimal.NullDecimal
	Currency        *string
	ScheduledAt     *time.Time
	Customer        *Customer
	ClearCustomer   bool
	Location        *Location
	ClearLocation   bool
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.ExpectedRevenue == nil && p.Currency == nil &&
		p.ScheduledAt == nil && p.Customer == nil && !p.ClearCustomer && p.Location == nil && !p.ClearLocation
}

// TaskSort is a column the task listing can be ordered by.
type TaskSort string

const (
	SortCreatedAt   TaskSort = "createdAt"
	SortScheduledAt TaskSort = "scheduledAt"
	SortCompletedAt TaskSort = "completedAt"
	SortID          TaskSort = "id"
)

// TaskFilter narrows a task listing. Query must already be normalized.
type TaskFilter struct {
	Query         string
	Statuses      []TaskStatus
	AssigneeID    string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	ScheduledFrom *time.Time
	ScheduledTo   *time.Time
	Sort          TaskSort
	Ascending     bool
	Limit         int
	Offset        int
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Tasks      []Task `json:"tasks"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// CompletedTask is the slice of a completed task the employee report needs.
type CompletedTask struct {
	ID              int64
	Title           string
	CompletedAt     time.Time
	ExpectedRevenue decimal.NullDecimal
	Currency        string
	AssigneeIDs     []string
}

// Position is a GPS fix reported from the site on check-in or check-out.
type Position struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"` // meters
}
