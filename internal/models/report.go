package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmployeeReport summarises the work of one employee over a date range.
type EmployeeReport struct {
	UserID    string         `json:"userId"`
	StartDate string         `json:"startDate"`
	EndDate   string         `json:"endDate"`
	Timezone  string         `json:"timezone"`
	Metrics   ReportMetrics  `json:"metrics"`
	Tasks     []ReportedTask `json:"tasks"`
}

// ReportMetrics are the headline numbers of an employee report.
type ReportMetrics struct {
	DaysWorked     int             `json:"daysWorked"`
	TasksCompleted int             `json:"tasksCompleted"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
}

// ReportedTask is one completed task with the employee's cut of it.
type ReportedTask struct {
	ID           int64               `json:"id"`
	Title        string              `json:"title"`
	CompletedAt  time.Time           `json:"completedAt"`
	Revenue      decimal.NullDecimal `json:"revenue"`
	RevenueShare decimal.Decimal     `json:"revenueShare"`
	WorkerCount  int                 `json:"workerCount"`
}
