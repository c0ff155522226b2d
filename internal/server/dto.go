package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/aeolus/internal/models"
	"github.com/UnknownOlympus/aeolus/internal/services/tasks"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type customerRequest struct {
	Name  string `json:"name"  validate:"required,max=200"`
	Phone string `json:"phone" validate:"omitempty,max=32"`
}

func (c *customerRequest) model() *models.Customer {
	if c == nil {
		return nil
	}
	return &models.Customer{Name: c.Name, Phone: c.Phone}
}

type locationRequest struct {
	Name      string   `json:"name"      validate:"max=200"`
	Address   string   `json:"address"   validate:"max=500"`
	Latitude  *float64 `json:"latitude"  validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
}

func (l *locationRequest) model() *models.Location {
	if l == nil {
		return nil
	}
	loc := &models.Location{Name: l.Name, Address: l.Address}
	if l.Latitude != nil {
		loc.Latitude = pgtype.Float8{Float64: *l.Latitude, Valid: true}
	}
	if l.Longitude != nil {
		loc.Longitude = pgtype.Float8{Float64: *l.Longitude, Valid: true}
	}
	return loc
}

type createTaskRequest struct {
	Title           string              `json:"title"           validate:"required,max=200"`
	Description     *string             `json:"description"     validate:"omitempty,max=20000"`
	AssigneeIDs     []string            `json:"assigneeIds"     validate:"omitempty,dive,required"`
	ExpectedRevenue decimal.NullDecimal `json:"expectedRevenue"`
	Currency        string              `json:"currency"        validate:"omitempty,len=3"`
	ScheduledAt     *time.Time          `json:"scheduledAt"`
	Customer        *customerRequest    `json:"customer"`
	Location        *locationRequest    `json:"location"`
}

func (c createTaskRequest) model() models.NewTask {
	return models.NewTask{
		Title:           c.Title,
		Description:     c.Description,
		AssigneeIDs:     c.AssigneeIDs,
		ExpectedRevenue: c.ExpectedRevenue,
		Currency:        c.Currency,
		ScheduledAt:     c.ScheduledAt,
		Customer:        c.Customer.model(),
		Location:        c.Location.model(),
	}
}

// optionalRevenue tells an absent expectedRevenue apart from an explicit null, which clears it.
type optionalRevenue struct {
	Set   bool
	Value decimal.NullDecimal
}

func (o *optionalRevenue) UnmarshalJSON(b []byte) error {
	o.Set = true
	return o.Value.UnmarshalJSON(b)
}

type patchTaskRequest struct {
	Title           *string          `json:"title"           validate:"omitempty,max=200"`
	Description     *string          `json:"description"     validate:"omitempty,max=20000"`
	ExpectedRevenue optionalRevenue  `json:"expectedRevenue"`
	Currency        *string          `json:"currency"        validate:"omitempty,len=3"`
	ScheduledAt     *time.Time       `json:"scheduledAt"`
	Customer        *customerRequest `json:"customer"`
	ClearCustomer   bool             `json:"clearCustomer"`
	Location        *locationRequest `json:"location"`
	ClearLocation   bool             `json:"clearLocation"`
}

func (p patchTaskRequest) model() models.TaskPatch {
	patch := models.TaskPatch{
		Title:         p.Title,
		Description:   p.Description,
		Currency:      p.Currency,
		ScheduledAt:   p.ScheduledAt,
		Customer:      p.Customer.model(),
		ClearCustomer: p.ClearCustomer,
		Location:      p.Location.model(),
		ClearLocation: p.ClearLocation,
	}
	if p.ExpectedRevenue.Set {
		revenue := p.ExpectedRevenue.Value
		patch.ExpectedRevenue = &revenue
	}
	return patch
}

type assigneesRequest struct {
	AssigneeIDs []string `json:"assigneeIds" validate:"dive,required"`
}

type statusRequest struct {
	Status models.TaskStatus `json:"status" validate:"required"`
}

type commentRequest struct {
	Text string `json:"text" validate:"required"`
}

type positionRequest struct {
	Latitude  *float64 `json:"latitude"  validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
	Accuracy  *float64 `json:"accuracy"  validate:"omitempty,min=0"`
}

func (p positionRequest) model() models.Position {
	return models.Position{Latitude: *p.Latitude, Longitude: *p.Longitude, Accuracy: p.Accuracy}
}

type paymentRequest struct {
	Amount   decimal.Decimal `json:"amount"   form:"amount"`
	Currency string          `json:"currency" form:"currency" validate:"omitempty,len=3"`
	Notes    string          `json:"notes"    form:"notes"    validate:"max=1000"`
}

type searchQuery struct {
	Query         string   `query:"q"             validate:"max=200"`
	Statuses      []string `query:"status"        validate:"dive,oneof=PREPARING READY IN_PROGRESS ON_HOLD COMPLETED"`
	AssigneeID    string   `query:"assignee"`
	CreatedFrom   string   `query:"createdFrom"   validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	CreatedTo     string   `query:"createdTo"     validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	ScheduledFrom string   `query:"scheduledFrom" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	ScheduledTo   string   `query:"scheduledTo"   validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Sort          string   `query:"sort"          validate:"omitempty,oneof=createdAt scheduledAt completedAt id"`
	Order         string   `query:"order"         validate:"omitempty,oneof=asc desc"`
	Limit         string   `query:"limit"         validate:"omitempty,number"`
	Cursor        string   `query:"cursor"`
}

func newSearchQuery(values map[string][]string) searchQuery {
	first := func(key string) string {
		if v := values[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	var statuses []string
	for _, raw := range values["status"] {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
				statuses = append(statuses, s)
			}
		}
	}

	return searchQuery{
		Query:         first("q"),
		Statuses:      statuses,
		AssigneeID:    first("assignee"),
		CreatedFrom:   first("createdFrom"),
		CreatedTo:     first("createdTo"),
		ScheduledFrom: first("scheduledFrom"),
		ScheduledTo:   first("scheduledTo"),
		Sort:          first("sort"),
		Order:         first("order"),
		Limit:         first("limit"),
		Cursor:        first("cursor"),
	}
}

// params converts an already validated query.
func (q searchQuery) params() tasks.SearchParams {
	params := tasks.SearchParams{
		Query:         q.Query,
		AssigneeID:    q.AssigneeID,
		CreatedFrom:   parseInstant(q.CreatedFrom),
		CreatedTo:     parseInstant(q.CreatedTo),
		ScheduledFrom: parseInstant(q.ScheduledFrom),
		ScheduledTo:   parseInstant(q.ScheduledTo),
		Sort:          models.TaskSort(q.Sort),
		Ascending:     q.Order == "asc",
		Cursor:        q.Cursor,
	}
	for _, s := range q.Statuses {
		params.Statuses = append(params.Statuses, models.TaskStatus(s))
	}
	if q.Limit != "" {
		params.Limit, _ = strconv.Atoi(q.Limit)
	}
	return params
}

func parseInstant(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &t
}

type createEmployeeRequest struct {
	ID       string   `json:"id"          validate:"required,max=64"`
	FullName string   `json:"fullname"    validate:"required,max=200"`
	Position string   `json:"position"    validate:"max=200"`
	Email    string   `json:"email"       validate:"max=254"`
	Phone    string   `json:"phoneNumber" validate:"max=32"`
	Roles    []string `json:"roles"       validate:"required,min=1"`
}

func (c createEmployeeRequest) model() models.Employee {
	return models.Employee{
		ID:       c.ID,
		FullName: c.FullName,
		Position: c.Position,
		Email:    c.Email,
		Phone:    c.Phone,
		Roles:    c.Roles,
	}
}

type patchEmployeeRequest struct {
	FullName *string  `json:"fullname"    validate:"omitempty,max=200"`
	Position *string  `json:"position"    validate:"omitempty,max=200"`
	Email    *string  `json:"email"       validate:"omitempty,max=254"`
	Phone    *string  `json:"phoneNumber" validate:"omitempty,max=32"`
	Roles    []string `json:"roles"       validate:"omitempty,min=1"`
	Active   *bool    `json:"active"`
}

func (p patchEmployeeRequest) model() models.EmployeePatch {
	return models.EmployeePatch{
		FullName: p.FullName,
		Position: p.Position,
		Email:    p.Email,
		Phone:    p.Phone,
		Roles:    p.Roles,
		Active:   p.Active,
	}
}

type employeeListQuery struct {
	Active string `query:"active" validate:"omitempty,boolean"`
}

type reportQuery struct {
	StartDate string `query:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `query:"endDate"   validate:"required,datetime=2006-01-02"`
	Timezone  string `query:"timezone"  validate:"omitempty,timezone"`
}
