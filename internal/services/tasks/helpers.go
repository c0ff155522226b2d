package tasks

import (
	"strings"
	"unicode/utf8"

	"github.com/UnknownOlympus/aeolus/internal/apperr"
	"github.com/UnknownOlympus/aeolus/internal/models"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const (
	maxTitleLength   = 200
	maxCommentLength = 4000
)

type fieldErrors map[string]string

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &apperr.ValidationError{Fields: f}
}

func validateNewTask(in *models.NewTask) error {
	fields := fieldErrors{}

	in.Title = strings.TrimSpace(in.Title)
	checkTitle(fields, in.Title)
	checkRevenue(fields, in.ExpectedRevenue)
	in.Currency = checkCurrency(fields, in.Currency)
	if in.Customer != nil {
		checkCustomer(fields, in.Customer)
	}
	if in.Location != nil {
		checkLocation(fields, in.Location)
	}

	return fields.err()
}

func validatePatch(p *models.TaskPatch) error {
	if p.IsEmpty() {
		return apperr.Invalid("patch", "empty")
	}

	fields := fieldErrors{}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		p.Title = &title
		checkTitle(fields, title)
	}
	if p.ExpectedRevenue != nil {
		checkRevenue(fields, *p.ExpectedRevenue)
	}
	if p.Currency != nil {
		currency := checkCurrency(fields, *p.Currency)
		if currency == "" {
			fields["currency"] = "required"
		}
		p.Currency = &currency
	}
	if p.Customer != nil {
		if p.ClearCustomer {
			fields["customer"] = "excluded_with"
		}
		checkCustomer(fields, p.Customer)
	}
	if p.Location != nil {
		if p.ClearLocation {
			fields["location"] = "excluded_with"
		}
		checkLocation(fields, p.Location)
	}

	return fields.err()
}

func validatePosition(p models.Position) error {
	fields := fieldErrors{}
	checkCoordinates(fields, p.Latitude, p.Longitude)
	if p.Accuracy != nil && *p.Accuracy < 0 {
		fields["accuracy"] = "min"
	}
	return fields.err()
}

func checkTitle(fields fieldErrors, title string) {
	switch {
	case title == "":
		fields["title"] = "required"
	case utf8.RuneCountInString(title) > maxTitleLength:
		fields["title"] = "max"
	}
}

func checkRevenue(fields fieldErrors, revenue decimal.NullDecimal) {
	if revenue.Valid && revenue.Decimal.IsNegative() {
		fields["expectedRevenue"] = "min"
	}
}

// checkCurrency returns the upper cased ISO 4217 code. An empty code is left to the default.
func checkCurrency(fields fieldErrors, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return ""
	}
	if len(currency) != 3 || strings.Trim(currency, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") != "" {
		fields["currency"] = "iso4217"
	}
	return currency
}

func checkCustomer(fields fieldErrors, c *models.Customer) {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	if c.Name == "" {
		fields["customer.name"] = "required"
	}
}

func checkLocation(fields fieldErrors, l *models.Location) {
	l.Name = strings.TrimSpace(l.Name)
	l.Address = strings.TrimSpace(l.Address)
	if l.Latitude.Valid != l.Longitude.Valid {
		fields["location"] = "coordinates"
		return
	}
	if l.Latitude.Valid {
		checkCoordinates(fields, l.Latitude.Float64, l.Longitude.Float64)
	}
	if !l.Latitude.Valid && l.Name == "" && l.Address == "" {
		fields["location"] = "required"
	}
}

func checkCoordinates(fields fieldErrors, lat, lng float64) {
	if lat < -90 || lat > 90 {
		fields["latitude"] = "latitude"
	}
	if lng < -180 || lng > 180 {
		fields["longitude"] = "longitude"
	}
}

// applyPatch changes task in place and returns the names of the fields that actually changed.
func applyPatch(task *models.Task, p models.TaskPatch) []string {
	changed := make([]string, 0)

	if p.Title != nil && *p.Title != task.Title {
		task.Title = *p.Title
		changed = append(changed, "title")
	}
	if p.Description != nil && (task.Description == nil || *task.Description != *p.Description) {
		description := *p.Description
		task.Description = &description
		if description == "" {
			task.Description = nil
		}
		changed = append(changed, "description")
	}
	if p.ExpectedRevenue != nil && !sameRevenue(task.ExpectedRevenue, *p.ExpectedRevenue) {
		task.ExpectedRevenue = *p.ExpectedRevenue
		changed = append(changed, "expectedRevenue")
	}
	if p.Currency != nil && *p.Currency != task.Currency {
		task.Currency = *p.Currency
		changed = append(changed, "currency")
	}
	if p.ScheduledAt != nil && (task.ScheduledAt == nil || !task.ScheduledAt.Equal(*p.ScheduledAt)) {
		scheduled := *p.ScheduledAt
		task.ScheduledAt = &scheduled
		changed = append(changed, "scheduledAt")
	}

	switch {
	case p.ClearCustomer && task.Customer != nil:
		task.Customer = nil
		changed = append(changed, "customer")
	case p.Customer != nil && (task.Customer == nil ||
		task.Customer.Name != p.Customer.Name || task.Customer.Phone != p.Customer.Phone):
		customer := *p.Customer
		task.Customer = &customer
		changed = append(changed, "customer")
	}

	switch {
	case p.ClearLocation && task.Location != nil:
		task.Location = nil
		changed = append(changed, "location")
	case p.Location != nil && (task.Location == nil || !sameLocation(*task.Location, *p.Location)):
		location := *p.Location
		task.Location = &location
		changed = append(changed, "location")
	}

	return changed
}

func sameRevenue(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Decimal.Equal(b.Decimal)
}

func sameLocation(a, b models.Location) bool {
	return sameFloat(a.Latitude, b.Latitude) && sameFloat(a.Longitude, b.Longitude) &&
		a.Name == b.Name && a.Address == b.Address
}

func sameFloat(a, b pgtype.Float8) bool {
	return a.Valid == b.Valid && (!a.Valid || a.Float64 == b.Float64)
}
