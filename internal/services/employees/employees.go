package employees

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"slices"
	"strings"

	"github.com/tamathecxder/randomail"

	"github.com/UnknownOlympus/aeolus/internal/access"
	"github.com/UnknownOlympus/aeolus/internal/apperr"
	"github.com/UnknownOlympus/aeolus/internal/lib/logger/sl"
	"github.com/UnknownOlympus/aeolus/internal/metrics"
	"github.com/UnknownOlympus/aeolus/internal/models"
	"github.com/UnknownOlympus/aeolus/internal/repository"
)

var e164Regex = regexp.MustCompile(`^\+?[0-9]\d{1,14}$`)

type Staff struct {
	log               *slog.Logger
	repo              repository.EmployeeRepoIface
	metrics           *metrics.Metrics
	placeholderEmails bool
}

func NewStaff(log *slog.Logger, repo repository.EmployeeRepoIface, metrics *metrics.Metrics, placeholderEmails bool) *Staff {
	return &Staff{log: log, repo: repo, metrics: metrics, placeholderEmails: placeholderEmails}
}

func (s *Staff) initLogger(opn string) *slog.Logger {
	return s.log.With(
		slog.String("op", opn),
		slog.String("division", "employee"),
	)
}

// Create registers an employee known to the identity provider. A missing email is replaced by a
// generated placeholder when placeholder emails are enabled; an invalid one is always rejected.
func (s *Staff) Create(ctx context.Context, actor access.Actor, employee models.Employee) (models.Employee, error) {
	const opn = "Employee.Create"
	log := s.initLogger(opn)

	if !access.CanManageEmployees(actor) {
		return models.Employee{}, apperr.Forbidden("create employee")
	}

	employee.ID = strings.TrimSpace(employee.ID)
	employee.Active = true
	fields := map[string]string{}
	if employee.ID == "" {
		fields["id"] = "required"
	}
	s.normalize(ctx, log, &employee, fields)
	if len(fields) > 0 {
		log.DebugContext(ctx, "rejected employee input", "fields", sl.RedactFields(fields))
		return models.Employee{}, &apperr.ValidationError{Fields: fields}
	}

	activity := models.NewActivity(models.ActionEmployeeCreated, actor.ID(), models.EmployeeTopic(employee.ID),
		models.Payload{"fullname": employee.FullName, "roles": employee.Roles})
	if err := s.repo.SaveEmployee(ctx, employee, activity); err != nil {
		return models.Employee{}, fmt.Errorf("failed to save new employee %s: %w", employee.FullName, err)
	}

	log.InfoContext(ctx, "Employee created", "id", employee.ID)
	return s.repo.GetEmployeeByID(ctx, employee.ID)
}

// Update applies a partial update. Setting Active to false deactivates the employee.
func (s *Staff) Update(
	ctx context.Context, actor access.Actor, id string, patch models.EmployeePatch,
) (models.Employee, error) {
	const opn = "Employee.Update"
	log := s.initLogger(opn)

	if !access.CanManageEmployees(actor) {
		return models.Employee{}, apperr.Forbidden("edit employee")
	}

	existing, err := s.repo.GetEmployeeByID(ctx, id)
	if err != nil {
		return models.Employee{}, err
	}

	updated := existing
	if patch.FullName != nil {
		updated.FullName = *patch.FullName
	}
	if patch.Position != nil {
		updated.Position = *patch.Position
	}
	if patch.Email != nil {
		updated.Email = *patch.Email
	}
	if patch.Phone != nil {
		updated.Phone = *patch.Phone
	}
	if patch.Roles != nil {
		updated.Roles = patch.Roles
	}
	if patch.Active != nil {
		updated.Active = *patch.Active
	}

	fields := map[string]string{}
	s.normalize(ctx, log, &updated, fields)
	if len(fields) > 0 {
		log.DebugContext(ctx, "rejected employee patch", "fields", sl.RedactFields(fields))
		return models.Employee{}, &apperr.ValidationError{Fields: fields}
	}

	changed := changedFields(existing, updated)
	if len(changed) == 0 {
		log.DebugContext(ctx, "employee is unchanged, skipped", "id", id)
		return existing, nil
	}

	activity := models.NewActivity(models.ActionEmployeeUpdated, actor.ID(), models.EmployeeTopic(id),
		models.Payload{"fields": changed})
	if err = s.repo.UpdateEmployee(ctx, updated, activity); err != nil {
		return models.Employee{}, fmt.Errorf("failed to update employee: '%s': %w", updated.FullName, err)
	}

	log.InfoContext(ctx, "Employee updated", "id", id, "fields", changed)
	return s.repo.GetEmployeeByID(ctx, id)
}

// Get returns an employee record. Workers may only read their own.
func (s *Staff) Get(ctx context.Context, actor access.Actor, id string) (models.Employee, error) {
	if !access.CanViewEmployee(actor, id) {
		return models.Employee{}, apperr.Forbidden("view employee " + id)
	}
	return s.repo.GetEmployeeByID(ctx, id)
}

// List returns employees, optionally only the active or inactive ones.
func (s *Staff) List(ctx context.Context, actor access.Actor, active *bool) ([]models.Employee, error) {
	if !access.CanManageEmployees(actor) {
		return nil, apperr.Forbidden("list employees")
	}
	employees, err := s.repo.ListEmployees(ctx, active)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, nil
}

// normalize trims the employee fields in place, fills a placeholder email when allowed and
// records every problem in fields.
func (s *Staff) normalize(ctx context.Context, log *slog.Logger, employee *models.Employee, fields map[string]string) {
	employee.FullName = strings.TrimSpace(employee.FullName)
	employee.Position = strings.TrimSpace(employee.Position)
	employee.Email = strings.TrimSpace(employee.Email)
	employee.Phone = compactPhone(employee.Phone)

	if employee.FullName == "" {
		fields["fullname"] = "required"
	}

	generated := false
	if employee.Email == "" && s.placeholderEmails {
		log.DebugContext(ctx, "Email was not specified, generate random email", "employee", employee.FullName)
		employee.Email = randomail.GenerateRandomEmail()
		s.metrics.PlaceholderEmails.Inc()
		generated = true
	}

	isEmail, isPhone := ValidateEmployee(employee.Email, employee.Phone)
	switch {
	case employee.Email == "":
		fields["email"] = "required"
	case !isEmail && !generated:
		fields["email"] = "email"
	}
	if employee.Phone != "" && !isPhone {
		fields["phoneNumber"] = "e164"
	}

	roles := make([]string, 0, len(employee.Roles))
	for _, role := range employee.Roles {
		role = strings.ToLower(strings.TrimSpace(role))
		if !access.ValidRole(role) {
			fields["roles"] = "oneof"
			continue
		}
		if !slices.Contains(roles, role) {
			roles = append(roles, role)
		}
	}
	if len(employee.Roles) == 0 {
		fields["roles"] = "required"
	}
	employee.Roles = roles
}

func changedFields(before, after models.Employee) []string {
	changed := make([]string, 0)
	if before.FullName != after.FullName {
		changed = append(changed, "fullname")
	}
	if before.Position != after.Position {
		changed = append(changed, "position")
	}
	if before.Email != after.Email {
		changed = append(changed, "email")
	}
	if before.Phone != after.Phone {
		changed = append(changed, "phoneNumber")
	}
	if !slices.Equal(before.Roles, after.Roles) {
		changed = append(changed, "roles")
	}
	if before.Active != after.Active {
		changed = append(changed, "active")
	}
	return changed
}

// ValidateEmployee validates the email and phone number of an employee.
func ValidateEmployee(email, phone string) (bool, bool) {
	var isEmail bool
	var isPhone bool

	if isValidEmail(email) {
		isEmail = true
	}

	if isValidPhoneNumber(phone) {
		isPhone = true
	}

	return isEmail, isPhone
}

// isValidEmail checks if the given email address is valid.
func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// isValidPhoneNumber checks if a phone number is valid according to the E.164 format.
func isValidPhoneNumber(phone string) bool {
	return e164Regex.MatchString(compactPhone(phone))
}

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", ".", "")

func compactPhone(phone string) string {
	return phoneSeparators.Replace(strings.TrimSpace(phone))
}
