package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UnknownOlympus/aeolus/internal/apperr"
	"github.com/UnknownOlympus/aeolus/internal/models"
	"github.com/jackc/pgx/v5"
)

const employeeColumns = `id, fullname, position, email, phone, roles, active, created_at, updated_at`

// SaveEmployee saves an employee to the database together with the activity recording it.
// An employee with the same identifier is rejected.
func (r *Repository) SaveEmployee(ctx context.Context, employee models.Employee, activity models.Activity) error {
	defer r.observe("save_employee", time.Now())

	query := `
		INSERT INTO employees (id, fullname, position, email, phone, roles, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING;
	`

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, employee.ID, employee.FullName, employee.Position, employee.Email,
			employee.Phone, employee.Roles, employee.Active)
		if err != nil {
			return fmt.Errorf("failed to save employee: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperr.Invalid("id", "exists")
		}

		_, err = insertActivity(ctx, tx, activity)
		return err
	})
	if err != nil {
		return err
	}

	return nil
}

// UpdateEmployee updates an employee's information in the database.
func (r *Repository) UpdateEmployee(ctx context.Context, employee models.Employee, activity models.Activity) error {
	defer r.observe("update_employee", time.Now())

	query := `
		UPDATE employees
		SET fullname = $2, position = $3, email = $4, phone = $5, roles = $6, active = $7, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1;
	`

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, employee.ID, employee.FullName, employee.Position, employee.Email,
			employee.Phone, employee.Roles, employee.Active)
		if err != nil {
			return fmt.Errorf("failed to update employee data: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("employee", employee.ID)
		}

		_, err = insertActivity(ctx, tx, activity)
		return err
	})
	if err != nil {
		return err
	}

	return nil
}

// GetEmployeeByID retrieves an employee from the database by their ID.
func (r *Repository) GetEmployeeByID(ctx context.Context, identifier string) (models.Employee, error) {
	defer r.observe("get_employee_by_id", time.Now())

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id=$1`

	result, err := scanEmployee(r.db.QueryRow(ctx, query, identifier))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Employee{}, apperr.NotFound("employee", identifier)
	}
	if err != nil {
		return models.Employee{}, fmt.Errorf("failed to get employee by id: %w", err)
	}

	return result, nil
}

// ListEmployees returns employees ordered by name. A nil active lists everyone.
func (r *Repository) ListEmployees(ctx context.Context, active *bool) ([]models.Employee, error) {
	defer r.observe("list_employees", time.Now())

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE ($1::boolean IS NULL OR active = $1) ORDER BY fullname, id`

	rows, err := r.db.Query(ctx, query, active)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := make([]models.Employee, 0)
	for rows.Next() {
		employee, scanErr := scanEmployee(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", scanErr)
		}
		employees = append(employees, employee)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	return employees, nil
}

func scanEmployee(row pgx.Row) (models.Employee, error) {
	var e models.Employee
	err := row.Scan(&e.ID, &e.FullName, &e.Position, &e.Email, &e.Phone, &e.Roles, &e.Active, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return models.Employee{}, err
	}
	if e.Roles == nil {
		e.Roles = []string{}
	}
	return e, nil
}
