package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/UnknownOlympus/aeolus/internal/apperr"
	"github.com/UnknownOlympus/aeolus/internal/models"
	"github.com/UnknownOlympus/aeolus/internal/search"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const selectTaskQuery = `
		SELECT t.id, t.title, t.description, t.status, t.assignee_ids, t.completed_assignee_ids,
			t.expected_revenue, t.currency, t.customer_id, t.scheduled_at, t.started_at, t.completed_at,
			t.created_at, t.updated_at, t.created_by, t.searchable_text, t.deleted_at,
			c.name, c.phone, l.id, l.latitude, l.longitude, l.name, l.address
		FROM tasks t
		LEFT JOIN customers c ON c.id = t.customer_id
		LEFT JOIN locations l ON l.task_id = t.id`

const (
	getTaskQuery  = selectTaskQuery + ` WHERE t.id = $1 AND t.deleted_at IS NULL`
	lockTaskQuery = getTaskQuery + ` FOR UPDATE OF t`

	insertTaskQuery = `
		INSERT INTO tasks (title, description, status, assignee_ids, expected_revenue, currency,
			customer_id, scheduled_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at;
	`
	upsertCustomerQuery = `
		INSERT INTO customers (name, phone)
		VALUES ($1, $2)
		ON CONFLICT (name, phone) DO UPDATE SET name = EXCLUDED.name
		RETURNING id;
	`
	upsertLocationQuery = `
		INSERT INTO locations (task_id, latitude, longitude, name, address)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (task_id) DO UPDATE
		SET latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude,
			name = EXCLUDED.name, address = EXCLUDED.address
		RETURNING id;
	`
	deleteLocationQuery   = `DELETE FROM locations WHERE task_id = $1`
	updateSearchableQuery = `UPDATE tasks SET searchable_text = $2 WHERE id = $1`

	updateTaskQuery = `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, assignee_ids = $5, completed_assignee_ids = $6,
			expected_revenue = $7, currency = $8, customer_id = $9, scheduled_at = $10, started_at = $11,
			completed_at = $12, searchable_text = $13, deleted_at = $14, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at;
	`
)

// CreateTask stores a new task in PREPARING together with its customer, location, searchable text
// and TASK_CREATED activity, all in one transaction.
func (r *Repository) CreateTask(ctx context.Context, in models.NewTask) (models.Task, error) {
	defer r.observe("create_task", time.Now())

	task := models.Task{
		Title:           in.Title,
		Description:     in.Description,
		Status:          models.StatusPreparing,
		AssigneeIDs:     in.AssigneeIDs,
		ExpectedRevenue: in.ExpectedRevenue,
		Currency:        in.Currency,
		ScheduledAt:     in.ScheduledAt,
		CreatedBy:       in.CreatedBy,
	}
	if in.Customer != nil {
		customer := *in.Customer
		task.Customer = &customer
	}
	if in.Location != nil {
		location := *in.Location
		task.Location = &location
	}
	if task.AssigneeIDs == nil {
		task.AssigneeIDs = []string{}
	}
	if task.Currency == "" {
		task.Currency = models.DefaultCurrency
	}

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		if task.Customer != nil {
			customerID, err := upsertCustomer(ctx, tx, *task.Customer)
			if err != nil {
				return err
			}
			task.CustomerID = &customerID
			task.Customer.ID = customerID
		}

		err := tx.QueryRow(ctx, insertTaskQuery,
			task.Title, task.Description, string(task.Status), task.AssigneeIDs, task.ExpectedRevenue,
			task.Currency, task.CustomerID, task.ScheduledAt, task.CreatedBy,
		).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert new task: %w", err)
		}

		if task.Location != nil {
			locationID, err := upsertLocation(ctx, tx, task.ID, *task.Location)
			if err != nil {
				return err
			}
			task.Location.ID = locationID
		}

		task.SearchableText = search.BuildSearchableText(task, task.Customer, task.Location)
		if _, err = tx.Exec(ctx, updateSearchableQuery, task.ID, task.SearchableText); err != nil {
			return fmt.Errorf("failed to store searchable text of task '%d': %w", task.ID, err)
		}

		_, err = insertActivity(ctx, tx, models.NewActivity(
			models.ActionTaskCreated, task.CreatedBy, models.TaskTopic(task.ID),
			models.Payload{"title": task.Title, "status": task.Status},
		))
		return err
	})
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// GetTask returns a task that is not soft deleted.
func (r *Repository) GetTask(ctx context.Context, id int64) (models.Task, error) {
	defer r.observe("get_task", time.Now())

	task, err := scanTask(r.db.QueryRow(ctx, getTaskQuery, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Task{}, apperr.NotFound("task", id)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to get task by id: %w", err)
	}

	return task, nil
}

// MutateTask locks the task row, lets mutate change it and persists the result with the returned
// activities in the same transaction. Concurrent mutations of one task are serialized by the lock,
// so mutate always sees the latest committed state.
func (r *Repository) MutateTask(ctx context.Context, id int64, mutate TaskMutation) (models.Task, error) {
	defer r.observe("mutate_task", time.Now())

	var task models.Task
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		task, err = scanTask(tx.QueryRow(ctx, lockTaskQuery, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("task", id)
		}
		if err != nil {
			return fmt.Errorf("failed to lock task '%d': %w", id, err)
		}

		before := cloneTask(task)
		activities, err := mutate(&task)
		if err != nil {
			return err
		}
		task.ID = id

		if err = r.persistRelations(ctx, tx, before, &task); err != nil {
			return err
		}

		task.SearchableText = search.BuildSearchableText(task, task.Customer, task.Location)
		err = tx.QueryRow(ctx, updateTaskQuery,
			task.ID, task.Title, task.Description, string(task.Status), task.AssigneeIDs,
			task.CompletedAssigneeIDs, task.ExpectedRevenue, task.Currency, task.CustomerID,
			task.ScheduledAt, task.StartedAt, task.CompletedAt, task.SearchableText, task.DeletedAt,
		).Scan(&task.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update task '%d': %w", id, err)
		}

		for _, activity := range activities {
			if activity.Topic == "" {
				activity.Topic = models.TaskTopic(id)
			}
			if _, err = insertActivity(ctx, tx, activity); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return models.Task{}, err
	}

	return task, nil
}

func (r *Repository) persistRelations(ctx context.Context, tx pgx.Tx, before models.Task, task *models.Task) error {
	switch {
	case task.Customer == nil:
		task.CustomerID = nil
	case before.Customer == nil || !sameCustomer(*before.Customer, *task.Customer):
		customerID, err := upsertCustomer(ctx, tx, *task.Customer)
		if err != nil {
			return err
		}
		task.CustomerID = &customerID
		task.Customer.ID = customerID
	}

	switch {
	case task.Location == nil && before.Location != nil:
		if _, err := tx.Exec(ctx, deleteLocationQuery, task.ID); err != nil {
			return fmt.Errorf("failed to delete location of task '%d': %w", task.ID, err)
		}
	case task.Location != nil && (before.Location == nil || !sameLocation(*before.Location, *task.Location)):
		locationID, err := upsertLocation(ctx, tx, task.ID, *task.Location)
		if err != nil {
			return err
		}
		task.Location.ID = locationID
	}

	return nil
}

// SearchTasks lists tasks that are not soft deleted and match the filter. The query matches as a
// substring of the searchable text.
func (r *Repository) SearchTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	defer r.observe("search_tasks", time.Now())

	query, args := buildSearchQuery(filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan task: %w", scanErr)
		}
		tasks = append(tasks, task)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

var sortColumns = map[models.TaskSort]string{
	models.SortCreatedAt:   "t.created_at",
	models.SortScheduledAt: "t.scheduled_at",
	models.SortCompletedAt: "t.completed_at",
	models.SortID:          "t.id",
}

func buildSearchQuery(filter models.TaskFilter) (string, []any) {
	conds := []string{"t.deleted_at IS NULL"}
	args := make([]any, 0)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Query != "" {
		conds = append(conds, "t.searchable_text LIKE "+arg("%"+escapeLike(filter.Query)+"%"))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		conds = append(conds, "t.status = ANY("+arg(statuses)+")")
	}
	if filter.AssigneeID != "" {
		conds = append(conds, arg(filter.AssigneeID)+" = ANY(t.assignee_ids)")
	}
	if filter.CreatedFrom != nil {
		conds = append(conds, "t.created_at >= "+arg(*filter.CreatedFrom))
	}
	if filter.CreatedTo != nil {
		conds = append(conds, "t.created_at <= "+arg(*filter.CreatedTo))
	}
	if filter.ScheduledFrom != nil {
		conds = append(conds, "t.scheduled_at >= "+arg(*filter.ScheduledFrom))
	}
	if filter.ScheduledTo != nil {
		conds = append(conds, "t.scheduled_at <= "+arg(*filter.ScheduledTo))
	}

	column, ok := sortColumns[filter.Sort]
	if !ok {
		column = sortColumns[models.SortCreatedAt]
	}
	direction := "DESC"
	if filter.Ascending {
		direction = "ASC"
	}
	order := fmt.Sprintf("%s %s NULLS LAST", column, direction)
	if column != "t.id" {
		order += ", t.id " + direction
	}

	var sb strings.Builder
	sb.WriteString(selectTaskQuery)
	sb.WriteString(" WHERE ")
	sb.WriteString(strings.Join(conds, " AND "))
	sb.WriteString(" ORDER BY ")
	sb.WriteString(order)
	if filter.Limit > 0 {
		sb.WriteString(" LIMIT " + arg(filter.Limit))
	}
	if filter.Offset > 0 {
		sb.WriteString(" OFFSET " + arg(filter.Offset))
	}

	return sb.String(), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanTask(row pgx.Row) (models.Task, error) {
	var (
		task            models.Task
		status          string
		customerName    *string
		customerPhone   *string
		locationID      *int64
		latitude        pgtype.Float8
		longitude       pgtype.Float8
		locationName    *string
		locationAddress *string
	)

	err := row.Scan(
		&task.ID, &task.Title, &task.Description, &status, &task.AssigneeIDs, &task.CompletedAssigneeIDs,
		&task.ExpectedRevenue, &task.Currency, &task.CustomerID, &task.ScheduledAt, &task.StartedAt,
		&task.CompletedAt, &task.CreatedAt, &task.UpdatedAt, &task.CreatedBy, &task.SearchableText,
		&task.DeletedAt, &customerName, &customerPhone, &locationID, &latitude, &longitude,
		&locationName, &locationAddress,
	)
	if err != nil {
		return models.Task{}, err
	}

	task.Status = models.TaskStatus(status)
	if task.AssigneeIDs == nil {
		task.AssigneeIDs = []string{}
	}
	if task.CustomerID != nil {
		task.Customer = &models.Customer{ID: *task.CustomerID, Name: deref(customerName), Phone: deref(customerPhone)}
	}
	if locationID != nil {
		task.Location = &models.Location{
			ID:        *locationID,
			Latitude:  latitude,
			Longitude: longitude,
			Name:      deref(locationName),
			Address:   deref(locationAddress),
		}
	}

	return task, nil
}

func upsertCustomer(ctx context.Context, q querier, customer models.Customer) (int64, error) {
	var id int64
	if err := q.QueryRow(ctx, upsertCustomerQuery, customer.Name, customer.Phone).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to upsert customer: %w", err)
	}
	return id, nil
}

func upsertLocation(ctx context.Context, q querier, taskID int64, location models.Location) (int64, error) {
	var id int64
	err := q.QueryRow(ctx, upsertLocationQuery,
		taskID, location.Latitude, location.Longitude, location.Name, location.Address,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert location of task '%d': %w", taskID, err)
	}
	return id, nil
}

func cloneTask(task models.Task) models.Task {
	clone := task
	clone.AssigneeIDs = slices.Clone(task.AssigneeIDs)
	clone.CompletedAssigneeIDs = slices.Clone(task.CompletedAssigneeIDs)
	if task.Customer != nil {
		customer := *task.Customer
		clone.Customer = &customer
	}
	if task.Location != nil {
		location := *task.Location
		clone.Location = &location
	}
	return clone
}

func sameCustomer(a, b models.Customer) bool {
	return a.Name == b.Name && a.Phone == b.Phone
}

func sameLocation(a, b models.Location) bool {
	return a.Latitude == b.Latitude && a.Longitude == b.Longitude && a.Name == b.Name && a.Address == b.Address
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
