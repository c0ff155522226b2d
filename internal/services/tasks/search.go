package tasks

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/aeolus/internal/access"
	"github.com/UnknownOlympus/aeolus/internal/apperr"
	"github.com/UnknownOlympus/aeolus/internal/models"
	"github.com/UnknownOlympus/aeolus/internal/search"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	cursorPrefix    = "o:"
)

// SearchParams is a task listing request as received from the caller.
type SearchParams struct {
	Query         string
	Statuses      []models.TaskStatus
	AssigneeID    string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	ScheduledFrom *time.Time
	ScheduledTo   *time.Time
	Sort          models.TaskSort
	Ascending     bool
	Limit         int
	Cursor        string
}

// Search lists the tasks matching params, newest first unless sorted otherwise. The query is
// matched accent-insensitively; an empty query lists everything the actor may see. Workers
// only ever see the tasks they are assigned to.
func (ts *TaskService) Search(ctx context.Context, actor access.Actor, params SearchParams) (models.TaskPage, error) {
	const opn = "Tasks.Search"
	log := ts.initLogger(opn)

	filter, err := buildFilter(actor, params)
	if err != nil {
		return models.TaskPage{}, err
	}

	limit := filter.Limit
	filter.Limit++

	tasks, err := ts.repo.SearchTasks(ctx, filter)
	if err != nil {
		return models.TaskPage{}, fmt.Errorf("failed to search tasks: %w", err)
	}

	page := models.TaskPage{Tasks: tasks}
	if len(tasks) > limit {
		page.Tasks = tasks[:limit]
		page.NextCursor = EncodeCursor(filter.Offset + limit)
	}

	log.DebugContext(ctx, "Tasks listed", "query", filter.Query, "count", len(page.Tasks))
	return page, nil
}

func buildFilter(actor access.Actor, params SearchParams) (models.TaskFilter, error) {
	if actor.IsZero() || (!actor.IsAdmin() && !actor.IsWorker()) {
		return models.TaskFilter{}, apperr.Forbidden("list tasks")
	}

	fields := fieldErrors{}
	filter := models.TaskFilter{
		Query:         search.NormalizeQuery(params.Query),
		Statuses:      params.Statuses,
		AssigneeID:    strings.TrimSpace(params.AssigneeID),
		CreatedFrom:   params.CreatedFrom,
		CreatedTo:     params.CreatedTo,
		ScheduledFrom: params.ScheduledFrom,
		ScheduledTo:   params.ScheduledTo,
		Sort:          params.Sort,
		Ascending:     params.Ascending,
		Limit:         params.Limit,
	}

	if !access.CanManageTasks(actor) {
		filter.AssigneeID = actor.ID()
	}
	for _, s := range filter.Statuses {
		if !s.IsValid() {
			fields["status"] = "oneof"
		}
	}
	switch filter.Sort {
	case "":
		filter.Sort = models.SortCreatedAt
	case models.SortCreatedAt, models.SortScheduledAt, models.SortCompletedAt, models.SortID:
	default:
		fields["sort"] = "oneof"
	}
	switch {
	case filter.Limit == 0:
		filter.Limit = DefaultPageSize
	case filter.Limit < 0 || filter.Limit > MaxPageSize:
		fields["limit"] = "max"
	}
	if inverted(filter.CreatedFrom, filter.CreatedTo) {
		fields["createdTo"] = "gtefield"
	}
	if inverted(filter.ScheduledFrom, filter.ScheduledTo) {
		fields["scheduledTo"] = "gtefield"
	}

	offset, err := DecodeCursor(params.Cursor)
	if err != nil {
		fields["cursor"] = "invalid"
	}
	filter.Offset = offset

	return filter, fields.err()
}

func inverted(from, to *time.Time) bool {
	return from != nil && to != nil && to.Before(*from)
}

// EncodeCursor returns the opaque cursor of the page starting at offset.
func EncodeCursor(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(cursorPrefix + strconv.Itoa(offset)))
}

// DecodeCursor returns the offset of cursor. The empty cursor is the first page.
func DecodeCursor(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("failed to decode cursor: %w", err)
	}
	value, found := strings.CutPrefix(string(raw), cursorPrefix)
	if !found {
		return 0, fmt.Errorf("unexpected cursor %q", cursor)
	}
	offset, err := strconv.Atoi(value)
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("unexpected cursor offset %q", value)
	}
	return offset, nil
}
