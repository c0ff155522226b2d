// Package reports aggregates what an employee did over a range of calendar days.
package reports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/aeolus/internal/access"
	"github.com/UnknownOlympus/aeolus/internal/apperr"
	"github.com/UnknownOlympus/aeolus/internal/metrics"
	"github.com/UnknownOlympus/aeolus/internal/models"
	"github.com/UnknownOlympus/aeolus/internal/repository"
	"github.com/UnknownOlympus/aeolus/internal/revenue"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type ReportService struct {
	log       *slog.Logger
	employees repository.EmployeeRepoIface
	repo      repository.ReportRepoIface
	metrics   *metrics.Metrics
	defaultTZ *time.Location
}

func NewReportService(log *slog.Logger,
	employees repository.EmployeeRepoIface,
	repo repository.ReportRepoIface,
	metrics *metrics.Metrics,
	defaultTZ *time.Location,
) *ReportService {
	return &ReportService{log: log, employees: employees, repo: repo, metrics: metrics, defaultTZ: defaultTZ}
}

func (rs *ReportService) initLogger(opn string) *slog.Logger {
	return rs.log.With(
		slog.String("op", opn),
		slog.String("division", "report"),
	)
}

// EmployeeReport builds the report of userID between startDate and endDate (YYYY-MM-DD, both
// inclusive) as calendar days of timezone. An empty timezone uses the configured default.
func (rs *ReportService) EmployeeReport(
	ctx context.Context, actor access.Actor, userID, startDate, endDate, timezone string,
) (models.EmployeeReport, error) {
	const opn = "Reports.EmployeeReport"
	log := rs.initLogger(opn)
	startTime := time.Now()
	defer func() {
		rs.metrics.ReportDuration.Observe(time.Since(startTime).Seconds())
	}()

	if !access.CanViewEmployee(actor, userID) {
		return models.EmployeeReport{}, apperr.Forbidden("view report of " + userID)
	}

	loc := rs.defaultTZ
	if timezone != "" {
		var err error
		if loc, err = time.LoadLocation(timezone); err != nil {
			return models.EmployeeReport{}, apperr.Invalid("timezone", "timezone")
		}
	}

	from, to, err := DateRange(startDate, endDate, loc)
	if err != nil {
		return models.EmployeeReport{}, err
	}

	if _, err = rs.employees.GetEmployeeByID(ctx, userID); err != nil {
		return models.EmployeeReport{}, err
	}

	checkIns, err := rs.repo.ListCheckIns(ctx, userID, from, to)
	if err != nil {
		return models.EmployeeReport{}, fmt.Errorf("failed to load check-ins: %w", err)
	}
	completed, err := rs.repo.ListCompletedTasks(ctx, userID, from, to)
	if err != nil {
		return models.EmployeeReport{}, fmt.Errorf("failed to load completed tasks: %w", err)
	}

	figures, tasks := Aggregate(userID, checkIns, completed, loc)

	log.DebugContext(ctx, "Report built", "user", userID, "from", startDate, "to", endDate,
		"days", figures.DaysWorked, "tasks", figures.TasksCompleted)
	return models.EmployeeReport{
		UserID:    userID,
		StartDate: startDate,
		EndDate:   endDate,
		Timezone:  loc.String(),
		Metrics:   figures,
		Tasks:     tasks,
	}, nil
}

// DateRange maps two calendar days of loc to the instants [start 00:00:00, end 23:59:59.999].
func DateRange(startDate, endDate string, loc *time.Location) (time.Time, time.Time, error) {
	fields := map[string]string{}

	start, err := time.ParseInLocation(dateLayout, startDate, loc)
	if err != nil {
		fields["startDate"] = "datetime"
	}
	end, err := time.ParseInLocation(dateLayout, endDate, loc)
	if err != nil {
		fields["endDate"] = "datetime"
	}
	if len(fields) == 0 && end.Before(start) {
		fields["endDate"] = "gtefield"
	}
	if len(fields) > 0 {
		return time.Time{}, time.Time{}, &apperr.ValidationError{Fields: fields}
	}

	return start, end.AddDate(0, 0, 1).Add(-time.Millisecond), nil
}

// Aggregate turns raw check-ins and completed tasks into report figures. Days are counted as
// distinct calendar dates in loc. Every task contributes the user's allocated share of its
// expected revenue, so the shares of all workers on a task add up to the task revenue.
func Aggregate(
	userID string, checkIns []time.Time, completed []models.CompletedTask, loc *time.Location,
) (models.ReportMetrics, []models.ReportedTask) {
	days := make(map[string]struct{}, len(checkIns))
	for _, at := range checkIns {
		days[at.In(loc).Format(dateLayout)] = struct{}{}
	}

	total := decimal.Zero
	tasks := make([]models.ReportedTask, 0, len(completed))
	for _, task := range completed {
		share := revenue.Allocate(task.ExpectedRevenue, task.Currency, task.AssigneeIDs)[userID]
		total = total.Add(share)
		tasks = append(tasks, models.ReportedTask{
			ID:           task.ID,
			Title:        task.Title,
			CompletedAt:  task.CompletedAt.In(loc),
			Revenue:      task.ExpectedRevenue,
			RevenueShare: share,
			WorkerCount:  revenue.WorkerCount(task.AssigneeIDs),
		})
	}

	return models.ReportMetrics{
		DaysWorked:     len(days),
		TasksCompleted: len(tasks),
		TotalRevenue:   total,
	}, tasks
}
