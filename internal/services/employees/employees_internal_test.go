package employees

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/UnknownOlympus/aeolus/internal/metrics"
	"github.com/UnknownOlympus/aeolus/internal/models"
	mocks "github.com/UnknownOlympus/aeolus/mock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	staff := NewStaff(logger, mocks.NewEmployeeRepoIface(t), metrics.NewMetrics(prometheus.NewRegistry()), false)

	t.Run("should trim and dedupe", func(t *testing.T) {
		employee := models.Employee{
			FullName: "  Đỗ Minh  ",
			Email:    " minh@example.com ",
			Phone:    "+84 96-123.4567",
			Roles:    []string{" ADMIN", "worker", "admin"},
		}
		fields := map[string]string{}

		staff.normalize(context.Background(), logger, &employee, fields)

		assert.Empty(t, fields)
		assert.Equal(t, "Đỗ Minh", employee.FullName)
		assert.Equal(t, "minh@example.com", employee.Email)
		assert.Equal(t, "+84961234567", employee.Phone)
		assert.Equal(t, []string{"admin", "worker"}, employee.Roles)
	})

	t.Run("should reject display name addresses and missing roles", func(t *testing.T) {
		employee := models.Employee{FullName: "Minh", Email: "Minh <minh@example.com>"}
		fields := map[string]string{}

		staff.normalize(context.Background(), logger, &employee, fields)

		assert.Equal(t, map[string]string{"email": "email", "roles": "required"}, fields)
	})
}

func TestChangedFields(t *testing.T) {
	before := models.Employee{FullName: "A", Position: "P", Email: "a@x.vn", Phone: "1", Roles: []string{"worker"}, Active: true}

	assert.Empty(t, changedFields(before, before))

	after := before
	after.Position = "Q"
	after.Roles = []string{"worker", "admin"}
	assert.Equal(t, []string{"position", "roles"}, changedFields(before, after))
}
