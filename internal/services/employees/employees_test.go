package employees_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/aeolus/internal/access"
	"github.com/UnknownOlympus/aeolus/internal/apperr"
	"github.com/UnknownOlympus/aeolus/internal/metrics"
	"github.com/UnknownOlympus/aeolus/internal/models"
	"github.com/UnknownOlympus/aeolus/internal/services/employees"
	mocks "github.com/UnknownOlympus/aeolus/mock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	admin  = access.NewActor("admin-1", access.RoleAdmin)
	worker = access.NewActor("w1", access.RoleWorker)
)

func newStaff(t *testing.T, placeholders bool) (*employees.Staff, *mocks.EmployeeRepoIface, *metrics.Metrics) {
	t.Helper()
	repo := mocks.NewEmployeeRepoIface(t)
	m := metrics.NewMetrics(prometheus.NewRegistry())
	return employees.NewStaff(slog.Default(), repo, m, placeholders), repo, m
}

func TestNewStaff(t *testing.T) {
	t.Parallel()

	s, _, _ := newStaff(t, false)

	assert.NotNil(t, s)
}

func TestCreate(t *testing.T) {
	t.Parallel()

	t.Run("should save a new employee", func(t *testing.T) {
		t.Parallel()
		s, repo, _ := newStaff(t, false)

		repo.On("SaveEmployee", mock.Anything, models.Employee{
			ID:       "w7",
			FullName: "Lê Văn Tám",
			Position: "Kỹ thuật viên",
			Email:    "tam@example.com",
			Phone:    "0961234567",
			Roles:    []string{"worker"},
			Active:   true,
		}, mock.MatchedBy(func(a models.Activity) bool {
			return a.Action == models.ActionEmployeeCreated && a.Topic == "EMPLOYEE:w7" && *a.ActorID == "admin-1"
		})).Return(nil).Once()
		repo.On("GetEmployeeByID", mock.Anything, "w7").Return(models.Employee{ID: "w7", Active: true}, nil).Once()

		got, err := s.Create(context.Background(), admin, models.Employee{
			ID:       " w7 ",
			FullName: "Lê Văn Tám ",
			Position: "Kỹ thuật viên",
			Email:    "tam@example.com",
			Phone:    "096 123 4567",
			Roles:    []string{"Worker", "worker"},
		})

		require.NoError(t, err)
		assert.Equal(t, "w7", got.ID)
	})

	t.Run("should generate a placeholder email", func(t *testing.T) {
		t.Parallel()
		s, repo, m := newStaff(t, true)

		repo.On("SaveEmployee", mock.Anything, mock.MatchedBy(func(e models.Employee) bool {
			return e.Email != ""
		}), mock.Anything).Return(nil).Once()
		repo.On("GetEmployeeByID", mock.Anything, "w8").Return(models.Employee{ID: "w8"}, nil).Once()

		_, err := s.Create(context.Background(), admin, models.Employee{ID: "w8", FullName: "Phạm Thu", Roles: []string{"worker"}})

		require.NoError(t, err)
		assert.InDelta(t, 1, testutil.ToFloat64(m.PlaceholderEmails), 0)
	})

	t.Run("should reject invalid input", func(t *testing.T) {
		t.Parallel()
		s, _, _ := newStaff(t, true)

		_, err := s.Create(context.Background(), admin, models.Employee{
			Email: "testuser.com",
			Phone: "+invalid_number",
			Roles: []string{"owner"},
		})

		require.ErrorIs(t, err, apperr.ErrValidation)
		assert.Equal(t, map[string]string{
			"id":          "required",
			"fullname":    "required",
			"email":       "email",
			"phoneNumber": "e164",
			"roles":       "oneof",
		}, apperr.Fields(err))
	})

	t.Run("should require email without placeholders", func(t *testing.T) {
		t.Parallel()
		s, _, _ := newStaff(t, false)

		_, err := s.Create(context.Background(), admin, models.Employee{ID: "w9", FullName: "An", Roles: []string{"worker"}})

		assert.Equal(t, map[string]string{"email": "required"}, apperr.Fields(err))
	})

	t.Run("should return error when failed to save employee", func(t *testing.T) {
		t.Parallel()
		s, repo, _ := newStaff(t, false)
		repo.On("SaveEmployee", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError).Once()

		_, err := s.Create(context.Background(), admin, models.Employee{
			ID: "w9", FullName: "An", Email: "an@example.com", Roles: []string{"worker"},
		})

		require.ErrorContains(t, err, "failed to save new employee")
	})

	t.Run("worker cannot create", func(t *testing.T) {
		t.Parallel()
		s, _, _ := newStaff(t, false)

		_, err := s.Create(context.Background(), worker, models.Employee{ID: "w9"})

		require.ErrorIs(t, err, apperr.ErrPermissionDenied)
	})
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	existing := models.Employee{
		ID:       "w1",
		FullName: "Old Name",
		Email:    "old@example.com",
		Roles:    []string{"worker"},
		Active:   true,
	}

	t.Run("should update an existing employee", func(t *testing.T) {
		t.Parallel()
		s, repo, _ := newStaff(t, false)
		name, active := "Updated Name", false

		repo.On("GetEmployeeByID", mock.Anything, "w1").Return(existing, nil).Once()
		repo.On("UpdateEmployee", mock.Anything, mock.MatchedBy(func(e models.Employee) bool {
			return e.FullName == "Updated Name" && !e.Active && e.Email == "old@example.com"
		}), mock.MatchedBy(func(a models.Activity) bool {
			return a.Action == models.ActionEmployeeUpdated &&
				assert.ObjectsAreEqual([]string{"fullname", "active"}, a.Payload["fields"])
		})).Return(nil).Once()
		repo.On("GetEmployeeByID", mock.Anything, "w1").Return(models.Employee{ID: "w1", FullName: name}, nil).Once()

		got, err := s.Update(context.Background(), admin, "w1", models.EmployeePatch{FullName: &name, Active: &active})

		require.NoError(t, err)
		assert.Equal(t, "Updated Name", got.FullName)
	})

	t.Run("should skip unchanged employee", func(t *testing.T) {
		t.Parallel()
		s, repo, _ := newStaff(t, false)
		name := "Old Name"
		repo.On("GetEmployeeByID", mock.Anything, "w1").Return(existing, nil).Once()

		got, err := s.Update(context.Background(), admin, "w1", models.EmployeePatch{FullName: &name})

		require.NoError(t, err)
		assert.Equal(t, existing, got)
	})

	t.Run("should return error when failed to update employee", func(t *testing.T) {
		t.Parallel()
		s, repo, _ := newStaff(t, false)
		email := "new@example.com"
		repo.On("GetEmployeeByID", mock.Anything, "w1").Return(existing, nil).Once()
		repo.On("UpdateEmployee", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError).Once()

		_, err := s.Update(context.Background(), admin, "w1", models.EmployeePatch{Email: &email})

		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("missing employee", func(t *testing.T) {
		t.Parallel()
		s, repo, _ := newStaff(t, false)
		repo.On("GetEmployeeByID", mock.Anything, "w404").Return(models.Employee{}, apperr.NotFound("employee", "w404"))

		_, err := s.Update(context.Background(), admin, "w404", models.EmployeePatch{})

		require.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestGetAndList(t *testing.T) {
	t.Parallel()

	t.Run("worker reads own record", func(t *testing.T) {
		t.Parallel()
		s, repo, _ := newStaff(t, false)
		repo.On("GetEmployeeByID", mock.Anything, "w1").Return(models.Employee{ID: "w1"}, nil)

		got, err := s.Get(context.Background(), worker, "w1")

		require.NoError(t, err)
		assert.Equal(t, "w1", got.ID)
	})

	t.Run("worker cannot read others", func(t *testing.T) {
		t.Parallel()
		s, _, _ := newStaff(t, false)

		_, err := s.Get(context.Background(), worker, "w2")

		require.ErrorIs(t, err, apperr.ErrPermissionDenied)
	})

	t.Run("admin lists active", func(t *testing.T) {
		t.Parallel()
		s, repo, _ := newStaff(t, false)
		active := true
		repo.On("ListEmployees", mock.Anything, &active).Return([]models.Employee{{ID: "w1"}}, nil)

		got, err := s.List(context.Background(), admin, &active)

		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("worker cannot list", func(t *testing.T) {
		t.Parallel()
		s, _, _ := newStaff(t, false)

		_, err := s.List(context.Background(), worker, nil)

		require.ErrorIs(t, err, apperr.ErrPermissionDenied)
	})
}

func TestValiidateEmployee_Success(t *testing.T) {
	t.Parallel()

	email := "testuser@example.com"
	phone := "+345678765432"

	isEmail, isPhone := employees.ValidateEmployee(email, phone)

	assert.True(t, isEmail)
	assert.True(t, isPhone)
}

func TestValiidateEmployee_Fail(t *testing.T) {
	t.Parallel()

	email := "testuser.com"
	phone := "+invalid_number"

	isEmail, isPhone := employees.ValidateEmployee(email, phone)

	assert.False(t, isEmail)
	assert.False(t, isPhone)
}
