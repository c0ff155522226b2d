// Package server exposes the services over HTTP and serves the monitoring endpoints.
package server

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/UnknownOlympus/aeolus/internal/access"
	"github.com/UnknownOlympus/aeolus/internal/apperr"
	"github.com/UnknownOlympus/aeolus/internal/auth"
	"github.com/UnknownOlympus/aeolus/internal/config"
	"github.com/UnknownOlympus/aeolus/internal/metrics"
	"github.com/UnknownOlympus/aeolus/internal/services/attachments"
	"github.com/UnknownOlympus/aeolus/internal/services/employees"
	"github.com/UnknownOlympus/aeolus/internal/services/payments"
	"github.com/UnknownOlympus/aeolus/internal/services/reports"
	"github.com/UnknownOlympus/aeolus/internal/services/tasks"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// Services are the use cases the API exposes.
type Services struct {
	Tasks       *tasks.TaskService
	Payments    *payments.PaymentService
	Attachments *attachments.AttachmentService
	Staff       *employees.Staff
	Reports     *reports.ReportService
}

// Downloads serves files behind signed links.
type Downloads interface {
	Verify(key, token string) error
	Open(key string) (*os.File, error)
}

type API struct {
	log       *slog.Logger
	svc       Services
	verifier  *auth.Verifier
	files     Downloads
	metrics   *metrics.Metrics
	validate  *validator.Validate
	limiter   *ipLimiter
	maxUpload int64
}

func NewAPI(log *slog.Logger,
	svc Services,
	verifier *auth.Verifier,
	files Downloads,
	metrics *metrics.Metrics,
	httpCfg config.HTTPConfig,
	maxUpload int64,
) *API {
	return &API{
		log:       log.With(slog.String("division", "api")),
		svc:       svc,
		verifier:  verifier,
		files:     files,
		metrics:   metrics,
		validate:  newValidator(),
		limiter:   newIPLimiter(httpCfg.RateLimit, httpCfg.RateBurst),
		maxUpload: maxUpload,
	}
}

// Routes builds the router of the public API.
func (a *API) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(a.accessLog)
	router.Use(middleware.Recoverer)
	router.Use(a.instrument)
	router.Use(securityHeaders)
	router.Use(a.rateLimit)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		a.writeCode(w, r, http.StatusNotFound, apperr.CodeNotFound, nil)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		a.writeCode(w, r, http.StatusMethodNotAllowed, apperr.CodeValidation, nil)
	})

	router.Get("/files/*", a.download)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(a.authenticate)

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", a.createTask)
			r.Get("/", a.listTasks)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", a.getTask)
				r.Patch("/", a.updateTask)
				r.Delete("/", a.deleteTask)
				r.Put("/assignees", a.replaceAssignees)
				r.Post("/status", a.changeStatus)
				r.Post("/comments", a.comment)
				r.Get("/activities", a.listActivities)
				r.Post("/check-in", a.checkIn)
				r.Post("/check-out", a.checkOut)

				r.Post("/payments", a.recordPayment)
				r.Get("/payments", a.listPayments)
				r.Get("/payments/summary", a.paymentSummary)

				r.Post("/attachments", a.attach)
				r.Get("/attachments", a.listAttachments)
			})
		})

		r.Get("/attachments/{id}/url", a.attachmentURL)

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", a.listEmployees)
			r.Post("/", a.createEmployee)
			r.Get("/{id}", a.getEmployee)
			r.Patch("/{id}", a.updateEmployee)
			r.Get("/{id}/report", a.employeeReport)
		})
	})

	return router
}

func actorOf(r *http.Request) access.Actor {
	actor, _ := access.FromContext(r.Context())
	return actor
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid("id", "number")
	}
	return id, nil
}
