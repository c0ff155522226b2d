package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (a *API) listEmployees(w http.ResponseWriter, r *http.Request) {
	query := employeeListQuery{Active: r.URL.Query().Get("active")}
	if err := a.check(query); err != nil {
		a.writeError(w, r, err)
		return
	}

	var active *bool
	if query.Active != "" {
		value, _ := strconv.ParseBool(query.Active)
		active = &value
	}

	list, err := a.svc.Staff.List(r.Context(), actorOf(r), active)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(a.log, w, r, http.StatusOK, list)
}

func (a *API) createEmployee(w http.ResponseWriter, r *http.Request) {
	var req createEmployeeRequest
	if err := a.decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	employee, err := a.svc.Staff.Create(r.Context(), actorOf(r), req.model())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(a.log, w, r, http.StatusCreated, employee)
}

func (a *API) getEmployee(w http.ResponseWriter, r *http.Request) {
	employee, err := a.svc.Staff.Get(r.Context(), actorOf(r), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(a.log, w, r, http.StatusOK, employee)
}

func (a *API) updateEmployee(w http.ResponseWriter, r *http.Request) {
	var req patchEmployeeRequest
	if err := a.decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	employee, err := a.svc.Staff.Update(r.Context(), actorOf(r), chi.URLParam(r, "id"), req.model())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(a.log, w, r, http.StatusOK, employee)
}

func (a *API) employeeReport(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	query := reportQuery{
		StartDate: values.Get("startDate"),
		EndDate:   values.Get("endDate"),
		Timezone:  values.Get("timezone"),
	}
	if err := a.check(query); err != nil {
		a.writeError(w, r, err)
		return
	}

	report, err := a.svc.Reports.EmployeeReport(r.Context(), actorOf(r), chi.URLParam(r, "id"),
		query.StartDate, query.EndDate, query.Timezone)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(a.log, w, r, http.StatusOK, report)
}
