package server

import (
	"net/http"
)

func (a *API) createTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := a.decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	task, err := a.svc.Tasks.Create(r.Context(), actorOf(r), req.model())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(a.log, w, r, http.StatusCreated, task)
}

func (a *API) listTasks(w http.ResponseWriter, r *http.Request) {
	query := newSearchQuery(r.URL.Query())
	if err := a.check(query); err != nil {
		a.writeError(w, r, err)
		return
	}

	page, err := a.svc.Tasks.Search(r.Context(), actorOf(r), query.params())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(a.log, w, r, http.StatusOK, page)
}

func (a *API) getTask(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	task, err := a.svc.Tasks.Get(r.Context(), actorOf(r), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(a.log, w, r, http.StatusOK, task)
}

func (a *API) updateTask(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var req patchTaskRequest
	if err = a.decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	task, err := a.svc.Tasks.UpdateDetails(r.Context(), actorOf(r), id, req.model())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(a.log, w, r, http.StatusOK, task)
}

func (a *API) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	if err = a.svc.Tasks.Delete(r.Context(), actorOf(r), id); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) replaceAssignees(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var req assigneesRequest
	if err = a.decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	task, err := a.svc.Tasks.ReplaceAssignees(r.Context(), actorOf(r), id, req.AssigneeIDs)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(a.log, w, r, http.StatusOK, task)
}

func (a *API) changeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var req statusRequest
	if err = a.decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	task, err := a.svc.Tasks.UpdateStatus(r.Context(), actorOf(r), id, req.Status)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(a.log, w, r, http.StatusOK, task)
}

func (a *API) comment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var req commentRequest
	if err = a.decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	activity, err := a.svc.Tasks.Comment(r.Context(), actorOf(r), id, req.Text)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(a.log, w, r, http.StatusCreated, activity)
}

func (a *API) listActivities(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	activities, err := a.svc.Tasks.Activities(r.Context(), actorOf(r), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(a.log, w, r, http.StatusOK, activities)
}

func (a *API) checkIn(w http.ResponseWriter, r *http.Request) {
	a.checkPoint(w, r, true)
}

func (a *API) checkOut(w http.ResponseWriter, r *http.Request) {
	a.checkPoint(w, r, false)
}

func (a *API) checkPoint(w http.ResponseWriter, r *http.Request, arriving bool) {
	id, err := idParam(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var req positionRequest
	if err = a.decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	record := a.svc.Tasks.CheckOut
	if arriving {
		record = a.svc.Tasks.CheckIn
	}
	activity, err := record(r.Context(), actorOf(r), id, req.model())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(a.log, w, r, http.StatusCreated, activity)
}
