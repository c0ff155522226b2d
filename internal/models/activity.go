package models

import (
	"strconv"
	"time"
)

// ActivityAction tags what happened.
type ActivityAction string

const (
	ActionTaskCreated      ActivityAction = "TASK_CREATED"
	ActionTaskUpdated      ActivityAction = "TASK_UPDATED"
	ActionTaskDeleted      ActivityAction = "TASK_DELETED"
	ActionStatusChanged    ActivityAction = "STATUS_CHANGED"
	ActionAssigneesChanged ActivityAction = "ASSIGNEES_CHANGED"
	ActionCommented        ActivityAction = "COMMENTED"
	ActionCheckedIn        ActivityAction = "CHECKED_IN"
	ActionCheckedOut       ActivityAction = "CHECKED_OUT"
	ActionPaymentRecorded  ActivityAction = "PAYMENT_RECORDED"
	ActionFileAttached     ActivityAction = "FILE_ATTACHED"
	ActionEmployeeCreated  ActivityAction = "EMPLOYEE_CREATED"
	ActionEmployeeUpdated  ActivityAction = "EMPLOYEE_UPDATED"
)

// Payload is the free-form JSON body of an activity.
type Payload map[string]any

// Activity is an append-only audit record. ActorID is nil for system actions.
type Activity struct {
	ID        int64          `json:"id"`
	Action    ActivityAction `json:"action"`
	ActorID   *string        `json:"actorId"`
	Topic     string         `json:"topic"`
	Payload   Payload        `json:"payload"`
	CreatedAt time.Time      `json:"createdAt"`
}

// TaskTopic returns the topic reference of a task, e.g. "TASK:123".
func TaskTopic(taskID int64) string {
	return "TASK:" + strconv.FormatInt(taskID, 10)
}

// EmployeeTopic returns the topic reference of an employee, e.g. "EMPLOYEE:u1".
func EmployeeTopic(userID string) string {
	return "EMPLOYEE:" + userID
}

// NewActivity builds an activity performed by actorID. An empty actorID marks a system action.
func NewActivity(action ActivityAction, actorID, topic string, payload Payload) Activity {
	var actor *string
	if actorID != "" {
		actor = &actorID
	}
	if payload == nil {
		payload = Payload{}
	}
	return Activity{Action: action, ActorID: actor, Topic: topic, Payload: payload}
}
