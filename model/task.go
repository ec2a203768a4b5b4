package model

import (
	"time"
)

// Task labels used for calendar and kanban grouping.
const (
	LabelToSchedule   = "to-schedule"
	LabelScheduled    = "scheduled"
	LabelInProgress   = "in-progress"
	LabelHighPriority = "high-priority"
	LabelInReview     = "in-review"
	LabelCompleted    = "completed"
)

type Task struct {
	ID          string     `json:"id" firestore:"id"`
	ProjectID   string     `json:"projectId" firestore:"projectId"`
	Title       string     `json:"title" firestore:"title"`
	Description string     `json:"description" firestore:"description"`
	Status      string     `json:"status" firestore:"status"`     // todo, in-progress, in-review, completed
	Priority    string     `json:"priority" firestore:"priority"` // low, medium, high
	Label       string     `json:"label,omitempty" firestore:"label,omitempty"`
	Date        *time.Time `json:"date" firestore:"date"`
	AssignedTo  string     `json:"assignedTo" firestore:"assignedTo"`
	Owner       string     `json:"owner,omitempty" firestore:"owner,omitempty"`
	Completed   bool       `json:"completed" firestore:"completed"`
}

// LabelDefaults maps a creation-time label to the status/priority pair a new
// task starts with. Unknown or empty labels fall back to todo/medium.
func LabelDefaults(label string) (status, priority string) {
	switch label {
	case LabelHighPriority:
		return "todo", "high"
	case LabelInProgress:
		return "in-progress", "medium"
	case LabelInReview:
		return "in-review", "medium"
	case LabelCompleted:
		return "completed", "low"
	default:
		return "todo", "medium"
	}
}

// EffectiveLabel is the label a task is grouped under. An explicit
// in-progress or high-priority label wins over everything; otherwise a
// scheduled date implies "scheduled"; otherwise the stored label, falling
// back to "to-schedule".
func EffectiveLabel(t Task) string {
	if t.Label == LabelInProgress || t.Label == LabelHighPriority {
		return t.Label
	}
	if t.Date != nil {
		return LabelScheduled
	}
	if t.Label != "" {
		return t.Label
	}
	return LabelToSchedule
}
