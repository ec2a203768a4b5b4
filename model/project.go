package model

import (
	"time"
)

type Project struct {
	ID       string     `json:"id" firestore:"id"`
	Name     string     `json:"name" firestore:"name"`
	Logo     string     `json:"logo,omitempty" firestore:"logo,omitempty"`
	Color    string     `json:"color,omitempty" firestore:"color,omitempty"`
	DueDate  *time.Time `json:"dueDate" firestore:"dueDate"`
	Progress int        `json:"progress" firestore:"progress"`
	Tasks    []Task     `json:"tasks,omitempty" firestore:"-"`
}

// WithoutTasks returns a copy safe to store or send where tasks travel
// separately from their projects.
func (p Project) WithoutTasks() Project {
	p.Tasks = nil
	return p
}
