package model

import (
	"time"
)

// SyncData is the full-dataset envelope exchanged with the sync server.
// Projects travel without their embedded tasks; tasks carry the projectId
// back-reference instead.
type SyncData struct {
	Projects []Project `json:"projects" firestore:"projects"`
	Tasks    []Task    `json:"tasks" firestore:"tasks"`
	LastSync time.Time `json:"lastSync" firestore:"lastSync"`
}
