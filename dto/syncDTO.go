package dto

import (
	"time"

	"fastboard/model"
)

type PushSyncRequest struct {
	Projects []model.Project `json:"projects" binding:"required"`
	Tasks    []model.Task    `json:"tasks" binding:"required"`
}

type GetSyncResponse struct {
	Success bool           `json:"success"`
	Data    model.SyncData `json:"data"`
	Storage string         `json:"storage,omitempty"`
}

type PushSyncResponse struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message"`
	LastSync time.Time `json:"lastSync"`
}

type HealthResponse struct {
	Success   bool      `json:"success"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
