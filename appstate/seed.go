package appstate

import (
	"fastboard/model"
)

// initialProjects is the dataset loaded on first run and by reset, used
// when no seed file is configured.
func initialProjects() []model.Project {
	return []model.Project{
		{
			ID:    "website-redesign",
			Name:  "Website Redesign",
			Color: "#10b981",
			Tasks: []model.Task{
				{ID: "task-wr-1", ProjectID: "website-redesign", Title: "Landing page", Status: "todo", Priority: "medium"},
				{ID: "task-wr-2", ProjectID: "website-redesign", Title: "Wireframes", Status: "todo", Priority: "high"},
				{ID: "task-wr-3", ProjectID: "website-redesign", Title: "Content audit", Status: "todo", Priority: "medium"},
			},
		},
		{
			ID:    "mobile-app",
			Name:  "Mobile App",
			Color: "#8b5cf6",
			Tasks: []model.Task{
				{ID: "task-ma-1", ProjectID: "mobile-app", Title: "Onboarding flow", Status: "todo", Priority: "high"},
				{ID: "task-ma-2", ProjectID: "mobile-app", Title: "Push notifications", Status: "todo", Priority: "medium"},
			},
		},
		{
			ID:    "q3-marketing",
			Name:  "Q3 Marketing",
			Color: "#ff6b35",
			Tasks: []model.Task{
				{ID: "task-qm-1", ProjectID: "q3-marketing", Title: "Campaign brief", Status: "todo", Priority: "medium"},
				{ID: "task-qm-2", ProjectID: "q3-marketing", Title: "Monthly report", Status: "todo", Priority: "medium"},
				{ID: "task-qm-3", ProjectID: "q3-marketing", Title: "Competitor check", Status: "todo", Priority: "low"},
			},
		},
	}
}
