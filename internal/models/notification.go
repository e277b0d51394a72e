package models

import "time"

// NotificationEntry is the cached "what should I be notified about" answer for one user.
type NotificationEntry struct {
	UpcomingTasks []Task    `json:"upcomingTasks"`
	OverdueTasks  []Task    `json:"overdueTasks"`
	LastUpdated   time.Time `json:"lastUpdated"`
}
