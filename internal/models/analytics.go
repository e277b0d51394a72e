package models

type PriorityCount struct {
	Priority TaskPriority `json:"priority"`
	Count    int          `json:"count"`
}

type DashboardSummary struct {
	TotalTasks           int             `json:"totalTasks"`
	CompletedTasks       int             `json:"completedTasks"`
	PendingTasks         int             `json:"pendingTasks"`
	CompletionPercentage int             `json:"completionPercentage"`
	PriorityDistribution []PriorityCount `json:"priorityDistribution"`
}

type TaskStats struct {
	TotalTasks           int     `json:"totalTasks"`
	AvgCompletionTimeHrs float64 `json:"avgCompletionTimeHrs"`
	OverdueTasks         int     `json:"overdueTasks"`
	ProductivityScore    float64 `json:"productivityScore"`
}

type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
