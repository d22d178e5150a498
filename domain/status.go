package domain

// Status is the lifecycle state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusArchived   Status = "archived"
)

// Statuses lists every valid status in presentation order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusCompleted, StatusArchived}

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists every valid priority.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func IsValidStatus(s Status) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// CanTransition reports whether a task may move from one status to another.
// Archived is terminal: the only transition out of it is the no-op back to
// archived. Every other pair, including same-status, is allowed.
func CanTransition(from, to Status) bool {
	if !IsValidStatus(from) || !IsValidStatus(to) {
		return false
	}
	if from == StatusArchived && to != StatusArchived {
		return false
	}
	return true
}
