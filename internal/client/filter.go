package client

import (
	"fmt"

	"todoapi/internal/core/domain"
)

type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusActive    StatusFilter = "active"
	StatusCompleted StatusFilter = "completed"
)

// PriorityAll disables the priority filter.
const PriorityAll = "all"

// Filter narrows the visible list. Both parts must match.
type Filter struct {
	Status   StatusFilter
	Priority string
}

func ParseFilter(status, priority string) (Filter, error) {
	f := Filter{Status: StatusFilter(status), Priority: priority}
	switch f.Status {
	case "":
		f.Status = StatusAll
	case StatusAll, StatusActive, StatusCompleted:
	default:
		return Filter{}, fmt.Errorf("unknown status filter %q", status)
	}

	switch {
	case f.Priority == "":
		f.Priority = PriorityAll
	case f.Priority == PriorityAll, domain.Priority(f.Priority).Valid():
	default:
		return Filter{}, fmt.Errorf("unknown priority filter %q", priority)
	}
	return f, nil
}

func (f Filter) Match(task domain.Task) bool {
	switch f.Status {
	case StatusActive:
		if task.Completed {
			return false
		}
	case StatusCompleted:
		if !task.Completed {
			return false
		}
	}
	if f.Priority != "" && f.Priority != PriorityAll && string(task.Priority) != f.Priority {
		return false
	}
	return true
}

// Counts holds the size of every filter bucket over the full list.
type Counts struct {
	All       int
	Active    int
	Completed int
	High      int
	Medium    int
	Low       int
}

// Visible returns the tasks matching f without touching the local list.
func (c *Controller) Visible(f Filter) []domain.Task {
	tasks := c.Tasks()
	out := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if f.Match(task) {
			out = append(out, task)
		}
	}
	return out
}

func (c *Controller) Counts() Counts {
	tasks := c.Tasks()
	counts := Counts{All: len(tasks)}
	for _, task := range tasks {
		if task.Completed {
			counts.Completed++
		} else {
			counts.Active++
		}
		switch task.Priority {
		case domain.PriorityHigh:
			counts.High++
		case domain.PriorityMedium:
			counts.Medium++
		case domain.PriorityLow:
			counts.Low++
		}
	}
	return counts
}
