// Package ordering defines the display order of task lists.
//
// Every policy puts unfinished tasks before finished ones, sorts tasks
// without a due date after tasks with one, and falls back to the most
// recently created task first.
package ordering

import (
	"cmp"
	"slices"

	"github.com/adanyl0v/go-todo-web/internal/models"
)

// Policy compares two tasks the way slices.SortFunc expects.
type Policy func(a, b *models.Task) int

var (
	// WithPosition orders by done flag, manual position, due date and
	// creation time. The home page uses it.
	WithPosition Policy = func(a, b *models.Task) int {
		return cmp.Or(
			compareDone(a, b),
			cmp.Compare(a.Position, b.Position),
			compareDueDate(a, b),
			compareCreatedDesc(a, b),
		)
	}

	// WithoutPosition ignores the manual position.
	WithoutPosition Policy = func(a, b *models.Task) int {
		return cmp.Or(
			compareDone(a, b),
			compareDueDate(a, b),
			compareCreatedDesc(a, b),
		)
	}
)

// Sort orders tasks in place. Tasks that compare equal keep their
// relative order.
func (p Policy) Sort(tasks []*models.Task) {
	slices.SortStableFunc(tasks, p)
}

// Sorted returns an ordered copy of tasks.
func (p Policy) Sorted(tasks []*models.Task) []*models.Task {
	sorted := slices.Clone(tasks)
	p.Sort(sorted)
	return sorted
}

func compareDone(a, b *models.Task) int {
	switch {
	case a.IsDone == b.IsDone:
		return 0
	case !a.IsDone:
		return -1
	default:
		return 1
	}
}

// compareDueDate puts nil due dates last.
func compareDueDate(a, b *models.Task) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	default:
		return a.DueDate.Compare(*b.DueDate)
	}
}

func compareCreatedDesc(a, b *models.Task) int {
	return b.CreatedAt.Compare(a.CreatedAt)
}
