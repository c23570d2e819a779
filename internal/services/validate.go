package services

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/adanyl0v/go-todo-web/internal/models"
)

// MaxTitleLength mirrors the width of the tasks.title column.
const MaxTitleLength = 255

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrInvalidTask
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ErrInvalidTask
	}
	return nil
}

func normalizeDueDate(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	date := models.TruncateDate(*d)
	return &date
}

// parseTaskID reports false for IDs that can't name any stored task.
func parseTaskID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// nextUpdatedAt keeps UpdatedAt strictly increasing even when the clock
// hasn't moved since the previous write.
func nextUpdatedAt(now, prev time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Microsecond)
}
