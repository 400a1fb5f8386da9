package services

import (
	"strconv"
	"time"

	"github.com/haircarelog/haircarelog-api/internal/core/domain"
)

// NextReminder returns today at reminderTime in now's location, or the same
// time tomorrow when that instant is not after now.
func NextReminder(reminderTime string, now time.Time) (time.Time, error) {
	if !domain.ValidReminderTime(reminderTime) {
		return time.Time{}, domain.ErrInvalidReminder
	}

	hour, _ := strconv.Atoi(reminderTime[:2])
	minute, _ := strconv.Atoi(reminderTime[3:])

	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next, nil
}
