package service

import (
	"time"

	"timesheet/internal/model"
)

// OverwriteWindow is the full calendar week an overwrite clears:
// [weekEnd-6d, weekEnd], returned as a half-open [from, until) range.
func OverwriteWindow(weekEnd time.Time) (from, until time.Time) {
	end := model.NewDate(weekEnd).Time
	return end.AddDate(0, 0, -6), end.AddDate(0, 0, 1)
}

// DisplayWindow is the Sunday–Thursday working week shown when a week is
// reloaded: [weekEnd-4d, weekEnd], half-open like OverwriteWindow.
func DisplayWindow(weekEnd time.Time) (from, until time.Time) {
	end := model.NewDate(weekEnd).Time
	return end.AddDate(0, 0, -4), end.AddDate(0, 0, 1)
}

// WeekEnding returns the Thursday closing the Sunday–Thursday week that d
// falls in. Friday and Saturday belong to the week that just ended.
func WeekEnding(d time.Time) time.Time {
	day := model.NewDate(d).Time
	sunday := day.AddDate(0, 0, -int(day.Weekday()))
	return sunday.AddDate(0, 0, 4)
}
