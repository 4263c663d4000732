package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaskStatus(t *testing.T) {
	st, err := ParseTaskStatus(" in progress ")
	require.NoError(t, err)
	assert.Equal(t, TaskInProgress, st)

	_, err = ParseTaskStatus("In Progres")
	assert.Error(t, err)
}

func TestEntryStatusJSON(t *testing.T) {
	var req SubmissionRequest
	require.NoError(t, json.Unmarshal([]byte(`{"user_email":"a@x.com","status":"Draft"}`), &req))
	assert.Equal(t, EntryDraft, req.Status)

	err := json.Unmarshal([]byte(`{"user_email":"a@x.com","status":"pending"}`), &req)
	assert.Error(t, err)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("ADMIN")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("owner")
	assert.Error(t, err)
}

func TestDateJSON(t *testing.T) {
	var req SubmissionRequest
	require.NoError(t, json.Unmarshal([]byte(`{"week_date":"2024-06-20"}`), &req))
	assert.Equal(t, time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC), req.WeekDate.Time)
	assert.Equal(t, time.Thursday, req.WeekDate.Weekday())

	out, err := json.Marshal(struct {
		D Date `json:"d"`
		Z Date `json:"z"`
	}{D: req.WeekDate})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-06-20","z":null}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"week_date":"20/06/2024"}`), &req))
}

func TestNewDateTruncates(t *testing.T) {
	d := NewDate(time.Date(2024, 6, 18, 17, 45, 0, 0, time.UTC))
	assert.Equal(t, "2024-06-18", d.String())
	assert.Equal(t, 0, d.Hour())
}

func TestDayHours(t *testing.T) {
	d := DayHours{Sun: 1, Mon: 2, Tue: 3, Wed: 4, Thu: 5}
	assert.Equal(t, 15.0, d.Total())

	d.Add(DayHours{Sun: 1, Thu: 0.5})
	assert.Equal(t, DayHours{Sun: 2, Mon: 2, Tue: 3, Wed: 4, Thu: 5.5}, d)
}

func TestDayHoursAddOn(t *testing.T) {
	var d DayHours
	assert.True(t, d.AddOn(time.Monday, 3))
	assert.True(t, d.AddOn(time.Thursday, 12))
	assert.True(t, d.AddOn(time.Monday, 1.5))
	assert.False(t, d.AddOn(time.Friday, 8))
	assert.False(t, d.AddOn(time.Saturday, 8))
	assert.Equal(t, DayHours{Mon: 4.5, Thu: 12}, d)
}

func TestTaskLineFlattensDays(t *testing.T) {
	var line TaskLine
	require.NoError(t, json.Unmarshal([]byte(`{"description":"Design","status":"Done","sun":2,"thu":3}`), &line))
	assert.Equal(t, 2.0, line.Sun)
	assert.Equal(t, 3.0, line.Thu)
	assert.Equal(t, 5.0, line.Total())
}
