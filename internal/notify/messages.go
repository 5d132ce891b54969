package notify

import (
	"encoding/json"
	"time"
)

// RecordBackupMessage asks the worker to back up one intake record to the
// spreadsheet. Only the id travels; the worker reads the full record from the
// database so the message never goes stale.
type RecordBackupMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordBackupMessage(id int64) *RecordBackupMessage {
	return &RecordBackupMessage{ID: id, Timestamp: time.Now()}
}

func (m *RecordBackupMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordBackupMessageFromJSON(data []byte) (*RecordBackupMessage, error) {
	var msg RecordBackupMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// GoalAchievedMessage announces that the day's intake crossed the daily goal.
// Emitted at most once per day, on the record that crosses the line.
type GoalAchievedMessage struct {
	Date      string    `json:"date"`
	Total     int64     `json:"total_ml"`
	Goal      int64     `json:"goal_ml"`
	Timestamp time.Time `json:"timestamp"`
}

func NewGoalAchievedMessage(date string, total, goal int64) *GoalAchievedMessage {
	return &GoalAchievedMessage{Date: date, Total: total, Goal: goal, Timestamp: time.Now()}
}

func (m *GoalAchievedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func GoalAchievedMessageFromJSON(data []byte) (*GoalAchievedMessage, error) {
	var msg GoalAchievedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ReminderMessage tells the notification edge to nudge the user to drink.
type ReminderMessage struct {
	ScheduledFor time.Time `json:"scheduled_for"`
	IntervalH    int       `json:"interval_hours"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewReminderMessage(scheduledFor time.Time, intervalHours int) *ReminderMessage {
	return &ReminderMessage{ScheduledFor: scheduledFor, IntervalH: intervalHours, Timestamp: time.Now()}
}

func (m *ReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReminderMessageFromJSON(data []byte) (*ReminderMessage, error) {
	var msg ReminderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
