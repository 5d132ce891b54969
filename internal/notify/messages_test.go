package notify

import (
	"testing"
	"time"
)

func TestRecordBackupMessage_JSON(t *testing.T) {
	msg := NewRecordBackupMessage(42)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	got, err := RecordBackupMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}
	if got.ID != 42 {
		t.Errorf("ID = %d, want 42", got.ID)
	}
	if got.Timestamp.IsZero() {
		t.Error("Timestamp is zero, want stamped at creation")
	}
}

func TestGoalAchievedMessage_JSON(t *testing.T) {
	msg := NewGoalAchievedMessage("2024-03-13", 2100, 2000)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	got, err := GoalAchievedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}
	if got.Date != "2024-03-13" || got.Total != 2100 || got.Goal != 2000 {
		t.Errorf("message = %+v", got)
	}
}

func TestReminderMessage_JSON(t *testing.T) {
	when := time.Date(2024, 3, 13, 14, 0, 0, 0, time.UTC)
	msg := NewReminderMessage(when, 2)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	got, err := ReminderMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}
	if !got.ScheduledFor.Equal(when) {
		t.Errorf("ScheduledFor = %v, want %v", got.ScheduledFor, when)
	}
	if got.IntervalH != 2 {
		t.Errorf("IntervalH = %d, want 2", got.IntervalH)
	}
}

func TestMessageFromJSON_Invalid(t *testing.T) {
	if _, err := RecordBackupMessageFromJSON([]byte("{broken")); err == nil {
		t.Error("RecordBackupMessageFromJSON(broken) error = nil, want error")
	}
	if _, err := GoalAchievedMessageFromJSON([]byte("not json")); err == nil {
		t.Error("GoalAchievedMessageFromJSON(not json) error = nil, want error")
	}
}
