package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDue(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		dueAt time.Time
		want  DueStatus
	}{
		{"ten days left", now.AddDate(0, 0, 10), DueOnTime},
		{"just above window", now.AddDate(0, 0, 4), DueOnTime},
		{"window boundary", now.AddDate(0, 0, 3), DueSoon},
		{"two days left", now.AddDate(0, 0, 2), DueSoon},
		{"one day left", now.AddDate(0, 0, 1), DueSoon},
		{"hours left counts as zero days", now.Add(6 * time.Hour), DueOverdue},
		{"due right now", now, DueOverdue},
		{"one day late", now.AddDate(0, 0, -1), DueOverdue},
		{"weeks late", now.AddDate(0, 0, -20), DueOverdue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyDue(tt.dueAt, now, DefaultDueSoonDays))
		})
	}
}

func TestDaysUntilDueTruncates(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, 14, DaysUntilDue(now.AddDate(0, 0, 14), now))
	assert.Equal(t, 1, DaysUntilDue(now.Add(47*time.Hour), now))
	assert.Equal(t, 0, DaysUntilDue(now.Add(23*time.Hour), now))
	assert.Equal(t, -2, DaysUntilDue(now.Add(-49*time.Hour), now))
}

func TestResourceTypeIsValid(t *testing.T) {
	assert.True(t, ResourceType("book").IsValid())
	assert.True(t, ResourceType("journal").IsValid())
	assert.True(t, ResourceType("audio").IsValid())
	assert.False(t, ResourceType("vinyl").IsValid())
	assert.False(t, ResourceType("").IsValid())
	assert.False(t, ResourceType("Book").IsValid())
}
