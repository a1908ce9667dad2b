package reminder

import (
	"testing"
	"time"

	"github.com/idilsaglam/todoreminder/internal/model"
)

func TestExpired(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	items := []model.Item{
		{ID: 1, Title: "no reminder"},
		model.Item{ID: 2, Title: "Buy milk"}.WithReminder(now.Add(-time.Hour)),
		model.Item{ID: 3, Title: "later"}.WithReminder(now.Add(time.Hour)),
		model.Item{ID: 4, Title: "long ago"}.WithReminder(now.AddDate(0, 0, -3)),
		{ID: 5, Title: "flag only", ReminderSet: true},
	}

	got := Expired(now, items)
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 4 {
		t.Fatalf("Expired = %+v, want ids 2 and 4", got)
	}
	if n := Armed(items); n != 3 {
		t.Fatalf("Armed = %d, want 3", n)
	}
}

func TestExpiredNothingDue(t *testing.T) {
	now := time.Now()
	items := []model.Item{
		{ID: 1},
		model.Item{ID: 2}.WithReminder(now.Add(time.Minute)),
	}
	if got := Expired(now, items); len(got) != 0 {
		t.Fatalf("Expired = %+v, want none", got)
	}
	if got := Expired(now, nil); len(got) != 0 {
		t.Fatalf("Expired(nil) = %+v", got)
	}
}

func TestUpcoming(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	items := []model.Item{
		model.Item{ID: 1}.WithReminder(now.Add(2 * time.Hour)),
		model.Item{ID: 2}.WithReminder(now.Add(-time.Minute)),
		{ID: 3},
		model.Item{ID: 4}.WithReminder(now),
		model.Item{ID: 5}.WithReminder(now.Add(time.Hour)),
		{ID: 6, ReminderSet: true},
	}

	got := Upcoming(now, items)
	var ids []int64
	for _, it := range got {
		ids = append(ids, it.ID)
	}
	if len(ids) != 3 || ids[0] != 4 || ids[1] != 5 || ids[2] != 1 {
		t.Fatalf("Upcoming ids = %v, want [4 5 1]", ids)
	}
	if got := Upcoming(now, nil); len(got) != 0 {
		t.Fatalf("Upcoming(nil) = %+v", got)
	}
}
