package state

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/idilsaglam/todoreminder/internal/datefmt"
	"github.com/idilsaglam/todoreminder/internal/model"
)

var noon = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestDetail(repo *memRepo, perm *togglePermission, id int64) *Detail {
	return NewDetail(repo, perm, id,
		WithClock(func() time.Time { return noon }),
		WithLocation(time.UTC))
}

func TestSaveRejectsBlankTitle(t *testing.T) {
	repo := newMemRepo(noon)
	d := newTestDetail(repo, &togglePermission{}, 0)
	d.SetTitle("   ")
	d.Save(context.Background())

	if diff := cmp.Diff(Status(Error{Message: "Title cannot be empty"}), d.Status()); diff != "" {
		t.Errorf("status (-want +got):\n%s", diff)
	}
	if repo.Writes() != 0 {
		t.Errorf("writes = %d, want 0", repo.Writes())
	}
}

func TestSaveCreatesThenUpdates(t *testing.T) {
	repo := newMemRepo(noon)
	d := newTestDetail(repo, &togglePermission{}, 0)
	ctx := context.Background()

	if !d.IsCreatingNew() {
		t.Fatal("IsCreatingNew = false for id 0")
	}
	d.SetTitle("Buy milk")
	d.SetDescription("2 liters")
	d.Save(ctx)
	if _, ok := d.Status().(Success); !ok {
		t.Fatalf("status = %#v", d.Status())
	}
	if d.IsCreatingNew() {
		t.Fatal("still creating after save")
	}
	id := d.Item().ID

	d.SetTitle("Buy oat milk")
	d.Save(ctx)
	if got := repo.stored(id); got.Title != "Buy oat milk" || got.Description != "2 liters" {
		t.Fatalf("stored = %+v", got)
	}
	if repo.Writes() != 2 {
		t.Errorf("writes = %d, want create + update", repo.Writes())
	}
}

func TestSaveStoreFailure(t *testing.T) {
	repo := newMemRepo(noon)
	repo.fail = errDisk
	d := newTestDetail(repo, &togglePermission{}, 0)
	d.SetTitle("Buy milk")
	d.Save(context.Background())

	if diff := cmp.Diff(Status(Error{Message: "Failed to save todo"}), d.Status()); diff != "" {
		t.Errorf("status (-want +got):\n%s", diff)
	}
}

func TestLoadHydratesReminder(t *testing.T) {
	due := time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)
	repo := newMemRepo(noon, model.Item{Title: "Call mom"}.WithReminder(due))
	d := newTestDetail(repo, &togglePermission{}, 1)
	d.Load(context.Background())

	if d.Title() != "Call mom" {
		t.Errorf("Title = %q", d.Title())
	}
	tod, ok := d.SelectedTime()
	if !ok || tod != (datefmt.TimeOfDay{Hour: 18, Minute: 30}) {
		t.Errorf("SelectedTime = %v, %v", tod, ok)
	}
	if got, want := d.FormattedDueDate(), "Mar 14, 2026 18:30"; got != want {
		t.Errorf("FormattedDueDate = %q, want %q", got, want)
	}
}

func TestLoadMissing(t *testing.T) {
	d := newTestDetail(newMemRepo(noon), &togglePermission{}, 42)
	d.Load(context.Background())
	if diff := cmp.Diff(Status(Error{Message: "Todo not found"}), d.Status()); diff != "" {
		t.Errorf("status (-want +got):\n%s", diff)
	}
	if got := d.FormattedDueDate(); got != datefmt.NoDate {
		t.Errorf("FormattedDueDate = %q", got)
	}
}

func TestSetReminderNeedsPermission(t *testing.T) {
	repo := newMemRepo(noon, model.Item{Title: "Buy milk"})
	perm := &togglePermission{}
	d := newTestDetail(repo, perm, 1)
	ctx := context.Background()
	d.Load(ctx)
	if err := d.SelectTime(18, 0); err != nil {
		t.Fatal(err)
	}

	d.SetReminder(ctx)
	if _, ok := d.Status().(RequiresPermission); !ok {
		t.Fatalf("status = %#v, want RequiresPermission", d.Status())
	}
	if repo.Writes() != 0 || repo.stored(1).ReminderSet {
		t.Fatal("reminder written without permission")
	}

	d.GrantPermission(ctx)
	if _, ok := d.Status().(Success); !ok {
		t.Fatalf("status after grant = %#v", d.Status())
	}
	want := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	got := repo.stored(1)
	if !got.ReminderSet || got.DueDate == nil || !got.DueDate.Equal(want) {
		t.Fatalf("stored = %+v, want armed at %s", got, want)
	}
	if perm.grants != 1 {
		t.Errorf("grants = %d", perm.grants)
	}
}

func TestSetReminderOnSelectedDay(t *testing.T) {
	repo := newMemRepo(noon, model.Item{Title: "Dentist"})
	d := newTestDetail(repo, &togglePermission{granted: true}, 1)
	ctx := context.Background()
	d.Load(ctx)
	d.SelectDueDate(time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC))
	if err := d.SelectTime(9, 15); err != nil {
		t.Fatal(err)
	}
	d.SetReminder(ctx)

	want := time.Date(2026, 3, 20, 9, 15, 0, 0, time.UTC)
	if got := repo.stored(1).DueDate; got == nil || !got.Equal(want) {
		t.Fatalf("due = %v, want %s", got, want)
	}
	if got := d.FormattedDueDate(); got != "Mar 20, 2026 09:15" {
		t.Errorf("FormattedDueDate = %q", got)
	}
}

func TestSetReminderErrors(t *testing.T) {
	ctx := context.Background()

	d := newTestDetail(newMemRepo(noon, model.Item{Title: "a"}), &togglePermission{granted: true}, 1)
	d.Load(ctx)
	d.SetReminder(ctx)
	if diff := cmp.Diff(Status(Error{Message: "No time selected"}), d.Status()); diff != "" {
		t.Errorf("no time (-want +got):\n%s", diff)
	}

	d = newTestDetail(newMemRepo(noon), &togglePermission{granted: true}, 0)
	_ = d.SelectTime(8, 0)
	d.SetReminder(ctx)
	if _, ok := d.Status().(Error); !ok {
		t.Errorf("unsaved item status = %#v", d.Status())
	}

	if err := d.SelectTime(24, 0); err == nil {
		t.Error("SelectTime(24, 0) accepted")
	}
}

func TestSaveKeepsReminder(t *testing.T) {
	due := noon.Add(time.Hour)
	repo := newMemRepo(noon, model.Item{Title: "Call mom"}.WithReminder(due))
	d := newTestDetail(repo, &togglePermission{}, 1)
	ctx := context.Background()
	d.Load(ctx)
	d.SetTitle("Call mom back")
	d.Save(ctx)

	got := repo.stored(1)
	if !got.HasReminder() || !got.DueDate.Equal(due) {
		t.Fatalf("stored = %+v, want reminder kept", got)
	}
}

func TestBeginEdit(t *testing.T) {
	repo := newMemRepo(noon, model.Item{Title: "Buy milk"})
	d := newTestDetail(repo, &togglePermission{}, 1)
	d.Load(context.Background())
	d.SetTitle("Buy bread")
	d.BeginEdit()

	s, ok := d.Status().(Editing)
	if !ok {
		t.Fatalf("status = %#v", d.Status())
	}
	if s.Item.Title != "Buy milk" || s.Draft.Title != "Buy bread" {
		t.Errorf("Editing = %+v", s)
	}
	if Describe(s) != "Editing" {
		t.Errorf("Describe = %q", Describe(s))
	}
}
