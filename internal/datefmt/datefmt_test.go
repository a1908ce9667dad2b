package datefmt

import (
	"testing"
	"time"
)

func TestFormat(t *testing.T) {
	at := time.Date(2026, 10, 19, 8, 5, 0, 0, time.UTC)
	var zero time.Time

	tests := []struct {
		name string
		in   *time.Time
		want string
	}{
		{"nil", nil, NoDate},
		{"zero", &zero, Invalid},
		{"value", &at, "Oct 19, 2026 08:05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.in, time.UTC); got != tt.want {
				t.Fatalf("Format = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatMillis(t *testing.T) {
	if got := FormatMillis(nil, time.UTC); got != NoDate {
		t.Fatalf("nil = %q", got)
	}
	ms := time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC).UnixMilli()
	if got := FormatMillis(&ms, time.UTC); got != "Jan 02, 2026 03:04" {
		t.Fatalf("FormatMillis = %q", got)
	}
	huge := int64(1) << 62
	if got := FormatMillis(&huge, time.UTC); got != Invalid {
		t.Fatalf("out of range = %q, want %q", got, Invalid)
	}
}

func TestParse(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"09:15", time.Date(2026, 10, 19, 9, 15, 0, 0, time.UTC), false},
		{" 23:59 ", time.Date(2026, 10, 19, 23, 59, 0, 0, time.UTC), false},
		{"2026-12-24 18:00", time.Date(2026, 12, 24, 18, 0, 0, 0, time.UTC), false},
		{"12-24-2026 18:00", time.Date(2026, 12, 24, 18, 0, 0, 0, time.UTC), false},
		{"24:00", time.Time{}, true},
		{"9.15", time.Time{}, true},
		{"tomorrow 9am", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.in, err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseStored(t *testing.T) {
	ms := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC).UnixMilli()

	if got, ok := ParseStored(nil, time.UTC); !ok || got != nil {
		t.Errorf("nil: got %v %v", got, ok)
	}
	if got, ok := ParseStored(ms, time.UTC); !ok || got.UnixMilli() != ms {
		t.Errorf("int64: got %v %v", got, ok)
	}
	if got, ok := ParseStored([]byte("05-01-2026 10:00"), time.UTC); !ok || got.UnixMilli() != ms {
		t.Errorf("legacy: got %v %v", got, ok)
	}
	if _, ok := ParseStored("not a date", time.UTC); ok {
		t.Errorf("garbage parsed")
	}
}

func TestTimeOfDayOf(t *testing.T) {
	at := time.Date(2026, 5, 1, 22, 45, 0, 0, time.UTC)
	got := TimeOfDayOf(at, time.UTC)
	if got.String() != "22:45" {
		t.Fatalf("TimeOfDayOf = %s", got)
	}
	if _, err := NewTimeOfDay(7, 60); err == nil {
		t.Fatal("minute 60 accepted")
	}
}
