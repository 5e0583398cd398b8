package calendar

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseAndString(t *testing.T) {
	d, err := Parse("2026-01-06")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d != (Date{Year: 2026, Month: time.January, Day: 6}) {
		t.Errorf("parsed = %+v", d)
	}
	if d.String() != "2026-01-06" {
		t.Errorf("String() = %q", d.String())
	}
	if _, err := Parse("06/01/2026"); err == nil {
		t.Error("expected error for non-ISO input")
	}
}

func TestAddDaysAcrossBoundaries(t *testing.T) {
	tests := []struct {
		from string
		n    int
		want string
	}{
		{"2026-01-01", 7, "2026-01-08"},
		{"2026-02-28", 1, "2026-03-01"},
		{"2028-02-28", 1, "2028-02-29"},
		{"2026-12-31", 1, "2027-01-01"},
		{"2026-03-29", 0, "2026-03-29"},
		{"2026-03-01", -1, "2026-02-28"},
	}
	for _, tt := range tests {
		got := MustParse(tt.from).AddDays(tt.n).String()
		if got != tt.want {
			t.Errorf("%s + %d = %s, want %s", tt.from, tt.n, got, tt.want)
		}
	}
}

func TestDaysSinceIgnoresDST(t *testing.T) {
	// Europe/Rome switches to summer time on 2026-03-29.
	a := MustParse("2026-03-28")
	b := MustParse("2026-03-30")
	if got := b.DaysSince(a); got != 2 {
		t.Errorf("DaysSince = %d, want 2", got)
	}
	if got := a.DaysSince(b); got != -2 {
		t.Errorf("DaysSince reversed = %d, want -2", got)
	}
}

func TestMonthsSince(t *testing.T) {
	if got := MustParse("2027-02-15").MonthsSince(MustParse("2026-11-30")); got != 3 {
		t.Errorf("MonthsSince = %d, want 3", got)
	}
}

func TestCompare(t *testing.T) {
	a, b := MustParse("2026-01-09"), MustParse("2026-01-10")
	if !a.Before(b) || b.Before(a) || !b.After(a) {
		t.Error("ordering broken")
	}
	if a.Compare(a) != 0 {
		t.Error("date should equal itself")
	}
}

func TestFromTimeKeepsLocalDay(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2026, 5, 1, 0, 30, 0, 0, loc) // still April 30 in UTC
	if got := FromTime(ts).String(); got != "2026-05-01" {
		t.Errorf("FromTime = %s, want 2026-05-01", got)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	type payload struct {
		Date Date `json:"date"`
	}
	b, err := json.Marshal(payload{Date: MustParse("2026-03-01")})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"date":"2026-03-01"}` {
		t.Errorf("json = %s", b)
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"date":"2026-03-01T22:00:00Z"}`), &p); err != nil {
		t.Fatalf("unmarshal timestamp: %v", err)
	}
	if p.Date.String() != "2026-03-01" {
		t.Errorf("timestamp date = %s", p.Date)
	}
	if err := json.Unmarshal([]byte(`{"date":null}`), &p); err != nil || !p.Date.IsZero() {
		t.Errorf("null should decode to zero date, got %v (%v)", p.Date, err)
	}
}

func TestScan(t *testing.T) {
	var d Date
	if err := d.Scan("2026-04-02"); err != nil || d.String() != "2026-04-02" {
		t.Errorf("scan string: %v %v", d, err)
	}
	if err := d.Scan(time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC)); err != nil || d.String() != "2026-04-03" {
		t.Errorf("scan time: %v %v", d, err)
	}
	if err := d.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
}
