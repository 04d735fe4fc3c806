package demand

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCollectSumsDuplicates(t *testing.T) {
	set := Collect([]Observation{
		{ProductCode: "P1", Weekday: time.Monday, Quantity: dec("3")},
		{ProductCode: "P1", Weekday: time.Monday, Quantity: dec("4")},
		{ProductCode: "P1", Weekday: time.Tuesday, Quantity: dec("2")},
		{ProductCode: "", Weekday: time.Monday, Quantity: dec("9")},
		{ProductCode: "  ", Weekday: time.Monday, Quantity: dec("9")},
	})

	if len(set) != 1 {
		t.Fatalf("expected 1 product, got %d", len(set))
	}
	if got := set["P1"][time.Monday]; !got.Equal(dec("7")) {
		t.Errorf("Monday = %s, want 7", got)
	}
	if got := set["P1"].Total(); !got.Equal(dec("9")) {
		t.Errorf("weekly total = %s, want 9", got)
	}
}

func TestProjectMultipliesByHorizon(t *testing.T) {
	set := Set{
		"P1": Week{
			time.Monday:    dec("10"),
			time.Tuesday:   dec("10"),
			time.Wednesday: dec("10"),
			time.Thursday:  dec("10"),
			time.Friday:    dec("10"),
			time.Saturday:  dec("10"),
			time.Sunday:    dec("10"),
		},
	}

	projections := Project(set, 4)
	p, ok := projections["P1"]
	if !ok {
		t.Fatal("P1 missing from projections")
	}
	if !p.WeeklyUnits.Equal(dec("70")) {
		t.Errorf("weekly units = %s, want 70", p.WeeklyUnits)
	}
	if !p.Units.Equal(dec("280")) {
		t.Errorf("projected units = %s, want 280", p.Units)
	}
}

func TestProjectDropsZeroDemand(t *testing.T) {
	set := Set{
		"P1": Week{time.Monday: dec("0")},
		"P2": Week{},
	}
	if got := Project(set, 4); len(got) != 0 {
		t.Errorf("expected empty projections, got %d", len(got))
	}
}

func TestProjectDefaultsHorizon(t *testing.T) {
	set := Set{"P1": Week{time.Monday: dec("5")}}
	p := Project(set, 0)["P1"]
	if !p.Units.Equal(dec("20")) {
		t.Errorf("projected units = %s, want 20 (5 × default 4 weeks)", p.Units)
	}
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in   string
		want time.Weekday
		ok   bool
	}{
		{"Monday", time.Monday, true},
		{"  lunes ", time.Monday, true},
		{"MIÉRCOLES", time.Wednesday, true},
		{"sab", time.Saturday, true},
		{"sáb", time.Saturday, true},
		{"Blursday", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseWeekday(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseWeekday(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ParseWeekday(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
