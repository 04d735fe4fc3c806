package ingest

import (
	"strings"
	"testing"
	"time"
)

func TestParseCSVSkipsHeader(t *testing.T) {
	in := strings.Join([]string{
		"product_code,product_name,weekday,quantity",
		"EMP-CARNE,Empanada de Carne,Monday,10",
		"EMP-CARNE,Empanada de Carne,Tuesday,12.5",
	}, "\n")

	res, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(res.Observations) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(res.Observations))
	}
	if res.Skipped != 0 {
		t.Fatalf("expected 0 skipped, got %d: %v", res.Skipped, res.SkipReasons)
	}
	if res.Observations[0].Weekday != time.Monday {
		t.Fatalf("expected Monday, got %v", res.Observations[0].Weekday)
	}
	if got := res.Observations[1].Quantity.String(); got != "12.5" {
		t.Fatalf("expected quantity 12.5, got %s", got)
	}
}

func TestParseCSVWithoutHeader(t *testing.T) {
	in := "EMP-POLLO,Empanada de Pollo,lunes,8\n"

	res, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(res.Observations) != 1 {
		t.Fatalf("expected 1 observation, got %d", len(res.Observations))
	}
	if res.Observations[0].Weekday != time.Monday {
		t.Fatalf("expected Monday for lunes, got %v", res.Observations[0].Weekday)
	}
}

func TestParseCSVSkipsMalformedRows(t *testing.T) {
	in := strings.Join([]string{
		"EMP-CARNE,Empanada de Carne,Monday,10",
		"EMP-CARNE,Empanada de Carne,Blursday,5",
		"EMP-CARNE,Empanada de Carne,Tuesday,not-a-number",
		",Anonymous,Wednesday,3",
		"EMP-CARNE,Empanada de Carne,Thursday,-2",
		"too,few",
		"EMP-QUESO,Empanada de Queso,Friday,4",
	}, "\n")

	res, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(res.Observations) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(res.Observations))
	}
	if res.Skipped != 5 {
		t.Fatalf("expected 5 skipped, got %d: %v", res.Skipped, res.SkipReasons)
	}
}

func TestParseCSVEmptyInput(t *testing.T) {
	if _, err := ParseCSV(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
}
