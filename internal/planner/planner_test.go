package planner

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dgcastano/provision/internal/catalog"
	"github.com/dgcastano/provision/internal/demand"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func fullWeek(daily string) demand.Week {
	w := make(demand.Week)
	for d := time.Sunday; d <= time.Saturday; d++ {
		w[d] = dec(daily)
	}
	return w
}

func TestComputeWithPresentation(t *testing.T) {
	// P1 sells 10 units every day (70/week, 280 over 4 weeks). Each unit
	// needs 0.2 kg of M1, shrink 1.1: raw 56 kg, adjusted 61.6 kg. A 25 kg
	// bag at $50 means ceil(2.464) = 3 bags for $150.
	cat := catalog.NewMemoryAccessor()
	m1 := cat.AddMaterial(catalog.Material{
		Name: "Flour", BaseUnit: "kg", Category: "Dry goods",
		ShrinkFactor: dec("1.1"), UnitCost: dec("3"),
	})
	cat.AddPresentation(catalog.Presentation{
		ID: 1, MaterialID: m1.ID, Name: "Bag of 25kg", Content: dec("25"), Price: dec("50"),
	})
	cat.AddProduct(catalog.Product{Code: "P1", Name: "Empanada"})
	cat.AddRecipeLine(catalog.RecipeLine{ProductCode: "P1", MaterialID: m1.ID, QtyPerUnit: dec("0.2")})
	cat.SetHistory(demand.Set{"P1": fullWeek("10")})

	engine := New(cat, 4)
	reports, err := engine.ComputeRequirements(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("ComputeRequirements: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}

	r := reports[0]
	if r.Err != nil {
		t.Fatalf("unexpected line error: %v", r.Err)
	}
	if !r.TotalQty.Equal(dec("61.6")) {
		t.Errorf("adjusted total = %s, want 61.6", r.TotalQty)
	}
	if !r.WeeklyQty.Equal(dec("15.4")) {
		t.Errorf("weekly qty = %s, want 15.4", r.WeeklyQty)
	}
	if r.PurchaseQty != 3 {
		t.Errorf("purchase qty = %d, want 3", r.PurchaseQty)
	}
	if r.PurchaseUnit != "Bag of 25kg" {
		t.Errorf("purchase unit = %q", r.PurchaseUnit)
	}
	if !r.Cost.Equal(dec("150")) {
		t.Errorf("cost = %s, want 150", r.Cost)
	}
	if r.NoPackaging {
		t.Error("NoPackaging set on a line with a presentation")
	}

	tr := r.Trace
	if tr == nil {
		t.Fatal("missing trace")
	}
	if !tr.RawTotal.Equal(dec("56")) {
		t.Errorf("trace raw total = %s, want 56", tr.RawTotal)
	}
	if !tr.ExactPackages.Equal(dec("2.464")) {
		t.Errorf("trace exact packages = %s, want 2.464", tr.ExactPackages)
	}
	if len(tr.Contributions) != 1 || !tr.Contributions[0].ProjectedUnits.Equal(dec("280")) {
		t.Errorf("trace contributions = %+v", tr.Contributions)
	}
}

func TestComputeFallbackWithoutPresentation(t *testing.T) {
	// M2 has no presentation: the adjusted requirement of 13.4 units rounds
	// up to 14 base units at the $2 fallback price, and the line is flagged.
	cat := catalog.NewMemoryAccessor()
	m2 := cat.AddMaterial(catalog.Material{
		Name: "Eggs", BaseUnit: "unit", ShrinkFactor: dec("1"), UnitCost: dec("2"),
	})
	cat.AddProduct(catalog.Product{Code: "P1", Name: "Tortilla"})
	cat.AddRecipeLine(catalog.RecipeLine{ProductCode: "P1", MaterialID: m2.ID, QtyPerUnit: dec("1")})
	cat.SetHistory(demand.Set{"P1": demand.Week{time.Monday: dec("3.35")}})

	engine := New(cat, 4)
	reports, err := engine.ComputeRequirements(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("ComputeRequirements: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}

	r := reports[0]
	if !r.NoPackaging {
		t.Error("expected NoPackaging flag")
	}
	if r.PurchaseQty != 14 {
		t.Errorf("purchase qty = %d, want 14", r.PurchaseQty)
	}
	if r.PurchaseUnit != "unit" {
		t.Errorf("purchase unit = %q, want base unit", r.PurchaseUnit)
	}
	if !r.Cost.Equal(dec("28")) {
		t.Errorf("cost = %s, want 28", r.Cost)
	}
	if r.Trace == nil || !r.Trace.NoPackaging {
		t.Error("trace should carry the no-packaging marker")
	}
}

func TestComputeInvalidPackagingFailsLine(t *testing.T) {
	cat := catalog.NewMemoryAccessor()
	bad := cat.AddMaterial(catalog.Material{
		Name: "Oil", BaseUnit: "l", ShrinkFactor: dec("1"), UnitCost: dec("5"),
	})
	good := cat.AddMaterial(catalog.Material{
		Name: "Salt", BaseUnit: "kg", ShrinkFactor: dec("1"), UnitCost: dec("1"),
	})
	cat.AddPresentation(catalog.Presentation{
		ID: 1, MaterialID: bad.ID, Name: "Broken drum", Content: dec("0"), Price: dec("90"),
	})
	cat.AddProduct(catalog.Product{Code: "P1", Name: "Fries"})
	cat.AddRecipeLine(catalog.RecipeLine{ProductCode: "P1", MaterialID: bad.ID, QtyPerUnit: dec("0.1")})
	cat.AddRecipeLine(catalog.RecipeLine{ProductCode: "P1", MaterialID: good.ID, QtyPerUnit: dec("0.01")})
	cat.SetHistory(demand.Set{"P1": demand.Week{time.Friday: dec("20")}})

	engine := New(cat, 4)
	reports, err := engine.ComputeRequirements(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("ComputeRequirements: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}

	var failed, ok *MaterialReport
	for i := range reports {
		if reports[i].Material == "Oil" {
			failed = &reports[i]
		} else {
			ok = &reports[i]
		}
	}
	if failed == nil || failed.Err == nil {
		t.Fatal("expected the invalid-packaging line to fail")
	}
	var pkgErr *InvalidPackagingError
	if !errors.As(failed.Err, &pkgErr) {
		t.Fatalf("err = %v, want InvalidPackagingError", failed.Err)
	}
	if pkgErr.Presentation != "Broken drum" {
		t.Errorf("error presentation = %q", pkgErr.Presentation)
	}
	if failed.Trace == nil || !failed.Trace.Failed() {
		t.Error("failed line should carry a failure trace")
	}
	if !failed.Cost.IsZero() {
		t.Errorf("failed line cost = %s, want 0", failed.Cost)
	}

	// The other material still computes.
	if ok == nil || ok.Err != nil {
		t.Fatal("healthy line should survive a sibling failure")
	}
	if ok.PurchaseQty != 1 {
		t.Errorf("healthy purchase qty = %d, want 1", ok.PurchaseQty)
	}
}

func TestComputeZeroDemandProductAbsent(t *testing.T) {
	cat := catalog.NewMemoryAccessor()
	m := cat.AddMaterial(catalog.Material{
		Name: "Sugar", BaseUnit: "kg", ShrinkFactor: dec("1"), UnitCost: dec("2"),
	})
	cat.AddProduct(catalog.Product{Code: "P1", Name: "Cake"})
	cat.AddRecipeLine(catalog.RecipeLine{ProductCode: "P1", MaterialID: m.ID, QtyPerUnit: dec("0.5")})
	cat.SetHistory(demand.Set{"P1": demand.Week{time.Monday: dec("0")}})

	engine := New(cat, 4)
	reports, err := engine.ComputeRequirements(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("ComputeRequirements: %v", err)
	}
	if len(reports) != 0 {
		t.Fatalf("expected no reports for zero demand, got %d", len(reports))
	}
}

func TestComputeIdempotent(t *testing.T) {
	cat := catalog.NewMemoryAccessor()
	m1 := cat.AddMaterial(catalog.Material{
		Name: "Flour", BaseUnit: "kg", ShrinkFactor: dec("1.05"), UnitCost: dec("3"),
	})
	m2 := cat.AddMaterial(catalog.Material{
		Name: "Cheese", BaseUnit: "kg", ShrinkFactor: dec("1.2"), UnitCost: dec("8"),
	})
	cat.AddPresentation(catalog.Presentation{ID: 1, MaterialID: m1.ID, Name: "Bag 25kg", Content: dec("25"), Price: dec("50")})
	cat.AddPresentation(catalog.Presentation{ID: 2, MaterialID: m2.ID, Name: "Wheel 4kg", Content: dec("4"), Price: dec("36")})
	cat.AddProduct(catalog.Product{Code: "A1", Name: "Pizza"})
	cat.AddProduct(catalog.Product{Code: "B2", Name: "Calzone"})
	cat.AddRecipeLine(catalog.RecipeLine{ProductCode: "A1", MaterialID: m1.ID, QtyPerUnit: dec("0.25")})
	cat.AddRecipeLine(catalog.RecipeLine{ProductCode: "A1", MaterialID: m2.ID, QtyPerUnit: dec("0.15")})
	cat.AddRecipeLine(catalog.RecipeLine{ProductCode: "B2", MaterialID: m1.ID, QtyPerUnit: dec("0.3")})
	cat.SetHistory(demand.Set{
		"A1": demand.Week{time.Monday: dec("7"), time.Saturday: dec("13")},
		"B2": fullWeek("2.5"),
	})

	engine := New(cat, 4)
	first, err := engine.ComputeRequirements(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := engine.ComputeRequirements(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different reports")
	}
}

func TestComputeNeverUnderBuys(t *testing.T) {
	contents := []string{"1", "3", "7", "25", "0.5"}
	demands := []string{"0.1", "1", "13.4", "61.6", "100.01"}

	for _, content := range contents {
		for _, want := range demands {
			cat := catalog.NewMemoryAccessor()
			m := cat.AddMaterial(catalog.Material{
				Name: "M", BaseUnit: "kg", ShrinkFactor: dec("1"), UnitCost: dec("1"),
			})
			cat.AddPresentation(catalog.Presentation{
				ID: 1, MaterialID: m.ID, Name: "Pack", Content: dec(content), Price: dec("10"),
			})
			cat.AddProduct(catalog.Product{Code: "P", Name: "P"})
			cat.AddRecipeLine(catalog.RecipeLine{ProductCode: "P", MaterialID: m.ID, QtyPerUnit: dec("1")})
			weekly := dec(want).Div(dec("4"))
			cat.SetHistory(demand.Set{"P": demand.Week{time.Monday: weekly}})

			engine := New(cat, 4)
			reports, err := engine.ComputeRequirements(context.Background(), "", nil)
			if err != nil {
				t.Fatalf("content %s demand %s: %v", content, want, err)
			}
			if len(reports) != 1 {
				t.Fatalf("content %s demand %s: %d reports", content, want, len(reports))
			}
			r := reports[0]
			bought := decimal.NewFromInt(r.PurchaseQty).Mul(dec(content))
			if bought.LessThan(r.TotalQty) {
				t.Errorf("content %s demand %s: bought %s < required %s",
					content, want, bought, r.TotalQty)
			}
		}
	}
}

func TestComputeCategoryFilter(t *testing.T) {
	cat := catalog.NewMemoryAccessor()
	dry := cat.AddMaterial(catalog.Material{
		Name: "Flour", BaseUnit: "kg", Category: "Dry goods", ShrinkFactor: dec("1"), UnitCost: dec("3"),
	})
	cold := cat.AddMaterial(catalog.Material{
		Name: "Milk", BaseUnit: "l", Category: "Dairy", ShrinkFactor: dec("1"), UnitCost: dec("1.5"),
	})
	cat.AddProduct(catalog.Product{Code: "P1", Name: "Bread"})
	cat.AddRecipeLine(catalog.RecipeLine{ProductCode: "P1", MaterialID: dry.ID, QtyPerUnit: dec("0.4")})
	cat.AddRecipeLine(catalog.RecipeLine{ProductCode: "P1", MaterialID: cold.ID, QtyPerUnit: dec("0.2")})
	cat.SetHistory(demand.Set{"P1": fullWeek("5")})

	engine := New(cat, 4)
	reports, err := engine.ComputeRequirements(context.Background(), "Dairy", nil)
	if err != nil {
		t.Fatalf("ComputeRequirements: %v", err)
	}
	if len(reports) != 1 || reports[0].Material != "Milk" {
		t.Fatalf("expected only Milk, got %+v", reports)
	}
}

func TestComputeOverrideSkipsHistory(t *testing.T) {
	cat := catalog.NewMemoryAccessor()
	m := cat.AddMaterial(catalog.Material{
		Name: "Rice", BaseUnit: "kg", ShrinkFactor: dec("1"), UnitCost: dec("2"),
	})
	cat.AddProduct(catalog.Product{Code: "P1", Name: "Bowl"})
	cat.AddRecipeLine(catalog.RecipeLine{ProductCode: "P1", MaterialID: m.ID, QtyPerUnit: dec("0.1")})
	cat.SetHistory(demand.Set{"P1": fullWeek("100")})

	override := demand.Set{"P1": demand.Week{time.Monday: dec("10")}}
	engine := New(cat, 4)
	reports, err := engine.ComputeRequirements(context.Background(), "", override)
	if err != nil {
		t.Fatalf("ComputeRequirements: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}
	// 10/week × 4 × 0.1 = 4 kg, not the historical 280.
	if !reports[0].TotalQty.Equal(dec("4")) {
		t.Errorf("total qty = %s, want 4 (override, not history)", reports[0].TotalQty)
	}
}
