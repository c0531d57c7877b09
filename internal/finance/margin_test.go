package finance

import (
	"math"
	"testing"
)

func TestComputeMargin(t *testing.T) {
	got := ComputeMargin(20, 150, 1000)
	if got.Revenue != 3000 {
		t.Fatalf("revenue = %v, want 3000", got.Revenue)
	}
	if got.Margin != 2000 {
		t.Fatalf("margin = %v, want 2000", got.Margin)
	}
	if math.Abs(got.MarginPercent-66.666666) > 0.001 {
		t.Fatalf("margin percent = %v, want ~66.7", got.MarginPercent)
	}
}

func TestComputeMarginZeroRevenueGuard(t *testing.T) {
	got := ComputeMargin(0, 150, 500)
	if got.MarginPercent != 0 {
		t.Fatalf("zero revenue must report exactly zero margin percent, got %v", got.MarginPercent)
	}
	if math.IsNaN(got.MarginPercent) {
		t.Fatal("margin percent must never be NaN")
	}
	if got.Margin != -500 {
		t.Fatalf("margin = %v, want -500", got.Margin)
	}
}

func TestComputeMarginNegative(t *testing.T) {
	got := ComputeMargin(10, 100, 1500)
	if got.Margin != -500 {
		t.Fatalf("margin = %v, want -500", got.Margin)
	}
	if got.MarginPercent != -50 {
		t.Fatalf("margin percent = %v, want -50", got.MarginPercent)
	}
}
