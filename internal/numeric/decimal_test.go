package numeric

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMinSize(t *testing.T) {
	cases := []struct {
		szDecimals int
		want       string
	}{
		{0, "1"},
		{2, "0.01"},
		{5, "0.00001"},
	}
	for _, tc := range cases {
		got := MinSize(tc.szDecimals)
		if got.String() != tc.want {
			t.Errorf("MinSize(%d) = %s, want %s", tc.szDecimals, got, tc.want)
		}
	}
}

func TestPriceDecimalsAndTick(t *testing.T) {
	if got := PriceDecimals(2); got != 4 {
		t.Fatalf("PriceDecimals(2) = %d, want 4", got)
	}
	if got := Tick(4); got.String() != "0.0001" {
		t.Fatalf("Tick(4) = %s, want 0.0001", got)
	}
	if got := Tick(PriceDecimals(5)); got.String() != "0.1" {
		t.Fatalf("Tick(PriceDecimals(5)) = %s, want 0.1", got)
	}
}

func TestRequiredMargin(t *testing.T) {
	mid := decimal.RequireFromString("60000")
	amount := decimal.RequireFromString("0.01")

	got := RequiredMargin(mid, amount, 10)
	want := decimal.RequireFromString("60.6")
	if !got.Equal(want) {
		t.Fatalf("RequiredMargin = %s, want %s", got, want)
	}
}

func TestParsePositive(t *testing.T) {
	if _, err := ParsePositive("0.5"); err != nil {
		t.Fatalf("ParsePositive(0.5) returned error: %v", err)
	}
	if _, err := ParsePositive("0"); err == nil {
		t.Fatalf("expected error for zero value")
	}
	if _, err := ParsePositive("abc"); err == nil {
		t.Fatalf("expected error for malformed value")
	}
}
