package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/apexarb/apexarb/business/arbitrage/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestFlashFee(t *testing.T) {
	tests := []struct {
		name string
		loan string
		want string
	}{
		{"5000 loan", "5000", "4.5"},
		{"10000 loan", "10000", "9"},
		{"small loan", "100", "0.09"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.FlashFee(dec(tt.loan))
			if !got.Equal(dec(tt.want)) {
				t.Errorf("FlashFee(%s) = %s, want %s", tt.loan, got, tt.want)
			}
		})
	}
}

func TestPriceImpactPct(t *testing.T) {
	tests := []struct {
		name      string
		loan, liq string
		want      string
	}{
		{"10 percent", "5000", "50000", "10"},
		{"half percent", "5000", "1000000", "0.5"},
		{"full pool", "50000", "50000", "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.PriceImpactPct(dec(tt.loan), dec(tt.liq))
			if !got.Equal(dec(tt.want)) {
				t.Errorf("PriceImpactPct(%s, %s) = %s, want %s", tt.loan, tt.liq, got, tt.want)
			}
		})
	}
}

func TestPriceImpactMonotonic(t *testing.T) {
	liq := dec("100000")
	small := domain.PriceImpactPct(dec("1000"), liq)
	large := domain.PriceImpactPct(dec("5000"), liq)
	if !large.GreaterThan(small) {
		t.Errorf("impact not increasing in loan size: %s vs %s", small, large)
	}

	loan := dec("5000")
	shallow := domain.PriceImpactPct(loan, dec("50000"))
	deep := domain.PriceImpactPct(loan, dec("500000"))
	if !deep.LessThan(shallow) {
		t.Errorf("impact not decreasing in liquidity: %s vs %s", shallow, deep)
	}
}

func TestSlippageTolerancePct(t *testing.T) {
	tests := []struct {
		name   string
		impact string
		want   string
	}{
		{"floor applies to tiny impact", "0.01", "0.1"},
		{"floor applies at exactly half the floor", "0.05", "0.1"},
		{"twice the impact", "0.5", "1"},
		{"large impact", "10", "20"},
		{"rounding to two decimals", "0.123", "0.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.SlippageTolerancePct(dec(tt.impact))
			if !got.Equal(dec(tt.want)) {
				t.Errorf("SlippageTolerancePct(%s) = %s, want %s", tt.impact, got, tt.want)
			}
		})
	}
}

func TestAdmissible(t *testing.T) {
	tests := []struct {
		name           string
		spread, tolPct string
		want           bool
	}{
		{"clearly above threshold", "2", "1", true},
		{"exactly at threshold is rejected", "1.09", "1", false},
		{"just above threshold", "1.091", "1", true},
		{"below threshold", "0.5", "1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.Admissible(dec(tt.spread), dec(tt.tolPct))
			if got != tt.want {
				t.Errorf("Admissible(%s, %s) = %v, want %v", tt.spread, tt.tolPct, got, tt.want)
			}
		})
	}
}

// Worked example: a 5000 loan against a 50000 pool moves the price 10%,
// demanding 20% of tolerance; a 1% spread cannot clear it.
func TestShallowPoolRejected(t *testing.T) {
	loan, liq, spread := dec("5000"), dec("50000"), dec("1")

	impact := domain.PriceImpactPct(loan, liq)
	if !impact.Equal(dec("10")) {
		t.Fatalf("PriceImpactPct = %s, want 10", impact)
	}

	tol := domain.SlippageTolerancePct(impact)
	if !tol.Equal(dec("20")) {
		t.Fatalf("SlippageTolerancePct = %s, want 20", tol)
	}

	if domain.Admissible(spread, tol) {
		t.Error("1% spread admitted against 20% tolerance")
	}
}

// Worked example: with a deep pool the tolerance lands at exactly 1%, and
// a 1% spread sits on the boundary; the strict inequality must reject it.
func TestBoundarySpreadRejected(t *testing.T) {
	loan, liq, spread := dec("5000"), dec("1000000"), dec("1")

	impact := domain.PriceImpactPct(loan, liq)
	if !impact.Equal(dec("0.5")) {
		t.Fatalf("PriceImpactPct = %s, want 0.5", impact)
	}

	tol := domain.SlippageTolerancePct(impact)
	if !tol.Equal(dec("1")) {
		t.Fatalf("SlippageTolerancePct = %s, want 1", tol)
	}

	if domain.Admissible(spread, tol) {
		t.Error("boundary spread admitted; admission must be strictly greater")
	}
	if !domain.Admissible(dec("1.1"), tol) {
		t.Error("1.1% spread rejected against 1% tolerance")
	}
}

func TestNetProfit(t *testing.T) {
	tests := []struct {
		name              string
		loan, spread, gas string
		want              string
	}{
		// 5000*2% = 100 gross, minus 4.5 fee and 10 gas.
		{"profitable", "5000", "2", "10", "85.5"},
		// 5000*0.1% = 5 gross, fee 4.5, gas 10 → underwater.
		{"unprofitable after costs", "5000", "0.1", "10", "-9.5"},
		{"zero gas", "1000", "1", "0", "9.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.NetProfit(dec(tt.loan), dec(tt.spread), dec(tt.gas))
			if !got.Equal(dec(tt.want)) {
				t.Errorf("NetProfit(%s, %s, %s) = %s, want %s", tt.loan, tt.spread, tt.gas, got, tt.want)
			}
		})
	}
}
