package negotiation

import "testing"

var testRanges = Ranges{
	PlaintiffMin:   150000,
	PlaintiffIdeal: 300000,
	DefendantIdeal: 100000,
	DefendantMax:   250000,
}

func TestClassifyAmount(t *testing.T) {
	tests := []struct {
		name   string
		role   Role
		amount float64
		want   Classification
	}{
		{name: "plaintiff: at ideal", role: RolePlaintiff, amount: 300000, want: Pleased},
		{name: "plaintiff: above ideal", role: RolePlaintiff, amount: 350000, want: Pleased},
		{name: "plaintiff: at min", role: RolePlaintiff, amount: 150000, want: Neutral},
		{name: "plaintiff: between min and ideal", role: RolePlaintiff, amount: 200000, want: Neutral},
		{name: "plaintiff: below min", role: RolePlaintiff, amount: 149999.99, want: Concerned},
		{name: "defendant: at ideal", role: RoleDefendant, amount: 100000, want: Pleased},
		{name: "defendant: below ideal", role: RoleDefendant, amount: 50000, want: Pleased},
		{name: "defendant: between ideal and max", role: RoleDefendant, amount: 200000, want: Neutral},
		{name: "defendant: at max", role: RoleDefendant, amount: 250000, want: Neutral},
		{name: "defendant: above max", role: RoleDefendant, amount: 250000.01, want: Concerned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyAmount(tt.role, tt.amount, testRanges); got != tt.want {
				t.Errorf("ClassifyAmount() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRanges_ConsistencyErrors(t *testing.T) {
	tests := []struct {
		name   string
		ranges Ranges
		want   int
	}{
		{name: "consistent", ranges: testRanges, want: 0},
		{name: "equal bounds", ranges: Ranges{PlaintiffMin: 100, PlaintiffIdeal: 100, DefendantIdeal: 100, DefendantMax: 100}, want: 0},
		{
			name:   "plaintiff min above ideal",
			ranges: Ranges{PlaintiffMin: 300000, PlaintiffIdeal: 150000, DefendantIdeal: 100000, DefendantMax: 250000},
			want:   1,
		},
		{
			name:   "defendant ideal above max",
			ranges: Ranges{PlaintiffMin: 150000, PlaintiffIdeal: 300000, DefendantIdeal: 250000, DefendantMax: 100000},
			want:   1,
		},
		{
			name:   "both sides inconsistent",
			ranges: Ranges{PlaintiffMin: 300000, PlaintiffIdeal: 150000, DefendantIdeal: 250000, DefendantMax: 100000},
			want:   2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ranges.ConsistencyErrors(); len(got) != tt.want {
				t.Errorf("ConsistencyErrors() = %v, want %d errors", got, tt.want)
			}
		})
	}
}

func TestRole_Opposing(t *testing.T) {
	if got := RolePlaintiff.Opposing(); got != RoleDefendant {
		t.Errorf("Opposing() = %v, want %v", got, RoleDefendant)
	}
	if got := RoleDefendant.Opposing(); got != RolePlaintiff {
		t.Errorf("Opposing() = %v, want %v", got, RolePlaintiff)
	}
}
