package lp

import (
	"github.com/devskill-org/gridopt/internal/costcalc"
	"github.com/devskill-org/gridopt/internal/entity"
)

// annualizedCostPerMW folds the annualized investment and fixed O&M
// into a single EUR-per-installed-MW-year figure, the per-unit
// coefficient the objective applies to an installed-factor variable
// scaled by its nominal capacity (spec.md §4.2's "annualized capex *
// installed * num_years" objective term).
func annualizedCostPerMW(e entity.SourceEconomics, capacityMW float64) float64 {
	perKWYear := costcalc.AnnualizedInvestmentPerKW(e, capacityMW, nil) + e.FixedOMCostsPerKWEUR
	return perKWYear * 1000
}
