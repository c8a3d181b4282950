package report

import (
	"math"
	"strconv"
	"strings"

	"dartwatch/pkg/contracts/domain"
)

// fundsFieldFragment matches every "use of funds" sub-field name on the
// capital increase decision payload (fdpp_fclt, fdpp_op, fdpp_dtrp, ...).
const fundsFieldFragment = "fdpp"

// shareCountFields are the new-share count fields summed into the
// aggregate issued-share total.
var shareCountFields = []string{"nstk_ostk_cnt", "nstk_estk_cnt"}

// parseAmount coerces an upstream numeric string: a dash means zero,
// thousands separators are stripped, and anything unparseable is zero.
func parseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}

// AddFinanceColumns computes the derived financial fields on each
// detail row: the aggregate funds raised, the aggregate new-share
// count, and the implied per-share issue price. A zero share count or a
// non-finite quotient yields a zero price rather than an error.
func AddFinanceColumns(details []domain.DecisionDetail) {
	for i := range details {
		d := &details[i]

		var funds float64
		for key, val := range d.Fields {
			if strings.Contains(strings.ToLower(key), fundsFieldFragment) {
				funds += parseAmount(val)
			}
		}

		var shares float64
		for _, key := range shareCountFields {
			if val, ok := d.Fields[key]; ok {
				shares += parseAmount(val)
			}
		}

		var price float64
		if shares != 0 {
			q := funds / shares
			if !math.IsInf(q, 0) && !math.IsNaN(q) {
				price = math.Round(q)
			}
		}

		d.FundsTotal = funds
		d.ShareTotal = shares
		d.UnitPrice = price
	}
}
