package negotiation

import "fmt"

// Classification of a proposed amount against a side's acceptable range.
type Classification string

const (
	Pleased   Classification = "pleased"
	Neutral   Classification = "neutral"
	Concerned Classification = "concerned"
)

// Ranges holds both sides' acceptable settlement bounds.
// Plaintiff: min acceptable <= ideal. Defendant: ideal <= max acceptable.
type Ranges struct {
	PlaintiffMin   float64
	PlaintiffIdeal float64
	DefendantIdeal float64
	DefendantMax   float64
}

// ConsistencyErrors reports every internally inconsistent bound; an empty
// result means the ranges are usable. Inconsistent ranges block start.
func (r Ranges) ConsistencyErrors() []string {
	var errs []string
	if r.PlaintiffMin > r.PlaintiffIdeal {
		errs = append(errs, fmt.Sprintf(
			"plaintiff minimum acceptable (%.2f) exceeds plaintiff ideal (%.2f)", r.PlaintiffMin, r.PlaintiffIdeal))
	}
	if r.DefendantIdeal > r.DefendantMax {
		errs = append(errs, fmt.Sprintf(
			"defendant ideal (%.2f) exceeds defendant maximum acceptable (%.2f)", r.DefendantIdeal, r.DefendantMax))
	}
	return errs
}

// ClassifyAmount classifies a proposed settlement amount from the given
// side's perspective:
//   - plaintiff: pleased if amount >= ideal; neutral if min <= amount < ideal;
//     concerned if amount < min.
//   - defendant: pleased if amount <= ideal; neutral if ideal < amount <= max;
//     concerned if amount > max.
func ClassifyAmount(role Role, amount float64, r Ranges) Classification {
	switch role {
	case RolePlaintiff:
		switch {
		case amount >= r.PlaintiffIdeal:
			return Pleased
		case amount >= r.PlaintiffMin:
			return Neutral
		default:
			return Concerned
		}
	default: // defendant
		switch {
		case amount <= r.DefendantIdeal:
			return Pleased
		case amount <= r.DefendantMax:
			return Neutral
		default:
			return Concerned
		}
	}
}
