// Package eligibility checks applicant profiles against the
// eligibility criteria of a program.
//
// Validation is pure: the same subject and criteria always produce
// the same result, and the failure reasons are reported in a fixed
// order (age, region, income) so that results are deterministic.
package eligibility

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Criteria are the eligibility rules of a program. Every rule is
// optional, a rule that is not set always passes.
type Criteria struct {
	AgeRange *AgeRange        `json:"ageRange,omitempty"`       // Allowed age range of the applicant
	Regions  []string         `json:"regions,omitempty"`        // Allowed top-level administrative regions
	Income   *IncomeCriterion `json:"incomeCriteria,omitempty"` // Maximum allowed income
}

type AgeRange struct {
	Min int `json:"min" example:"18"`
	Max int `json:"max" example:"65"`
}

type IncomeCriterion struct {
	Max decimal.Decimal `json:"max" example:"3000000"`
}

// Subject is the part of an applicant profile that eligibility
// rules inspect.
type Subject struct {
	BirthDate   time.Time
	Address     string
	IncomeLevel *decimal.Decimal // nil when the income of the applicant is unknown
}

// Failure reasons, one per rule.
const (
	ReasonAge    = "the applicant does not meet the age criteria"
	ReasonRegion = "the applicant does not live in an eligible region"
	ReasonIncome = "the applicant exceeds the income criteria"
)

// Result is the outcome of a validation.
type Result struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// Validate checks the subject against the criteria at the current time.
func Validate(subject Subject, criteria Criteria) Result {
	return ValidateAt(subject, criteria, time.Now())
}

// ValidateAt checks the subject against the criteria. All rules are
// evaluated, a failing rule never shadows a later one. The reference
// time only matters for the age rule.
func ValidateAt(subject Subject, criteria Criteria, now time.Time) Result {
	var errors []string

	if criteria.AgeRange != nil {
		age := Age(subject.BirthDate, now)
		if age < criteria.AgeRange.Min || age > criteria.AgeRange.Max {
			errors = append(errors, ReasonAge)
		}
	}

	if len(criteria.Regions) > 0 {
		if !regionAllowed(subject.Address, criteria.Regions) {
			errors = append(errors, ReasonRegion)
		}
	}

	// Applicants without a known income pass the income rule. This
	// mirrors how programs are administered: income data is only
	// collected where a program requires verification.
	if criteria.Income != nil && subject.IncomeLevel != nil {
		if subject.IncomeLevel.GreaterThan(criteria.Income.Max) {
			errors = append(errors, ReasonIncome)
		}
	}

	return Result{
		IsValid: len(errors) == 0,
		Errors:  errors,
	}
}

// Age returns the full years between the birth date and now.
// A birthday that has not occurred yet in the current year does
// not count.
func Age(birthDate time.Time, now time.Time) int {
	age := now.Year() - birthDate.Year()

	if now.Month() < birthDate.Month() ||
		(now.Month() == birthDate.Month() && now.Day() < birthDate.Day()) {
		age--
	}

	return age
}

// regionAllowed matches the first whitespace-delimited token of the
// address, which holds the top-level administrative region.
func regionAllowed(address string, regions []string) bool {
	fields := strings.Fields(address)
	if len(fields) == 0 {
		return false
	}

	for _, region := range regions {
		if fields[0] == region {
			return true
		}
	}

	return false
}
