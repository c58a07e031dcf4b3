// Package allocation implements the budget-constrained selection of
// applicants for a voucher program.
//
// Simulation is a pure computation over already-materialized
// applications: it filters by eligibility, ranks by the configured
// rule and greedily admits applicants at a fixed voucher amount until
// the program budget is exhausted. It never writes anything, running
// out of budget is a normal stopping condition and not an error.
package allocation

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voucherhub/backend/internal/eligibility"
	"github.com/voucherhub/backend/internal/models"
)

// Simulate runs the allocation for the program over the given
// applications. The applicants map must contain the profile for every
// application, applications without a profile never pass eligibility.
//
// The result ordering is deterministic: sorting by score is stable,
// applications with equal scores keep their input order.
func Simulate(applications []models.Application, applicants map[uuid.UUID]models.Applicant, program models.Program, rules models.AllocationRules) models.AllocationResult {
	return SimulateAt(applications, applicants, program, rules, time.Now())
}

// SimulateAt is Simulate with an explicit reference time for the
// age-based eligibility rules.
func SimulateAt(applications []models.Application, applicants map[uuid.UUID]models.Applicant, program models.Program, rules models.AllocationRules, now time.Time) models.AllocationResult {
	eligible := filterEligible(applications, applicants, program.Eligibility, now)

	if rules.SortBy == models.AllocationSortByScore {
		sort.SliceStable(eligible, func(i, j int) bool {
			return score(eligible[i]) > score(eligible[j])
		})
	}

	allocated := decimal.Zero
	selections := []models.AllocationSelection{}

	// A non-positive amount would pass the budget check for every
	// applicant and drive the allocated budget negative. Nobody is
	// selected, callers validate the rules before running the engine.
	if !rules.VoucherAmount.IsPositive() {
		return models.AllocationResult{
			TotalApplicants:    len(applications),
			EligibleApplicants: len(eligible),
			SelectedApplicants: 0,
			AllocatedBudget:    allocated,
			RemainingBudget:    program.Budget,
			Results:            selections,
		}
	}

	for _, application := range eligible {
		if rules.MaxRecipients != nil && uint(len(selections)) >= *rules.MaxRecipients {
			break
		}

		if allocated.Add(rules.VoucherAmount).GreaterThan(program.Budget) {
			continue
		}

		selections = append(selections, models.AllocationSelection{
			ApplicationID: application.ID,
			ApplicantID:   application.ApplicantID,
			Amount:        rules.VoucherAmount,
		})
		allocated = allocated.Add(rules.VoucherAmount)
	}

	return models.AllocationResult{
		TotalApplicants:    len(applications),
		EligibleApplicants: len(eligible),
		SelectedApplicants: len(selections),
		AllocatedBudget:    allocated,
		RemainingBudget:    program.Budget.Sub(allocated),
		Results:            selections,
	}
}

// filterEligible keeps the applications that are still undecided and
// whose applicant passes the eligibility criteria of the program.
func filterEligible(applications []models.Application, applicants map[uuid.UUID]models.Applicant, criteria eligibility.Criteria, now time.Time) []models.Application {
	var eligible []models.Application

	for _, application := range applications {
		if application.Status != models.ApplicationStatusSubmitted {
			continue
		}

		applicant, ok := applicants[application.ApplicantID]
		if !ok {
			continue
		}

		if eligibility.ValidateAt(applicant.EligibilitySubject(), criteria, now).IsValid {
			eligible = append(eligible, application)
		}
	}

	return eligible
}

// score treats applications that have not been scored yet as zero.
func score(application models.Application) float64 {
	if application.Score == nil {
		return 0
	}

	return *application.Score
}
