package models

import (
	"errors"
	"fmt"
)

// The error kinds the platform core surfaces. Controllers translate
// them into HTTP status codes, the models and services only ever
// wrap these with machine-readable context.
var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no resource for the ID you specified")
	ErrValidation       = errors.New("the data you provided is invalid")
	ErrDuplicate        = errors.New("a resource with these attributes already exists")
	ErrInvalidState     = errors.New("the resource is in a state that does not allow this operation")
)

// Program errors
var (
	ErrProgramBudgetNegative       = errors.New("the program budget must not be negative")
	ErrProgramScheduleInvalid      = errors.New("the application period must start before it ends")
	ErrProgramStatusInvalid        = errors.New("the program status is not valid")
	ErrProgramHasApplications      = errors.New("programs that applications reference cannot be deleted")
	ErrProgramNotAcceptingRequests = errors.New("the program does not currently accept applications")
	ErrProgramOutsidePeriod        = errors.New("the application period for this program is not open")
)

// Applicant errors
var (
	ErrApplicantHasApplications = errors.New("applicants that applications reference cannot be deleted")
	ErrApplicantEmailNotUnique  = fmt.Errorf("%w: an applicant with this email is already registered", ErrDuplicate)
)

// Application errors
var (
	ErrApplicationDuplicate = errors.New("there already is a pending application for this program")
	ErrApplicationCompleted = errors.New("completed applications cannot be changed")
	ErrApplicationStatus    = errors.New("the application status is not valid")
)

// Review errors
var (
	ErrReviewDuplicateRound = errors.New("this reviewer has already scored this application in this round")
	ErrReviewScoreRange     = errors.New("the review score must be between 0 and 100")
	ErrReviewRoundInvalid   = errors.New("the review round must be a positive number")
	ErrReviewLocked         = errors.New("locked reviews cannot be changed")
)

// Allocation errors
var (
	ErrAllocationConfirmed     = errors.New("confirmed allocations cannot be changed")
	ErrAllocationNotConfirmed  = errors.New("only confirmed allocations can issue vouchers")
	ErrAllocationAmountInvalid = errors.New("the voucher amount must be larger than zero")
)

// Voucher errors
var (
	ErrVoucherNotActive           = errors.New("the voucher cannot be used in its current state")
	ErrVoucherExpired             = errors.New("the voucher has expired")
	ErrVoucherInsufficientBalance = errors.New("the voucher balance is lower than the requested amount")
	ErrVoucherAmountNotPositive   = errors.New("the amount must be larger than zero")
	ErrVoucherCodeGeneration      = errors.New("a unique voucher code could not be generated")
)
