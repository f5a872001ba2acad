package engine

import (
	"errors"

	"hc_engine/pkg/fixedpoint"
)

// Error variables for consistent error handling. Every precondition
// violation aborts the operation and leaves engine state untouched.
var (
	ErrProposalDoesNotExist                 = errors.New("proposal does not exist")
	ErrProposalIsClosed                     = errors.New("proposal is closed")
	ErrProposalIsBoosted                    = errors.New("proposal is boosted")
	ErrProposalIsNotBoosted                 = errors.New("proposal is not boosted")
	ErrProposalIsActive                     = errors.New("proposal is active")
	ErrProposalDoesNotHaveEnoughConfidence  = errors.New("proposal does not have enough confidence")
	ErrProposalHasntHadConfidenceEnoughTime = errors.New("proposal hasn't had confidence long enough")
	ErrUserHasNoVotingPower                 = errors.New("user has no voting power")
	ErrSenderDoesNotHaveEnoughFunds         = errors.New("sender does not have enough funds")
	ErrInsufficientAllowance                = errors.New("insufficient allowance")
	ErrSenderDoesNotHaveRequiredStake       = errors.New("sender does not have required stake")
	ErrVotingDoesNotHaveEnoughFunds         = errors.New("engine does not have enough funds")
	ErrInvalidCompensationFee               = errors.New("invalid compensation fee")
	ErrInvalidAmount                        = errors.New("invalid amount")
	ErrInitSupportTooSmall                  = errors.New("support percentage below 50%")
	ErrInitSupportTooBig                    = errors.New("support percentage at or above 100%")
)

// ErrArithmeticOverflow indicates a bug or malicious input; it is surfaced,
// never recovered from.
var ErrArithmeticOverflow = fixedpoint.ErrArithmeticOverflow
