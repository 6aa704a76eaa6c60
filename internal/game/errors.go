package game

import (
	"errors"
	"fmt"
)

// ErrorCode classifies rule rejections. All are recoverable and reported to the
// originating client only; the game state is never mutated on rejection.
type ErrorCode string

const (
	ErrInvalidTransition           ErrorCode = "invalid_transition"
	ErrNotYourTurn                 ErrorCode = "not_your_turn"
	ErrOutOfRange                  ErrorCode = "out_of_range"
	ErrCardNotInHand               ErrorCode = "card_not_in_hand"
	ErrMustFollowSuit              ErrorCode = "must_follow_suit"
	ErrDealerRestriction           ErrorCode = "dealer_restriction"
	ErrConsecutiveZeroRestriction  ErrorCode = "consecutive_zero_restriction"
	ErrNotFound                    ErrorCode = "not_found"
	ErrCapacityExceeded            ErrorCode = "capacity_exceeded"
	ErrDuplicateName               ErrorCode = "duplicate_name"
	ErrInternal                    ErrorCode = "internal_error"
)

// RuleError is a rejection of a client intent by a validator.
type RuleError struct {
	Code    ErrorCode
	Message string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewRuleError builds a RuleError with a formatted message.
func NewRuleError(code ErrorCode, format string, args ...interface{}) *RuleError {
	return &RuleError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the ErrorCode from err, or ErrInternal for non-rule errors.
func CodeOf(err error) ErrorCode {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Code
	}
	return ErrInternal
}
