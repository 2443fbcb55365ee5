package form

import (
	"errors"
	"fmt"
)

// Mode selects which form the controller shows and which pipeline runs on submit.
type Mode string

const (
	ModeSignup            Mode = "signup"
	ModeLogin             Mode = "login"
	ModeContact           Mode = "contact"
	ModeForgotPassword    Mode = "forgotPassword"
	ModeLoginVerification Mode = "loginVerification"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeSignup, ModeLogin, ModeContact, ModeForgotPassword, ModeLoginVerification}

var (
	ErrUnknownMode          = errors.New("unknown form mode")
	ErrTransitionNotAllowed = errors.New("form mode transition not allowed")
)

// ParseMode converts the wire name of a mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// transitions holds the only mode changes a user can trigger. Contact and
// loginVerification have no way out.
var transitions = map[Mode][]Mode{
	ModeSignup: {ModeLogin},
	ModeLogin:  {ModeSignup, ModeForgotPassword},
}

// CanSwitch reports whether a user may move from one mode to another.
func CanSwitch(from, to Mode) bool {
	for _, m := range transitions[from] {
		if m == to {
			return true
		}
	}
	return false
}

// ResetPolicy says whether the fields are cleared after a dispatched submission.
type ResetPolicy struct {
	OnSuccess bool
	OnFailure bool
}

var resetPolicies = map[Mode]ResetPolicy{
	ModeSignup:            {OnSuccess: true, OnFailure: false},
	ModeLogin:             {OnSuccess: true, OnFailure: true},
	ModeContact:           {OnSuccess: false, OnFailure: true},
	ModeForgotPassword:    {OnSuccess: true, OnFailure: false},
	ModeLoginVerification: {OnSuccess: true, OnFailure: true},
}

// PolicyFor returns the reset policy of m.
func PolicyFor(m Mode) ResetPolicy {
	return resetPolicies[m]
}
