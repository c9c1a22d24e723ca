// Package authgate derives a render decision from the session state plus a
// per-screen role requirement. It replaces per-screen role checks with one
// pure decision function.
package authgate

import (
	"github.com/dmitrijs2005/tripcat/internal/client/models"
	"github.com/dmitrijs2005/tripcat/internal/client/session"
)

// Requirement is the role a screen demands beyond being authenticated.
type Requirement int

const (
	// RequireNone admits any authenticated user.
	RequireNone Requirement = iota
	// RequireAdmin admits administrators only.
	RequireAdmin
)

// Decision is the gate's verdict for a screen request.
type Decision int

const (
	// DecisionWait: session verification has not settled; render nothing yet.
	DecisionWait Decision = iota
	// DecisionAllow: render the requested screen.
	DecisionAllow
	// DecisionRedirectLogin: the visitor is anonymous; send them to login.
	DecisionRedirectLogin
	// DecisionRedirectHome: authenticated but under-privileged; send home.
	DecisionRedirectHome
)

func (d Decision) String() string {
	switch d {
	case DecisionWait:
		return "wait"
	case DecisionAllow:
		return "allow"
	case DecisionRedirectLogin:
		return "redirect-login"
	case DecisionRedirectHome:
		return "redirect-home"
	default:
		return "invalid"
	}
}

// Decide maps a session snapshot and a requirement to a decision. Pure and
// total: no side effects, defined for every input, deterministic given the
// snapshot. Callers re-evaluate it on every session change.
func Decide(snap session.Snapshot, req Requirement) Decision {
	switch snap.Status {
	case session.StatusChecking:
		return DecisionWait
	case session.StatusAuthenticated:
		if req == RequireAdmin && (snap.User == nil || snap.User.Role != models.RoleAdmin) {
			return DecisionRedirectHome
		}
		return DecisionAllow
	default:
		// Anonymous, or an out-of-range status a buggy caller cooked up.
		return DecisionRedirectLogin
	}
}
