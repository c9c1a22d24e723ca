package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/tripcat/internal/client/api"
	"github.com/dmitrijs2005/tripcat/internal/client/forms"
	"github.com/dmitrijs2005/tripcat/internal/client/session"
	"github.com/dmitrijs2005/tripcat/internal/common"
)

// getSimpleText, getTextDefault, getPassword and getConfirmation are
// indirections used to facilitate testing. They point to interactive input
// helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getTextDefault = GetTextDefault
var getPassword = GetPassword
var getConfirmation = GetConfirmation

// errValidation marks a command that stopped on field errors already shown
// to the user.
var errValidation = errors.New("validation failed")

// Register prompts for the account fields, validates them locally, and
// creates the account via the service. A successful registration also logs
// the new account in, mirroring the service's register response which carries
// both the user and a token.
//
// Password byte slices are securely wiped before returning. Field errors are
// printed per field and reported as errValidation without touching the
// network.
func (a *App) Register(ctx context.Context) error {
	firstName, err := getSimpleText(a.reader, "Enter first name", os.Stdout)
	if err != nil {
		return err
	}
	lastName, err := getSimpleText(a.reader, "Enter last name", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirm, err := getPassword("Confirm password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	draft := forms.DraftRegister{
		FirstName:       firstName,
		LastName:        lastName,
		Email:           email,
		Password:        string(password),
		ConfirmPassword: string(confirm),
	}
	if errs := a.forms.ValidateRegister(draft); !errs.Valid() {
		a.printFieldErrors(errs)
		return errValidation
	}

	user, token, err := a.api.Register(ctx, api.RegisterPayload{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  draft.Password,
	})
	if err != nil {
		printlnFn("Registration failed:", reason(err))
		return err
	}

	if err := a.session.Login(ctx, user, token); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Welcome, %s!", user.FullName()))
	return nil
}

// Login prompts for credentials and authenticates against the service. On
// success the session store records the user/token pair and persists the
// token for the next start. The password is securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, token, err := a.api.Login(ctx, email, string(password))
	if err != nil {
		printlnFn("Login failed:", reason(err))
		return err
	}

	if err := a.session.Login(ctx, user, token); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Welcome, %s!", user.FullName()))
	return nil
}

// Logout clears the in-memory session and erases the persisted token.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	printlnFn("Logged out")
	return nil
}

// Whoami prints the current account, if any.
func (a *App) Whoami(ctx context.Context) error {
	snap := a.session.Snapshot()
	switch snap.Status {
	case session.StatusChecking:
		printlnFn("Session check still in progress, try again shortly")
	case session.StatusAuthenticated:
		printlnFn(fmt.Sprintf("%s <%s> (%s)", snap.User.FullName(), snap.User.Email, snap.User.Role))
	default:
		printlnFn("Not logged in")
	}
	return nil
}

// reason extracts the user-facing failure message. Service responses carry
// their own message which is surfaced verbatim.
func reason(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
