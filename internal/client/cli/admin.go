package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/tripcat/internal/client/api"
	"github.com/dmitrijs2005/tripcat/internal/client/authgate"
	"github.com/dmitrijs2005/tripcat/internal/client/forms"
	"github.com/dmitrijs2005/tripcat/internal/timex"
)

// requireAdmin gates a command on the admin role. Every decision other than
// Allow prints its own message and stops the command.
func (a *App) requireAdmin() bool {
	switch authgate.Decide(a.session.Snapshot(), authgate.RequireAdmin) {
	case authgate.DecisionAllow:
		return true
	case authgate.DecisionWait:
		printlnFn("Session check still in progress, try again shortly")
	case authgate.DecisionRedirectLogin:
		printlnFn("Please login first")
	case authgate.DecisionRedirectHome:
		printlnFn("This command is for administrators")
	}
	return false
}

// Add creates a new vacation from interactively entered fields. Field errors
// are printed per field and stop the command before any network call.
func (a *App) Add(ctx context.Context) error {
	if !a.requireAdmin() {
		return nil
	}
	if err := a.ensureLoaded(ctx); err != nil {
		return err
	}

	draft, err := a.inputVacation(forms.DraftVacation{}, forms.ModeCreate)
	if err != nil {
		return err
	}
	if errs := a.forms.ValidateVacation(draft, forms.ModeCreate, a.catalog.KnownCountry, today()); !errs.Valid() {
		a.printFieldErrors(errs)
		return errValidation
	}

	payload, err := draft.Payload()
	if err != nil {
		return err
	}
	created, err := a.api.CreateVacation(ctx, payload)
	if err != nil {
		printlnFn("Create failed:", reason(err))
		return err
	}

	a.catalog.ApplyCreate(*created)
	printlnFn(fmt.Sprintf("Created vacation #%d", created.ID))
	return nil
}

// Edit updates an existing vacation. Prompts are seeded with the current
// values; an empty answer keeps the field, and a missing image keeps the
// existing one.
func (a *App) Edit(ctx context.Context, id int) error {
	if !a.requireAdmin() {
		return nil
	}
	if err := a.ensureLoaded(ctx); err != nil {
		return err
	}

	current, err := a.api.GetVacation(ctx, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			printlnFn(fmt.Sprintf("No vacation with id %d", id))
		} else {
			printlnFn("Could not fetch the vacation:", reason(err))
		}
		return err
	}

	seed := forms.DraftVacation{
		Description: current.Description,
		CountryID:   current.CountryID,
		Start:       current.Start,
		End:         current.End,
		Price:       strconv.FormatFloat(current.Price, 'f', -1, 64),
	}
	draft, err := a.inputVacation(seed, forms.ModeEdit)
	if err != nil {
		return err
	}
	if errs := a.forms.ValidateVacation(draft, forms.ModeEdit, a.catalog.KnownCountry, today()); !errs.Valid() {
		a.printFieldErrors(errs)
		return errValidation
	}

	payload, err := draft.Payload()
	if err != nil {
		return err
	}
	updated, err := a.api.UpdateVacation(ctx, id, payload)
	if err != nil {
		printlnFn("Update failed:", reason(err))
		return err
	}

	a.catalog.ApplyUpdate(*updated)
	printlnFn(fmt.Sprintf("Updated vacation #%d", updated.ID))
	return nil
}

// Delete removes a vacation after an interactive confirmation.
func (a *App) Delete(ctx context.Context, id int) error {
	if !a.requireAdmin() {
		return nil
	}

	ok, err := getConfirmation(a.reader, fmt.Sprintf("Delete vacation #%d?", id), os.Stdout)
	if err != nil {
		return err
	}
	if !ok {
		printlnFn("Cancelled")
		return nil
	}

	if err := a.api.DeleteVacation(ctx, id); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			printlnFn(fmt.Sprintf("No vacation with id %d", id))
		} else {
			printlnFn("Delete failed:", reason(err))
		}
		return err
	}

	a.catalog.ApplyDelete(id)
	printlnFn(fmt.Sprintf("Deleted vacation #%d", id))
	return nil
}

// inputVacation collects the vacation fields. For edit, prompts show the
// seeded values and an empty line keeps them. Values that do not parse are
// left unset for the validator to report.
func (a *App) inputVacation(seed forms.DraftVacation, mode forms.Mode) (forms.DraftVacation, error) {
	var zero forms.DraftVacation

	description, err := getTextDefault(a.reader, "Enter description", seed.Description, os.Stdout)
	if err != nil {
		return zero, err
	}

	countryText, err := getTextDefault(a.reader, "Enter country id (see 'countries')",
		strconv.Itoa(seed.CountryID), os.Stdout)
	if err != nil {
		return zero, err
	}
	countryID, err := strconv.Atoi(countryText)
	if err != nil {
		countryID = 0
	}

	startText, err := getTextDefault(a.reader, "Enter start date (YYYY-MM-DD)", seed.Start.String(), os.Stdout)
	if err != nil {
		return zero, err
	}
	start, err := timex.ParseDate(startText)
	if err != nil {
		start = timex.Date{}
	}

	endText, err := getTextDefault(a.reader, "Enter end date (YYYY-MM-DD)", seed.End.String(), os.Stdout)
	if err != nil {
		return zero, err
	}
	end, err := timex.ParseDate(endText)
	if err != nil {
		end = timex.Date{}
	}

	price, err := getTextDefault(a.reader, "Enter price", seed.Price, os.Stdout)
	if err != nil {
		return zero, err
	}

	imagePrompt := "Enter image file path"
	if mode == forms.ModeEdit {
		imagePrompt = "Enter image file path (empty keeps the current image)"
	}
	imagePath, err := getSimpleText(a.reader, imagePrompt, os.Stdout)
	if err != nil {
		return zero, err
	}

	return forms.DraftVacation{
		Description: description,
		CountryID:   countryID,
		Start:       start,
		End:         end,
		Price:       price,
		ImagePath:   imagePath,
	}, nil
}

func today() timex.Date {
	now := time.Now()
	return timex.NewDate(now.Year(), now.Month(), now.Day())
}
