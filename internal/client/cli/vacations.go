package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/tripcat/internal/client/forms"
	"github.com/dmitrijs2005/tripcat/internal/client/likes"
)

// ensureLoaded loads the catalog on first use. A failed load prints a retry
// hint; the previous catalog state, if any, stays visible.
func (a *App) ensureLoaded(ctx context.Context) error {
	if a.catalog.Loaded() {
		return nil
	}
	return a.load(ctx)
}

func (a *App) load(ctx context.Context) error {
	if err := a.catalog.Load(ctx); err != nil {
		printlnFn("Could not load the catalog:", reason(err))
		printlnFn("Type 'refresh' to retry")
		return err
	}
	return nil
}

// List prints the vacation catalog ordered by start date.
func (a *App) List(ctx context.Context) error {
	if err := a.ensureLoaded(ctx); err != nil {
		return err
	}

	vacations := a.catalog.Vacations()
	if len(vacations) == 0 {
		printlnFn("No vacations yet")
		return nil
	}

	for _, v := range vacations {
		mark := " "
		if a.catalog.Liked(v.ID) {
			mark = "*"
		}
		printlnFn(fmt.Sprintf("%s #%-4d %s — %s, %s to %s, $%.2f, %d likes",
			mark, v.ID, v.Description, a.catalog.CountryName(v.CountryID),
			v.Start, v.End, v.Price, v.LikesCount))
		printlnFn("        " + a.api.ImageURL(v.PictureFileName))
	}

	if a.session.IsAdmin() {
		total, upcoming := a.catalog.Summary(time.Now())
		printlnFn(fmt.Sprintf("%d vacations, %d upcoming", total, upcoming))
	}
	return nil
}

// Refresh reloads the catalog from the service.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.load(ctx); err != nil {
		return err
	}
	printlnFn("Catalog refreshed")
	return nil
}

// Countries prints the reference country list.
func (a *App) Countries(ctx context.Context) error {
	if err := a.ensureLoaded(ctx); err != nil {
		return err
	}
	for _, c := range a.catalog.Countries() {
		printlnFn(fmt.Sprintf("#%-4d %s", c.ID, c.Name))
	}
	return nil
}

// Like toggles the current user's like on a vacation and prints the settled
// state. Policy violations and in-flight rejections print their own message.
func (a *App) Like(ctx context.Context, id int) error {
	if err := a.ensureLoaded(ctx); err != nil {
		return err
	}

	liked, err := a.toggler.Toggle(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, likes.ErrNotAuthenticated):
			printlnFn("Please login to like vacations")
		case errors.Is(err, likes.ErrAdminsCannotLike):
			printlnFn("Administrators cannot like vacations")
		case errors.Is(err, likes.ErrToggleInFlight):
			printlnFn("The previous like for this vacation is still in progress")
		case errors.Is(err, likes.ErrUnknownVacation):
			printlnFn(fmt.Sprintf("No vacation with id %d", id))
		default:
			printlnFn("Like failed:", reason(err))
		}
		return err
	}

	_, count, _ := a.catalog.LikeState(id)
	if liked {
		printlnFn(fmt.Sprintf("Liked vacation #%d (%d likes)", id, count))
	} else {
		printlnFn(fmt.Sprintf("Removed like from vacation #%d (%d likes)", id, count))
	}
	return nil
}

func (a *App) printFieldErrors(errs forms.Errors) {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		printlnFn(fmt.Sprintf("  %s: %s", f, errs[f]))
	}
}
