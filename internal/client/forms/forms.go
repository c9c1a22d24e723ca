// Package forms holds the validation rules shared by the vacation
// create/edit flows and the registration flow. The rules are pure: they read
// a draft, never touch the network, and report problems as a field-to-message
// map so callers can show and clear errors per field.
package forms

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator"

	"github.com/dmitrijs2005/tripcat/internal/client/api"
	"github.com/dmitrijs2005/tripcat/internal/timex"
)

// Field keys use the wire names of the Vacation Service so errors line up
// with the fields the caller submits.
const (
	FieldDescription = "vacation_description"
	FieldCountry     = "country_id"
	FieldStart       = "vacation_start"
	FieldEnd         = "vacation_end"
	FieldPrice       = "price"
	FieldImage       = "image"

	FieldFirstName       = "first_name"
	FieldLastName        = "last_name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirm_password"
)

const (
	MinPrice          = 0
	MaxPrice          = 10000
	MinPasswordLength = 4
)

// Errors maps a field key to its message. An empty map means the draft is
// valid. Errors clear individually as fields are edited; validation as a
// whole re-runs only on submit.
type Errors map[string]string

func (e Errors) Valid() bool { return len(e) == 0 }

// Clear removes the error for a single field, if any.
func (e Errors) Clear(field string) { delete(e, field) }

// Mode distinguishes creating a new vacation from editing an existing one.
// Some rules apply only on create.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// DraftVacation is the unconfirmed form state for a vacation. Price stays a
// string until validation so "does not parse as a number" can be reported as
// its own field error.
type DraftVacation struct {
	Description string `validate:"required"`
	CountryID   int
	Start       timex.Date
	End         timex.Date
	Price       string `validate:"required"`
	ImagePath   string
}

// Payload converts a validated draft into the request body for the service.
// Call only after ValidateVacation reports the draft valid.
func (d DraftVacation) Payload() (api.VacationPayload, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(d.Price), 64)
	if err != nil {
		return api.VacationPayload{}, fmt.Errorf("price: %w", err)
	}
	return api.VacationPayload{
		Description: strings.TrimSpace(d.Description),
		CountryID:   d.CountryID,
		Start:       d.Start,
		End:         d.End,
		Price:       price,
		ImagePath:   d.ImagePath,
	}, nil
}

// DraftRegister is the unconfirmed form state for account registration.
type DraftRegister struct {
	FirstName       string `validate:"required"`
	LastName        string `validate:"required"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=4"`
	ConfirmPassword string `validate:"eqfield=Password"`
}

// Validator evaluates drafts against the form rules.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	return &Validator{validate: validator.New()}
}

// ValidateVacation checks a draft against the vacation rules. knownCountry
// reports whether a country id exists in the loaded reference data; today is
// the calendar date used for the create-only "not in the past" rule.
func (v *Validator) ValidateVacation(d DraftVacation, mode Mode, knownCountry func(int) bool, today timex.Date) Errors {
	errs := Errors{}

	d.Description = strings.TrimSpace(d.Description)
	d.Price = strings.TrimSpace(d.Price)

	if err := v.validate.Struct(d); err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			switch fe.Field() {
			case "Description":
				errs[FieldDescription] = "description is required"
			case "Price":
				errs[FieldPrice] = "price is required"
			}
		}
	}

	if d.CountryID == 0 {
		errs[FieldCountry] = "please select a country"
	} else if knownCountry != nil && !knownCountry(d.CountryID) {
		errs[FieldCountry] = "unknown country"
	}

	if !d.Start.IsSet() {
		errs[FieldStart] = "start date is required"
	} else if mode == ModeCreate && d.Start.Before(today) {
		errs[FieldStart] = "start date cannot be in the past"
	}

	if !d.End.IsSet() {
		errs[FieldEnd] = "end date is required"
	} else if d.Start.IsSet() && !d.Start.Before(d.End) {
		errs[FieldEnd] = "end date must be after the start date"
	}

	if _, present := errs[FieldPrice]; !present && d.Price != "" {
		price, err := strconv.ParseFloat(d.Price, 64)
		switch {
		case err != nil:
			errs[FieldPrice] = "price must be a number"
		case price < MinPrice || price > MaxPrice:
			errs[FieldPrice] = fmt.Sprintf("price must be between %d and %d", MinPrice, MaxPrice)
		}
	}

	if mode == ModeCreate && d.ImagePath == "" {
		errs[FieldImage] = "image is required"
	}

	return errs
}

// ValidateRegister checks a registration draft. Messages follow the tag that
// failed so each field reports its most specific problem.
func (v *Validator) ValidateRegister(d DraftRegister) Errors {
	errs := Errors{}

	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Email = strings.TrimSpace(d.Email)

	err := v.validate.Struct(d)
	if err == nil {
		return errs
	}
	for _, fe := range err.(validator.ValidationErrors) {
		switch fe.Field() {
		case "FirstName":
			errs[FieldFirstName] = "first name is required"
		case "LastName":
			errs[FieldLastName] = "last name is required"
		case "Email":
			if fe.ActualTag() == "email" {
				errs[FieldEmail] = "email address is not valid"
			} else {
				errs[FieldEmail] = "email is required"
			}
		case "Password":
			if fe.ActualTag() == "min" {
				errs[FieldPassword] = fmt.Sprintf("password must be at least %d characters", MinPasswordLength)
			} else {
				errs[FieldPassword] = "password is required"
			}
		case "ConfirmPassword":
			errs[FieldConfirmPassword] = "passwords do not match"
		}
	}
	return errs
}
