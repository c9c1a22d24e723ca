// Package api is the Vacation Service collaborator boundary. It is the only
// package allowed to perform network I/O; every other component calls through
// the Client interface. Transport errors are mapped to sentinels here, and
// response envelopes are normalized here, so the core never probes shapes.
package api

import (
	"context"

	"github.com/dmitrijs2005/tripcat/internal/client/models"
	"github.com/dmitrijs2005/tripcat/internal/timex"
)

// RegisterPayload is the request body for POST /register.
type RegisterPayload struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// VacationPayload is the request body for creating or updating a vacation.
// When ImagePath is set the request is sent as multipart with an "image" file
// field; otherwise a plain JSON body is used and the service keeps the
// existing image.
type VacationPayload struct {
	Description string     `json:"vacation_description"`
	CountryID   int        `json:"country_id"`
	Start       timex.Date `json:"vacation_start"`
	End         timex.Date `json:"vacation_end"`
	Price       float64    `json:"price"`
	ImagePath   string     `json:"-"`
}

// Client is the full Vacation Service surface. Stores depend on narrow
// subsets of it; the CLI app wires a single implementation behind all of them.
type Client interface {
	Close() error

	// SetToken installs the bearer token attached to authenticated requests.
	SetToken(token string)
	// ClearToken removes the bearer token.
	ClearToken()

	Login(ctx context.Context, email, password string) (*models.User, string, error)
	Register(ctx context.Context, p RegisterPayload) (*models.User, string, error)
	Me(ctx context.Context) (*models.User, error)

	ListVacations(ctx context.Context) ([]models.Vacation, error)
	GetVacation(ctx context.Context, id int) (*models.Vacation, error)
	ListUserLikes(ctx context.Context) ([]int, error)
	CreateVacation(ctx context.Context, p VacationPayload) (*models.Vacation, error)
	UpdateVacation(ctx context.Context, id int, p VacationPayload) (*models.Vacation, error)
	DeleteVacation(ctx context.Context, id int) error

	AddLike(ctx context.Context, vacationID int) error
	RemoveLike(ctx context.Context, vacationID int) error

	ListCountries(ctx context.Context) ([]models.Country, error)
	GetCountry(ctx context.Context, id int) (*models.Country, error)

	// ImageURL resolves a stored picture file name to an absolute URL,
	// substituting a generic placeholder for blank references.
	ImageURL(fileName string) string
}
