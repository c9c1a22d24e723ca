package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/tripcat/internal/client/api"
	"github.com/dmitrijs2005/tripcat/internal/client/catalog"
	"github.com/dmitrijs2005/tripcat/internal/client/config"
	"github.com/dmitrijs2005/tripcat/internal/client/forms"
	"github.com/dmitrijs2005/tripcat/internal/client/likes"
	"github.com/dmitrijs2005/tripcat/internal/client/models"
	"github.com/dmitrijs2005/tripcat/internal/client/session"
	"github.com/dmitrijs2005/tripcat/internal/client/storage"
	"github.com/dmitrijs2005/tripcat/internal/logging"
	"github.com/dmitrijs2005/tripcat/internal/timex"
)

// ------------ helpers ------------

func readerFromLines(lines ...string) *bufio.Reader {
	lines = append(lines, "")
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n")))
}

func captureOutput(t *testing.T) *strings.Builder {
	t.Helper()
	var b strings.Builder
	orig := printlnFn
	printlnFn = func(args ...any) (int, error) {
		b.WriteString(fmt.Sprintln(args...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &b
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { readPassword = orig })
}

// fakeClient is an in-memory stand-in for the Vacation Service.
type fakeClient struct {
	token string

	loginUser *models.User
	loginErr  error

	registered *api.RegisterPayload

	vacations []models.Vacation
	countries []models.Country
	likedIDs  []int

	created *models.Vacation
	updated *models.Vacation
	deleted []int

	createErr error
	updateErr error
	deleteErr error

	addLikes    []int
	removeLikes []int
}

func (f *fakeClient) Close() error          { return nil }
func (f *fakeClient) SetToken(token string) { f.token = token }
func (f *fakeClient) ClearToken()           { f.token = "" }

func (f *fakeClient) Login(_ context.Context, email, password string) (*models.User, string, error) {
	if f.loginErr != nil {
		return nil, "", f.loginErr
	}
	return f.loginUser, "tok-login", nil
}

func (f *fakeClient) Register(_ context.Context, p api.RegisterPayload) (*models.User, string, error) {
	f.registered = &p
	return &models.User{ID: 9, FirstName: p.FirstName, LastName: p.LastName,
		Email: p.Email, Role: models.RoleTraveler}, "tok-reg", nil
}

func (f *fakeClient) Me(_ context.Context) (*models.User, error) {
	if f.loginUser == nil {
		return nil, api.ErrUnauthorized
	}
	return f.loginUser, nil
}

func (f *fakeClient) ListVacations(context.Context) ([]models.Vacation, error) {
	return f.vacations, nil
}

func (f *fakeClient) GetVacation(_ context.Context, id int) (*models.Vacation, error) {
	for _, v := range f.vacations {
		if v.ID == id {
			v := v
			return &v, nil
		}
	}
	return nil, &api.Error{StatusCode: 404, Message: "vacation not found"}
}

func (f *fakeClient) ListUserLikes(context.Context) ([]int, error) { return f.likedIDs, nil }

func (f *fakeClient) CreateVacation(_ context.Context, p api.VacationPayload) (*models.Vacation, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = &models.Vacation{
		ID: 99, Description: p.Description, CountryID: p.CountryID,
		Start: p.Start, End: p.End, Price: p.Price,
	}
	return f.created, nil
}

func (f *fakeClient) UpdateVacation(_ context.Context, id int, p api.VacationPayload) (*models.Vacation, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updated = &models.Vacation{
		ID: id, Description: p.Description, CountryID: p.CountryID,
		Start: p.Start, End: p.End, Price: p.Price,
	}
	return f.updated, nil
}

func (f *fakeClient) DeleteVacation(_ context.Context, id int) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeClient) AddLike(_ context.Context, id int) error {
	f.addLikes = append(f.addLikes, id)
	return nil
}

func (f *fakeClient) RemoveLike(_ context.Context, id int) error {
	f.removeLikes = append(f.removeLikes, id)
	return nil
}

func (f *fakeClient) ListCountries(context.Context) ([]models.Country, error) {
	return f.countries, nil
}

func (f *fakeClient) GetCountry(_ context.Context, id int) (*models.Country, error) {
	for _, c := range f.countries {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, &api.Error{StatusCode: 404, Message: "country not found"}
}

func (f *fakeClient) ImageURL(fileName string) string {
	if fileName == "" {
		return api.PlaceholderImageURL
	}
	return "http://svc/images/" + fileName
}

var _ api.Client = (*fakeClient)(nil)

func catalogFixture() *fakeClient {
	return &fakeClient{
		vacations: []models.Vacation{
			{ID: 42, Description: "Alps hiking", CountryID: 2,
				Start: timex.NewDate(2026, time.September, 1), End: timex.NewDate(2026, time.September, 8),
				Price: 900, PictureFileName: "alps.jpg", LikesCount: 3},
			{ID: 7, Description: "Lisbon weekend", CountryID: 5,
				Start: timex.NewDate(2026, time.October, 3), End: timex.NewDate(2026, time.October, 6),
				Price: 300, LikesCount: 1},
		},
		countries: []models.Country{{ID: 2, Name: "Austria"}, {ID: 5, Name: "Portugal"}},
	}
}

func newTestApp(t *testing.T, fc *fakeClient, lines ...string) *App {
	t.Helper()
	ctx := context.Background()

	db, err := storage.InitDatabase(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.DB.Close() })

	log := logging.NewTextLogger(io.Discard, slog.LevelError)
	sess := session.New(fc, db.DB, db.Metadata, log)
	cat := catalog.New(fc, sess, log)

	a := &App{
		config:  &config.Config{},
		log:     log,
		api:     fc,
		db:      db,
		session: sess,
		catalog: cat,
		toggler: likes.New(fc, cat, sess, log),
		forms:   forms.New(),
		reader:  readerFromLines(lines...),
	}
	// No persisted token in a fresh database: settles Anonymous.
	a.session.Start(ctx)
	return a
}

func loginAs(t *testing.T, a *App, role models.Role) *models.User {
	t.Helper()
	u := &models.User{ID: 5, FirstName: "Dana", LastName: "Doe", Email: "dana@example.com", Role: role}
	require.NoError(t, a.session.Login(context.Background(), u, "tok"))
	return u
}

// ------------ tests ------------

func TestLogin_Success(t *testing.T) {
	out := captureOutput(t)
	stubPassword(t, "secret")

	fc := catalogFixture()
	fc.loginUser = &models.User{ID: 3, FirstName: "Ann", LastName: "A", Email: "ann@example.com", Role: models.RoleTraveler}
	a := newTestApp(t, fc, "ann@example.com")

	require.NoError(t, a.Login(context.Background()))
	require.True(t, a.isLoggedIn())
	require.Equal(t, "tok-login", fc.token)
	require.Contains(t, out.String(), "Welcome, Ann A!")
}

func TestLogin_FailureSurfacesServiceMessage(t *testing.T) {
	out := captureOutput(t)
	stubPassword(t, "wrong")

	fc := catalogFixture()
	fc.loginErr = &api.Error{StatusCode: 401, Message: "invalid email or password"}
	a := newTestApp(t, fc, "ann@example.com")

	require.Error(t, a.Login(context.Background()))
	require.False(t, a.isLoggedIn())
	require.Contains(t, out.String(), "invalid email or password")
}

func TestRegister_ValidationStopsBeforeNetwork(t *testing.T) {
	out := captureOutput(t)
	stubPassword(t, "abc") // shorter than the minimum

	fc := catalogFixture()
	a := newTestApp(t, fc, "Ann", "A", "not-an-email")

	err := a.Register(context.Background())
	require.ErrorIs(t, err, errValidation)
	require.Nil(t, fc.registered, "service must not be called on field errors")
	require.Contains(t, out.String(), forms.FieldEmail)
	require.Contains(t, out.String(), forms.FieldPassword)
}

func TestRegister_SuccessLogsIn(t *testing.T) {
	captureOutput(t)
	stubPassword(t, "s3cret")

	fc := catalogFixture()
	a := newTestApp(t, fc, "Ann", "A", "ann@example.com")

	require.NoError(t, a.Register(context.Background()))
	require.NotNil(t, fc.registered)
	require.Equal(t, "ann@example.com", fc.registered.Email)
	require.True(t, a.isLoggedIn())
	require.Equal(t, "tok-reg", fc.token)
}

func TestLogoutAndWhoami(t *testing.T) {
	out := captureOutput(t)
	a := newTestApp(t, catalogFixture())

	require.NoError(t, a.Whoami(context.Background()))
	require.Contains(t, out.String(), "Not logged in")

	loginAs(t, a, models.RoleTraveler)
	require.NoError(t, a.Whoami(context.Background()))
	require.Contains(t, out.String(), "dana@example.com")

	require.NoError(t, a.Logout(context.Background()))
	require.False(t, a.isLoggedIn())
	require.Contains(t, out.String(), "Logged out")
}

func TestList_RendersCatalog(t *testing.T) {
	out := captureOutput(t)
	a := newTestApp(t, catalogFixture())

	require.NoError(t, a.List(context.Background()))

	s := out.String()
	require.Contains(t, s, "Alps hiking")
	require.Contains(t, s, "Austria")
	require.Contains(t, s, "Lisbon weekend")
	require.Contains(t, s, "Portugal")
	// Ordered by start date: the Alps trip starts first.
	require.Less(t, strings.Index(s, "Alps hiking"), strings.Index(s, "Lisbon weekend"))
	// A missing picture renders the placeholder instead of a broken link.
	require.Contains(t, s, "http://svc/images/alps.jpg")
	require.Contains(t, s, api.PlaceholderImageURL)
}

func TestList_UnknownCountryRendersSentinel(t *testing.T) {
	out := captureOutput(t)
	fc := catalogFixture()
	fc.countries = []models.Country{{ID: 5, Name: "Portugal"}}
	a := newTestApp(t, fc)

	require.NoError(t, a.List(context.Background()))
	require.Contains(t, out.String(), catalog.UnknownCountryName)
}

func TestList_AdminSeesSummary(t *testing.T) {
	out := captureOutput(t)
	a := newTestApp(t, catalogFixture())
	loginAs(t, a, models.RoleAdmin)

	require.NoError(t, a.List(context.Background()))
	require.Contains(t, out.String(), "2 vacations")
}

func TestCountries_ListsReferenceData(t *testing.T) {
	out := captureOutput(t)
	a := newTestApp(t, catalogFixture())

	require.NoError(t, a.Countries(context.Background()))
	require.Contains(t, out.String(), "Austria")
	require.Contains(t, out.String(), "Portugal")
}

func TestRefresh_ReloadsCatalog(t *testing.T) {
	out := captureOutput(t)
	fc := catalogFixture()
	a := newTestApp(t, fc)

	require.NoError(t, a.Refresh(context.Background()))
	require.Contains(t, out.String(), "Catalog refreshed")

	fc.vacations = fc.vacations[:1]
	require.NoError(t, a.Refresh(context.Background()))
	require.Len(t, a.catalog.Vacations(), 1)
}

func TestLike_TravelerTogglesAndSeesCount(t *testing.T) {
	out := captureOutput(t)
	fc := catalogFixture()
	a := newTestApp(t, fc)
	loginAs(t, a, models.RoleTraveler)

	require.NoError(t, a.Like(context.Background(), 42))
	require.Equal(t, []int{42}, fc.addLikes)
	require.Contains(t, out.String(), "Liked vacation #42 (4 likes)")

	require.NoError(t, a.Like(context.Background(), 42))
	require.Equal(t, []int{42}, fc.removeLikes)
	require.Contains(t, out.String(), "Removed like from vacation #42 (3 likes)")
}

func TestLike_PolicyMessages(t *testing.T) {
	out := captureOutput(t)
	a := newTestApp(t, catalogFixture())

	require.Error(t, a.Like(context.Background(), 42))
	require.Contains(t, out.String(), "Please login to like vacations")

	loginAs(t, a, models.RoleAdmin)
	require.Error(t, a.Like(context.Background(), 42))
	require.Contains(t, out.String(), "Administrators cannot like vacations")
}

func TestAdminGate_Messages(t *testing.T) {
	out := captureOutput(t)
	fc := catalogFixture()
	a := newTestApp(t, fc)

	require.NoError(t, a.Add(context.Background()))
	require.Contains(t, out.String(), "Please login first")
	require.Nil(t, fc.created)

	loginAs(t, a, models.RoleTraveler)
	require.NoError(t, a.Add(context.Background()))
	require.Contains(t, out.String(), "This command is for administrators")
	require.Nil(t, fc.created)
}

func TestAdd_CreatesVacation(t *testing.T) {
	out := captureOutput(t)
	fc := catalogFixture()
	a := newTestApp(t, fc,
		"Beach week",   // description
		"2",            // country id
		"2030-09-10",   // start
		"2030-09-17",   // end
		"250",          // price
		"/tmp/pic.jpg") // image path
	loginAs(t, a, models.RoleAdmin)

	require.NoError(t, a.Add(context.Background()))
	require.NotNil(t, fc.created)
	require.Equal(t, "Beach week", fc.created.Description)

	// The created vacation lands in the cached catalog without a re-fetch.
	got, ok := a.catalog.Vacation(99)
	require.True(t, ok)
	require.Equal(t, "Beach week", got.Description)
	require.Contains(t, out.String(), "Created vacation #99")
}

func TestAdd_FieldErrorsStopNetwork(t *testing.T) {
	out := captureOutput(t)
	fc := catalogFixture()
	a := newTestApp(t, fc,
		"",           // description missing
		"17",         // unknown country
		"2030-09-10", // start
		"2030-09-10", // end not after start
		"oops",       // unparsable price
		"")           // image missing
	loginAs(t, a, models.RoleAdmin)

	err := a.Add(context.Background())
	require.ErrorIs(t, err, errValidation)
	require.Nil(t, fc.created)

	s := out.String()
	require.Contains(t, s, forms.FieldDescription)
	require.Contains(t, s, forms.FieldCountry)
	require.Contains(t, s, forms.FieldEnd)
	require.Contains(t, s, forms.FieldPrice)
	require.Contains(t, s, forms.FieldImage)
}

func TestEdit_EmptyInputKeepsFields(t *testing.T) {
	out := captureOutput(t)
	fc := catalogFixture()
	// All prompts answered with an empty line: every field keeps its value
	// and the missing image keeps the existing picture.
	a := newTestApp(t, fc, "", "", "", "", "", "")
	loginAs(t, a, models.RoleAdmin)

	require.NoError(t, a.Edit(context.Background(), 42))
	require.NotNil(t, fc.updated)
	require.Equal(t, "Alps hiking", fc.updated.Description)
	require.Equal(t, 2, fc.updated.CountryID)
	require.Equal(t, 900.0, fc.updated.Price)

	got, ok := a.catalog.Vacation(42)
	require.True(t, ok)
	require.Equal(t, "Alps hiking", got.Description)
	require.Contains(t, out.String(), "Updated vacation #42")
}

func TestEdit_UnknownVacation(t *testing.T) {
	out := captureOutput(t)
	a := newTestApp(t, catalogFixture())
	loginAs(t, a, models.RoleAdmin)

	require.Error(t, a.Edit(context.Background(), 1234))
	require.Contains(t, out.String(), "No vacation with id 1234")
}

func TestDelete_ConfirmationFlow(t *testing.T) {
	out := captureOutput(t)
	fc := catalogFixture()
	a := newTestApp(t, fc, "n", "y")
	loginAs(t, a, models.RoleAdmin)
	require.NoError(t, a.ensureLoaded(context.Background()))

	// Declined: nothing happens.
	require.NoError(t, a.Delete(context.Background(), 42))
	require.Empty(t, fc.deleted)
	require.Contains(t, out.String(), "Cancelled")

	// Confirmed: deleted remotely and dropped from the cache.
	require.NoError(t, a.Delete(context.Background(), 42))
	require.Equal(t, []int{42}, fc.deleted)
	_, ok := a.catalog.Vacation(42)
	require.False(t, ok)
	require.Contains(t, out.String(), "Deleted vacation #42")
}

func TestDelete_ServiceErrorSurfaced(t *testing.T) {
	out := captureOutput(t)
	fc := catalogFixture()
	fc.deleteErr = errors.New("boom")
	a := newTestApp(t, fc, "y")
	loginAs(t, a, models.RoleAdmin)
	require.NoError(t, a.ensureLoaded(context.Background()))

	require.Error(t, a.Delete(context.Background(), 42))
	require.Contains(t, out.String(), "Delete failed")
	_, ok := a.catalog.Vacation(42)
	require.True(t, ok, "failed delete keeps the cached vacation")
}
