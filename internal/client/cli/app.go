package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/tripcat/internal/client/api"
	"github.com/dmitrijs2005/tripcat/internal/client/catalog"
	"github.com/dmitrijs2005/tripcat/internal/client/config"
	"github.com/dmitrijs2005/tripcat/internal/client/forms"
	"github.com/dmitrijs2005/tripcat/internal/client/likes"
	"github.com/dmitrijs2005/tripcat/internal/client/session"
	"github.com/dmitrijs2005/tripcat/internal/client/storage"
	"github.com/dmitrijs2005/tripcat/internal/logging"

	_ "modernc.org/sqlite"
)

// App wires the configuration, the local metadata database, the Vacation
// Service client and the state stores behind the interactive REPL.
type App struct {
	config  *config.Config
	log     logging.Logger
	api     api.Client
	db      *storage.Repositories
	session *session.Store
	catalog *catalog.Store
	toggler *likes.Toggler
	forms   *forms.Validator
	reader  *bufio.Reader
}

func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	db, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "err", err)
		return nil, err
	}

	apiClient := api.NewHTTPClient(c.ServerEndpointURL, c.RequestTimeout)

	sess := session.New(apiClient, db.DB, db.Metadata, log)
	cat := catalog.New(apiClient, sess, log)
	toggler := likes.New(apiClient, cat, sess, log)

	return &App{
		config:  c,
		log:     log,
		api:     apiClient,
		db:      db,
		session: sess,
		catalog: cat,
		toggler: toggler,
		forms:   forms.New(),
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

// Run settles the persisted session and blocks in the REPL until the user
// exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.session.Start(ctx)

	printlnFn("tripcat CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

// Close releases the service client and the local database.
func (a *App) Close() {
	_ = a.api.Close()
	_ = a.db.DB.Close()
}

func (a *App) isLoggedIn() bool { return a.session.IsAuthenticated() }
func (a *App) isAdmin() bool    { return a.session.IsAdmin() }

// status renders the prompt segment showing who is logged in.
func (a *App) status() string {
	snap := a.session.Snapshot()
	if snap.Status != session.StatusAuthenticated || snap.User == nil {
		return ""
	}
	return fmt.Sprintf("(%s %s) ", snap.User.Email, snap.User.Role)
}
