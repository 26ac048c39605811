// Package admin implements the filedo-admin command line: key generation,
// token encryption and decryption, storage lookups and database checks.
package admin

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/filedo/internal/server/config"
	"github.com/spf13/cobra"
)

// App represents the CLI application.
type App struct {
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
	getenv func(string) string

	key    string
	driver string
	dsn    string
	roots  []string
}

// New creates the CLI. Database and search path defaults come from the same
// environment variables the server reads.
func New(getenv func(string) string) *App {
	defaults := config.Load(nil, getenv)

	app := &App{
		stdout: os.Stdout,
		stderr: os.Stderr,
		stdin:  os.Stdin,
		getenv: getenv,
	}

	app.root = &cobra.Command{
		Use:   "filedo-admin",
		Short: "Administrative tools for the filedo retrieval service",
		Long: `filedo-admin generates secret keys, seals and opens retrieval keys,
checks which storage root holds a file and inspects the manifest database.

The secret key is taken from --key, then SECRET_KEY, then a terminal prompt.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := app.root.PersistentFlags()
	pf.StringVar(&app.key, "key", "", "Secret key (default: SECRET_KEY or prompt)")
	pf.StringVarP(&app.driver, "driver", "t", defaults.DatabaseDriver, "Database driver (pgx or mysql)")
	pf.StringVarP(&app.dsn, "dsn", "d", defaults.DatabaseDSN, "Database DSN")
	app.roots = defaults.SearchPaths

	app.root.AddCommand(
		app.newKeygenCmd(),
		app.newEncryptCmd(),
		app.newDecryptCmd(),
		app.newLocateCmd(),
		app.newDBCmd(),
	)

	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// Execute runs the CLI application.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments (useful for testing).
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}
