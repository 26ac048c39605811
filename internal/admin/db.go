package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/filedo/internal/common"
	"github.com/dmitrijs2005/filedo/internal/dbx"
	"github.com/dmitrijs2005/filedo/internal/server/repositories/repomanager"
	"github.com/spf13/cobra"
)

// openDB is a seam for tests. One attempt: the admin tool reports
// connection failures instead of waiting them out.
var openDB = func(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	return dbx.Open(ctx, driver, dsn, dbx.RetryConfig{MaxAttempts: 1})
}

func (a *App) newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect the manifest database",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "check",
			Short: "Check that the database answers",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.dbCheck(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply schema migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.dbMigrate(cmd.Context())
			},
		},
		a.newDBFindCmd(),
	)

	return cmd
}

func (a *App) withDB(ctx context.Context, fn func(*sql.DB, repomanager.RepositoryManager) error) error {
	rm, err := repomanager.New(a.driver)
	if err != nil {
		return err
	}
	db, err := openDB(ctx, a.driver, a.dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(db, rm)
}

func (a *App) dbCheck(ctx context.Context) error {
	_, _ = fmt.Fprintf(a.stdout, "Driver: %s\n", a.driver)

	err := a.withDB(ctx, func(*sql.DB, repomanager.RepositoryManager) error { return nil })
	if err != nil {
		_, _ = fmt.Fprintf(a.stdout, "Connection Failed: %v\n", err)
		return err
	}
	_, _ = fmt.Fprintln(a.stdout, "Connection Success!")
	return nil
}

func (a *App) dbMigrate(ctx context.Context) error {
	return a.withDB(ctx, func(db *sql.DB, rm repomanager.RepositoryManager) error {
		if err := rm.RunMigrations(ctx, db); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(a.stdout, "Migrations applied")
		return nil
	})
}

type findOptions struct {
	decrypt bool
}

func (a *App) newDBFindCmd() *cobra.Command {
	opts := &findOptions{}

	cmd := &cobra.Command{
		Use:   "find <reference-number>",
		Short: "Show the latest record for a reference number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dbFind(cmd.Context(), opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.decrypt, "decrypt", false, "Also decrypt and list the stored filenames")

	return cmd
}

func (a *App) dbFind(ctx context.Context, opts *findOptions, ref string) error {
	return a.withDB(ctx, func(db *sql.DB, rm repomanager.RepositoryManager) error {
		rec, err := rm.Manifests(db).FindByReferenceNumber(ctx, ref)
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("no record for %q", ref)
		}
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(a.stdout, "id:        %d\n", rec.ID)
		_, _ = fmt.Fprintf(a.stdout, "no_surat:  %s\n", rec.ReferenceNumber)
		_, _ = fmt.Fprintf(a.stdout, "path:      %s\n", rec.Root())
		_, _ = fmt.Fprintf(a.stdout, "created:   %s\n", rec.CreatedAt.UTC().Format(time.RFC3339))
		_, _ = fmt.Fprintf(a.stdout, "encrip:    %s\n", rec.EncryptedManifest)

		if !opts.decrypt {
			return nil
		}
		c, err := a.codec()
		if err != nil {
			return err
		}
		names, err := c.Decrypt(rec.EncryptedManifest)
		if err != nil {
			return err
		}
		for _, n := range names {
			_, _ = fmt.Fprintf(a.stdout, "file:      %s\n", n)
		}
		return nil
	})
}
