package admin

import (
	"fmt"

	"github.com/dmitrijs2005/filedo/internal/storage"
	"github.com/spf13/cobra"
)

func (a *App) newLocateCmd() *cobra.Command {
	var roots []string

	cmd := &cobra.Command{
		Use:   "locate <filename>...",
		Short: "Show which storage root holds each file",
		Long: `Search the storage roots in order and print where each file was found.

Examples:
  filedo-admin locate r1.txt r2.txt
  filedo-admin locate --root /files/surat/ --root /files2/surat/ f.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("root") {
				roots = a.roots
			}
			return a.locate(args, roots)
		},
	}

	cmd.Flags().StringSliceVar(&roots, "root", nil, "Storage root to search, repeatable (default: SEARCH_PATHS)")

	return cmd
}

func (a *App) locate(names, roots []string) error {
	res := storage.Locate(names, roots)

	for _, f := range res.Found {
		_, _ = fmt.Fprintf(a.stdout, "%s\t%s\n", f.Name, f.Path)
	}
	for _, m := range res.Missing {
		_, _ = fmt.Fprintf(a.stdout, "%s\tnot found\n", m)
	}

	if res.Count() == 0 {
		return fmt.Errorf("none of %d files found in %d roots", len(names), len(roots))
	}
	return nil
}
