package admin

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/filedo/internal/cryptox"
	"github.com/spf13/cobra"
)

func (a *App) newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new secret key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(a.stdout, cryptox.GenerateKey())
			return err
		},
	}
}

type encryptOptions struct {
	legacy  bool
	baseURL string
}

func (a *App) newEncryptCmd() *cobra.Command {
	opts := &encryptOptions{}

	cmd := &cobra.Command{
		Use:   "encrypt <filename>...",
		Short: "Seal filenames into a retrieval key",
		Long: `Seal one or more stored filenames into a retrieval key.

Examples:
  # Key for two files
  filedo-admin encrypt r1.txt r2.txt

  # Single-filename key in the older format, with a ready retrieval URL
  filedo-admin encrypt --legacy --base-url http://localhost:5000 f.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.encrypt(opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.legacy, "legacy", false, "Seal a single bare filename")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "Also print the retrieval URL under this base")

	return cmd
}

func (a *App) encrypt(opts *encryptOptions, names []string) error {
	if opts.legacy && len(names) != 1 {
		return fmt.Errorf("--legacy takes exactly one filename, got %d", len(names))
	}

	c, err := a.codec()
	if err != nil {
		return err
	}

	var token string
	if opts.legacy {
		token, err = c.EncryptLegacy(names[0])
	} else {
		token, err = c.Encrypt(names)
	}
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(a.stdout, token)
	if opts.baseURL != "" {
		_, _ = fmt.Fprintf(a.stdout, "%s/retrieve?key=%s\n", strings.TrimRight(opts.baseURL, "/"), url.QueryEscape(token))
	}
	return nil
}

func (a *App) newDecryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decrypt <key>",
		Short: "Open a retrieval key and print its filenames",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.codec()
			if err != nil {
				return err
			}
			names, err := c.Decrypt(args[0])
			if err != nil {
				return err
			}
			for _, n := range names {
				_, _ = fmt.Fprintln(a.stdout, n)
			}
			return nil
		},
	}
}
