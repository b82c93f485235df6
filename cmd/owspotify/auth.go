package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ThePyrotechnic/overwatch-spotify/internal/config"
	"github.com/ThePyrotechnic/overwatch-spotify/internal/credentials"
	"github.com/ThePyrotechnic/overwatch-spotify/internal/spotify"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize the application with Spotify",
	Long: `auth performs the one-time interactive OAuth authorization.

On first run it prompts for the application client id and secret (from
the Spotify developer dashboard; the redirect URI configured there must
match the one in the config file) and saves them to .env. It then opens
the authorization-code flow and stores the resulting refresh token, after
which the daemon can run unattended.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAuth(cmd)
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command) error {
	cfg, err := config.Load(configPath(cmd))
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	in := cmd.InOrStdin()
	out := cmd.OutOrStdout()

	store := credentials.NewFileStore(logger)
	creds, err := store.Load()
	if err != nil {
		return err
	}

	if creds.ClientID == "" || creds.ClientSecret == "" {
		id, secret, err := promptClient(in, out)
		if err != nil {
			return err
		}
		if err := store.SaveClient(id, secret); err != nil {
			return err
		}
	}

	client, err := spotify.New(logger, store)
	if err != nil {
		return err
	}

	if err := client.Authorize(cmd.Context(), in, out, cfg.RedirectURI); err != nil {
		return err
	}

	fmt.Fprintln(out, "Authorization complete. Start the daemon with `owspotify run`.")
	return nil
}

func promptClient(in io.Reader, out io.Writer) (id, secret string, err error) {
	scanner := bufio.NewScanner(in)

	fmt.Fprint(out, "Enter your Spotify application's Client ID: ")
	id, err = readLine(scanner)
	if err != nil {
		return "", "", err
	}

	fmt.Fprint(out, "Enter your Spotify application's Client Secret: ")
	secret, err = readLine(scanner)
	if err != nil {
		return "", "", err
	}

	if id == "" || secret == "" {
		return "", "", fmt.Errorf("client id and secret must not be empty")
	}
	return id, secret, nil
}

func readLine(scanner *bufio.Scanner) (string, error) {
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(scanner.Text()), nil
}
