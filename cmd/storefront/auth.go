package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joss/storefront/internal/render"
	"github.com/joss/storefront/internal/session"
)

func loginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the catalog API",
		Long:  "Sign in and keep the session on this machine. Prompts for the password when -p is not given.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			pw, err := credentials(username, password, cmd.Flags().Changed("password"), readPassword)
			if err != nil {
				exitOnError(err)
			}

			err = app.sessions.Login(ctx(), username, pw)
			switch {
			case errors.Is(err, session.ErrMissingCredentials):
				exitOnError(fmt.Errorf("%w (use -u and -p)", err))
			case err != nil:
				exitOnError(err)
			}

			if asJSON {
				printJSON(map[string]any{"logged_in": true, "username": username})
				return
			}
			render.Stdout().Success("Logged in as %s", username)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted if omitted)")
	return cmd
}

// credentials returns the password to log in with. It prompts only once a
// username is known, so a missing -u fails before any typing.
func credentials(username, password string, given bool, prompt func(string) (string, error)) (string, error) {
	if strings.TrimSpace(username) == "" {
		return "", fmt.Errorf("%w (use -u)", session.ErrMissingCredentials)
	}
	if given {
		return password, nil
	}
	p, err := prompt("Password: ")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return p, nil
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := app.sessions.Logout(ctx()); err != nil {
				render.Stderr().Warn("session cleared for this run but not removed from disk: %v", err)
				return
			}
			if !asJSON {
				render.Stdout().Success("Logged out")
			}
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			user, ok := app.sessions.User()
			if asJSON {
				out := map[string]any{"logged_in": ok, "username": user.Username, "api": app.api.BaseURL()}
				if claims, err := user.Claims(); ok && err == nil {
					out["subject"] = claims.Subject
				}
				printJSON(out)
				return
			}
			fmt.Print(renderer().Session(user, ok, app.api.BaseURL()))
		},
	}
}
