package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"uniscope/internal/session"
)

var (
	authEmail    string
	authPassword string
	authName     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := promptIfEmpty(authEmail, "Email: ")
		if err != nil {
			return err
		}
		password, err := promptIfEmpty(authPassword, "Password: ")
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		auth, err := a.gw.Login(cmd.Context(), email, password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		if err := a.sessions.Save(auth.Token, auth.User); err != nil {
			return err
		}
		fmt.Printf("Signed in as %s.\n", auth.User.Name)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := promptIfEmpty(authName, "Name: ")
		if err != nil {
			return err
		}
		email, err := promptIfEmpty(authEmail, "Email: ")
		if err != nil {
			return err
		}
		password, err := promptIfEmpty(authPassword, "Password: ")
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		auth, err := a.gw.Register(cmd.Context(), name, email, password)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}
		if err := a.sessions.Save(auth.Token, auth.User); err != nil {
			return err
		}
		fmt.Printf("Welcome, %s. You are signed in.\n", auth.User.Name)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the local session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.sessions.Current() == nil {
			fmt.Println("Not signed in.")
			return nil
		}
		if err := a.sessions.Clear(); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.sessions.Require()
		if err == session.ErrNotAuthenticated {
			fmt.Println("Not signed in.")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s>\n", s.User.Name, s.User.Email)
		return nil
	},
}

// promptIfEmpty returns the flag value, or reads one line from stdin.
func promptIfEmpty(value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("empty input")
	}
	return line, nil
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Account email")
		c.Flags().StringVar(&authPassword, "password", "", "Account password (prompted when omitted)")
	}
	registerCmd.Flags().StringVar(&authName, "name", "", "Display name")
}
