package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"uniscope/internal/gateway"
	"uniscope/internal/prefs"
)

var (
	profileName  string
	profileEmail string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View and edit your profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.sessions.Require()
		if err != nil {
			return fmt.Errorf("you need to sign in first: run `uniscope login`")
		}

		// Fetch fresh; fall back to the cached session copy offline.
		u, err := a.gw.Me(cmd.Context(), s.Token)
		if err != nil {
			u = &s.User
		} else if err := a.sessions.UpdateUser(*u); err != nil {
			return err
		}

		fmt.Printf("Name:  %s\n", u.Name)
		fmt.Printf("Email: %s\n", u.Email)
		fmt.Printf("Icon:  %s\n", a.prefs.Icon())
		if u.Photo != "" {
			fmt.Printf("Photo: %s\n", u.Photo)
		}
		return nil
	},
}

var profileEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit your name or email",
	RunE: func(cmd *cobra.Command, args []string) error {
		if profileName == "" && profileEmail == "" {
			return fmt.Errorf("nothing to change: pass --name and/or --email")
		}

		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.sessions.Require()
		if err != nil {
			return fmt.Errorf("you need to sign in first: run `uniscope login`")
		}

		update := gateway.UserUpdate{Name: s.User.Name, Email: s.User.Email}
		if profileName != "" {
			update.Name = profileName
		}
		if profileEmail != "" {
			update.Email = profileEmail
		}

		u, err := a.gw.UpdateMe(cmd.Context(), s.Token, update)
		if err != nil {
			return fmt.Errorf("profile update failed: %w", err)
		}
		if err := a.sessions.UpdateUser(*u); err != nil {
			return err
		}
		fmt.Println("Profile updated.")
		return nil
	},
}

var profileIconCmd = &cobra.Command{
	Use:   "icon [variant]",
	Short: "Show or set the profile icon",
	Long:  "Without an argument, lists the icon variants and marks the current one.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 0 {
			current := a.prefs.Icon()
			for _, v := range prefs.IconVariants() {
				marker := " "
				if v == current {
					marker = "*"
				}
				fmt.Printf("%s %s\n", marker, v)
			}
			return nil
		}

		choice := prefs.IconChoice(args[0])
		valid := false
		for _, v := range prefs.IconVariants() {
			if choice == v {
				valid = true
			}
		}
		if !valid {
			return fmt.Errorf("unknown icon %q, run `uniscope profile icon` to list variants", args[0])
		}
		a.prefs.SetIcon(choice)
		fmt.Printf("Icon set to %s.\n", choice)
		return nil
	},
}

var profilePhotoCmd = &cobra.Command{
	Use:   "photo",
	Short: "Manage your profile photo",
}

var profilePhotoUploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a profile photo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.sessions.Require()
		if err != nil {
			return fmt.Errorf("you need to sign in first: run `uniscope login`")
		}

		u, err := a.gw.UploadPhoto(cmd.Context(), s.Token, s.User.ID, filepath.Base(args[0]), f)
		if err != nil {
			return fmt.Errorf("photo upload failed: %w", err)
		}
		if err := a.sessions.UpdateUser(*u); err != nil {
			return err
		}
		fmt.Println("Photo uploaded.")
		return nil
	},
}

var profilePhotoDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove your profile photo",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.sessions.Require()
		if err != nil {
			return fmt.Errorf("you need to sign in first: run `uniscope login`")
		}

		u, err := a.gw.DeletePhoto(cmd.Context(), s.Token)
		if err != nil {
			return fmt.Errorf("photo removal failed: %w", err)
		}
		if err := a.sessions.UpdateUser(*u); err != nil {
			return err
		}
		fmt.Println("Photo removed.")
		return nil
	},
}

func init() {
	profileEditCmd.Flags().StringVar(&profileName, "name", "", "New display name")
	profileEditCmd.Flags().StringVar(&profileEmail, "email", "", "New email")

	profilePhotoCmd.AddCommand(profilePhotoUploadCmd)
	profilePhotoCmd.AddCommand(profilePhotoDeleteCmd)

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileEditCmd)
	profileCmd.AddCommand(profileIconCmd)
	profileCmd.AddCommand(profilePhotoCmd)
}
