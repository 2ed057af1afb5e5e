package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit the journal owner's profile",
	}
	cmd.AddCommand(newProfileGetCmd(), newProfileSetCmd())
	return cmd
}

func newProfileGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := newClient(cmd).CurrentUser(cmd.Context())
			if err != nil {
				return fmt.Errorf("get profile: %w", err)
			}
			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(user)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "name: %s\n", user.Name)
			fmt.Fprintf(cmd.OutOrStdout(), "bio:  %s\n", user.Description)
			return nil
		},
	}
}

func newProfileSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update the profile (only the flags you pass change)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var name, description *string
			if cmd.Flags().Changed("name") {
				v, _ := cmd.Flags().GetString("name")
				name = &v
			}
			if cmd.Flags().Changed("bio") {
				v, _ := cmd.Flags().GetString("bio")
				description = &v
			}
			if name == nil && description == nil {
				return fmt.Errorf("nothing to update: pass --name and/or --bio")
			}
			if err := newClient(cmd).UpdateUser(cmd.Context(), name, description); err != nil {
				return fmt.Errorf("update profile: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "profile updated")
			return nil
		},
	}
	cmd.Flags().StringP("name", "n", "", "Display name")
	cmd.Flags().StringP("bio", "b", "", "Short bio")
	return cmd
}
