package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/form"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/shell"
	"github.com/afoley587/coding-challenges-2025/userdir/internal/store"
)

var (
	// create/edit fields
	userName    string
	userEmail   string
	userPhone   string
	userAddress string

	// delete confirmation
	assumeYes bool
)

// Root users command
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "One-shot directory operations",
	Long:  "Commands for listing, searching, creating, editing and deleting users.",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDirectory(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer d.Close()
		return shell.PrintUsers(cmd.OutOrStdout(), d.Visible())
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search users by name prefix",
	Long:  "Search users whose name starts with term (case-sensitive).  If the store cannot run the query, users whose name or email contains term, ignoring case, are shown instead.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDirectory(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer d.Close()
		if err := d.Search(cmd.Context(), args[0]); err != nil {
			return err
		}
		return shell.PrintUsers(cmd.OutOrStdout(), d.Visible())
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDirectory(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		f, err := d.BeginCreate()
		if err != nil {
			return err
		}
		f.SetDraft(store.Fields{Name: userName, Email: userEmail, Phone: userPhone, Address: userAddress})
		if err := submit(cmd.Context(), f); err != nil {
			return err
		}
		printUser(cmd, "Created", d.Users(), f.Created())
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a user; only the given flags change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDirectory(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		f, err := d.BeginEdit(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if msg := f.Message(); msg != "" {
			return errors.New(msg)
		}
		flags := cmd.Flags()
		for flag, value := range map[string]string{
			store.FieldName: userName, store.FieldEmail: userEmail,
			store.FieldPhone: userPhone, store.FieldAddress: userAddress,
		} {
			if flags.Changed(flag) {
				if err := f.Set(flag, value); err != nil {
					return err
				}
			}
		}
		if err := submit(cmd.Context(), f); err != nil {
			return err
		}
		printUser(cmd, "Updated", d.Users(), args[0])
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDirectory(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.RequestDelete(args[0]); err != nil {
			return err
		}
		if !assumeYes && !confirm(cmd, fmt.Sprintf("Delete user %s?", args[0])) {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
			return d.CancelDelete()
		}
		if err := d.ConfirmDelete(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %s\n", args[0])
		return nil
	},
}

// submit runs the form and turns its user-visible message into the error.
func submit(ctx context.Context, f *form.Form) error {
	if err := f.Submit(ctx); err != nil {
		var ve *form.ValidationError
		if errors.As(err, &ve) {
			return ve
		}
		return fmt.Errorf("%s: %w", f.Message(), err)
	}
	return nil
}

// printUser reports the record with id as reloaded after a write.
func printUser(cmd *cobra.Command, verb string, users []store.User, id string) {
	for _, u := range users {
		if u.ID == id {
			fmt.Fprintf(cmd.OutOrStdout(), "%s user: %v\n", verb, u)
			return
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s user %s\n", verb, id)
}

func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func init() {
	for _, c := range []*cobra.Command{createCmd, editCmd} {
		c.Flags().StringVarP(&userName, store.FieldName, "n", "", "Name of the user")
		c.Flags().StringVarP(&userEmail, store.FieldEmail, "e", "", "Email of the user")
		c.Flags().StringVarP(&userPhone, store.FieldPhone, "p", "", "Phone number of the user")
		c.Flags().StringVar(&userAddress, store.FieldAddress, "", "Postal address of the user")
	}

	deleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Delete without asking for confirmation")

	usersCmd.AddCommand(listCmd, searchCmd, createCmd, editCmd, deleteCmd)
	rootCmd.AddCommand(usersCmd)
}
