package shell

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/afoley587/coding-challenges-2025/userdir/internal/store"
)

// MsgNoUsers is printed in place of an empty table.
const MsgNoUsers = "no users found"

// PrintUsers renders users as an aligned table.
func PrintUsers(w io.Writer, users []store.User) error {
	if len(users) == 0 {
		_, err := fmt.Fprintln(w, MsgNoUsers)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE\tADDRESS")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, dash(u.Phone), dash(u.Address))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
