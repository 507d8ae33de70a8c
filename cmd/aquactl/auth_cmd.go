package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"aquaflow-client/internal/guard"
	"github.com/spf13/cobra"
)

func newLoginCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "login <identifier>",
		Short: "Authenticate and store the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword()
			if err != nil {
				return err
			}
			user, err := (*a).auth.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s %s (%s). Home view: %s\n",
				user.FirstName, user.LastName, user.Role, guard.HomePath(user.Role))
			return nil
		},
	}
}

func newLogoutCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and clear local state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := (*a).auth.Logout(cmd.Context()); err != nil {
				// Local state is already cleared; the server just
				// didn't hear about it.
				fmt.Println("Logged out locally; server could not be reached.")
				return nil
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !(*a).validator.Validate(cmd.Context()) {
				fmt.Println("Not logged in.")
				return nil
			}
			user, ok := (*a).creds.User()
			if !ok {
				fmt.Println("Not logged in.")
				return nil
			}
			fmt.Printf("%s %s <%s> role=%s\n", user.FirstName, user.LastName, user.Email, user.Role)
			return nil
		},
	}
}

func newAddressesCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "addresses",
		Short: "List saved delivery addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addresses, err := (*a).auth.Addresses(cmd.Context())
			if err != nil {
				return err
			}
			if len(addresses) == 0 {
				fmt.Println("No saved addresses.")
				return nil
			}
			for _, addr := range addresses {
				marker := " "
				if addr.IsDefault {
					marker = "*"
				}
				fmt.Printf("%s #%d  %-12s %s\n", marker, addr.ID, addr.Label, addr.Address)
			}
			return nil
		},
	}
}

func readPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
