package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ibcoder/portfolio/internal/api"
	"github.com/ibcoder/portfolio/internal/domain"
	"github.com/spf13/cobra"
)

var (
	usersOutputFormat string

	createUsername   string
	createEmail      string
	createPassword   string
	createNewsletter bool
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Inspect and create user accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	Long: `List every user account.

Output formats:
  table - Human-readable table format (default)
  json  - The same shape as GET /api/users`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		svc, err := a.Accounts()
		if err != nil {
			return err
		}
		users, err := svc.ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		return writeUsers(cmd.OutOrStdout(), usersOutputFormat, users)
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	Example: `  portfolio users create --username ada --email ada@gmail.com --password 'correct horse'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		svc, err := a.Accounts()
		if err != nil {
			return err
		}
		user, err := svc.CreateUser(cmd.Context(), api.SignUpRequest{
			Username:          createUsername,
			Email:             createEmail,
			Password:          createPassword,
			SignForNewsLetter: createNewsletter,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", user.Username, user.ID)
		return nil
	},
}

func writeUsers(w io.Writer, format string, users []domain.User) error {
	switch format {
	case "json":
		if users == nil {
			users = []domain.User{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"users": users})
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tVERIFIED\tNEWSLETTER")
		for _, u := range users {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\n", u.ID, u.Username, u.Email, u.EmailVerified, u.NewsletterOptIn)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q (want table or json)", format)
	}
}

func init() {
	usersListCmd.Flags().StringVarP(&usersOutputFormat, "format", "f", "table", "Output format: table or json")

	usersCreateCmd.Flags().StringVar(&createUsername, "username", "", "Username (required)")
	usersCreateCmd.Flags().StringVar(&createEmail, "email", "", "Email address (required)")
	usersCreateCmd.Flags().StringVar(&createPassword, "password", "", "Password (required)")
	usersCreateCmd.Flags().BoolVar(&createNewsletter, "newsletter", false, "Sign up for the newsletter")
	for _, name := range []string{"username", "email", "password"} {
		_ = usersCreateCmd.MarkFlagRequired(name)
	}

	usersCmd.AddCommand(usersListCmd, usersCreateCmd)
	rootCmd.AddCommand(usersCmd)
}
