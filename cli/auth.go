package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/revelare/revelare-web/cli/config"
	"github.com/revelare/revelare-web/internal/upstream"
	"github.com/revelare/revelare-web/pkg/models"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	authName  string
	authEmail string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Sign up, sign in and sign out of your Revelare account.`,
}

var authSignUpCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if authName == "" || authEmail == "" {
			return errors.New("name and email are required (--name, --email)")
		}
		in := bufio.NewReader(cmd.InOrStdin())
		password, err := readPassword(cmd, in, "Password: ")
		if err != nil {
			return err
		}
		again, err := readPassword(cmd, in, "Confirm password: ")
		if err != nil {
			return err
		}
		if password != again {
			return errors.New("Passwords do not match!")
		}
		if password == "" {
			return errors.New("Please fill in all fields")
		}

		_, err = newClient().SignUp(cmd.Context(), models.SignUpRequest{Name: authName, Email: authEmail, Password: password})
		if err != nil {
			return fmt.Errorf("registration failed: %w", explain(err))
		}
		printSuccess(cmd.OutOrStdout(), "Registration successful!")
		fmt.Fprintln(cmd.OutOrStdout(), "Sign in with: revelare auth signin --email "+authEmail)
		return nil
	},
}

var authSignInCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign in and store the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if authEmail == "" {
			return errors.New("email is required (--email)")
		}
		if _, err := config.Load(); err != nil {
			return fmt.Errorf("%w (run: revelare init)", err)
		}
		password, err := readPassword(cmd, bufio.NewReader(cmd.InOrStdin()), "Password: ")
		if err != nil {
			return err
		}
		if password == "" {
			return errors.New("Please fill in all fields")
		}

		resp, err := newClient().SignIn(cmd.Context(), models.SignInRequest{Email: authEmail, Password: password})
		if err != nil {
			if errors.Is(err, upstream.ErrInvalidCredentials) {
				return upstream.ErrInvalidCredentials
			}
			return fmt.Errorf("sign in failed: %w", err)
		}
		s := resp.Session()
		if err := config.UpdateUserSession(s); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Signed in as %s (%s)", s.Name, s.Role))
		return nil
	},
}

var authSignOutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ClearUserToken(); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("%w (run: revelare init)", err)
		}
		s := cfg.Session()
		if !s.IsAuthenticated() {
			fmt.Fprintln(out, mutedStyle.Render("Not signed in"))
			return nil
		}
		fmt.Fprintln(out, titleStyle.Render(s.Name))
		fmt.Fprintf(out, "  Email: %s\n", s.Email)
		fmt.Fprintf(out, "  Role:  %s\n", s.Role)
		fmt.Fprintf(out, "  ID:    %s\n", s.ID)
		return nil
	},
}

// readPassword reads without echo on a terminal and falls back to a plain
// line for piped input.
func readPassword(cmd *cobra.Command, in *bufio.Reader, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	authSignUpCmd.Flags().StringVar(&authName, "name", "", "display name")
	authSignUpCmd.Flags().StringVar(&authEmail, "email", "", "email address")
	authSignInCmd.Flags().StringVar(&authEmail, "email", "", "email address")

	authCmd.AddCommand(authSignUpCmd)
	authCmd.AddCommand(authSignInCmd)
	authCmd.AddCommand(authSignOutCmd)
	authCmd.AddCommand(authStatusCmd)
}
