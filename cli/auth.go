package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakmart/shopfront/core"
)

// NewLoginCmd creates the "login" subcommand.
func NewLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login EMAIL",
		Short: "Authenticate against the storefront backend",
		Args:  cobra.ExactArgs(1),
		RunE:  runLogin,
	}
	cmd.Flags().StringP("password", "p", "", "Account password (prompted when omitted)")
	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	email := strings.TrimSpace(args[0])
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		fmt.Fprint(cmd.OutOrStdout(), "Password: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil {
			return exitError(exitValidation, "reading password: %v", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if email == "" || password == "" {
		return exitError(exitValidation, "email and password are required")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if !a.session.Login(ctx, email, password) {
		a.notifier.ShowError(a.session.State().Err)
		return exitError(exitAuth, "%s", a.session.State().Err)
	}
	a.notifier.ShowSuccess("Logged in successfully.")

	// The cart belongs to the authenticated user; load it right away so the
	// badge state is warm for the next command.
	a.cart.Load(ctx)

	state := a.session.State()
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", displayName(state.User, email))
	return nil
}

// NewLogoutCmd creates the "logout" subcommand.
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			a.session.Logout(cmd.Context())
			a.cart.Reset()
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

// NewWhoamiCmd creates the "whoami" subcommand.
func NewWhoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session identity",
		Args:  cobra.NoArgs,
		RunE:  runWhoami,
	}
	addOutputFlag(cmd)
	return cmd
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.requireAuth(cmd.Context()); err != nil {
		return err
	}

	state := a.session.State()
	if outputJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"authenticated": true,
			"user":          state.User,
		})
	}

	if state.User == nil {
		// Token survived a restore but the profile did not; fetch it fresh.
		if !a.session.RefreshProfile(cmd.Context()) {
			return exitError(exitRuntime, "%s", a.session.State().Err)
		}
		state = a.session.State()
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", displayName(state.User, "(unknown)"))
	return nil
}

// NewProfileCmd creates the "profile" command group.
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect and update the account profile",
	}
	cmd.AddCommand(newProfileShowCmd())
	cmd.AddCommand(newProfileUpdateCmd())
	return cmd
}

func newProfileShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Fetch and display the account profile",
		Args:  cobra.NoArgs,
		RunE:  runProfileShow,
	}
	addOutputFlag(cmd)
	return cmd
}

func runProfileShow(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if err := a.requireAuth(ctx); err != nil {
		return err
	}
	if !a.session.RefreshProfile(ctx) {
		return exitError(exitRuntime, "%s", a.session.State().Err)
	}

	user := a.session.State().User
	if outputJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), user)
	}
	printProfile(cmd, user)
	return nil
}

func newProfileUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update profile fields",
		Long:  "Update profile fields with repeatable --set key=value flags. The email address is immutable.",
		Args:  cobra.NoArgs,
		RunE:  runProfileUpdate,
	}
	cmd.Flags().StringArray("set", nil, "Field to update, as key=value (repeatable)")
	addOutputFlag(cmd)
	return cmd
}

func runProfileUpdate(cmd *cobra.Command, _ []string) error {
	pairs, _ := cmd.Flags().GetStringArray("set")
	if len(pairs) == 0 {
		return exitError(exitValidation, "at least one --set key=value is required")
	}

	fields := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return exitError(exitValidation, "invalid --set %q (expected key=value)", pair)
		}
		if strings.EqualFold(key, "email") {
			return exitError(exitValidation, "email cannot be updated")
		}
		fields[key] = value
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if err := a.requireAuth(ctx); err != nil {
		return err
	}
	if !a.session.UpdateProfile(ctx, fields) {
		a.notifier.ShowError(a.session.State().Err)
		return exitError(exitRuntime, "%s", a.session.State().Err)
	}
	a.notifier.ShowSuccess("Profile updated successfully.")

	user := a.session.State().User
	if outputJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), user)
	}
	printProfile(cmd, user)
	return nil
}

func printProfile(cmd *cobra.Command, user core.UserRecord) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Email:   %s\n", user.Email())
	if name := user.Name(); name != "" {
		fmt.Fprintf(out, "Name:    %s\n", name)
	}
	if phone := core.StringField(user, "phone"); phone != "" {
		fmt.Fprintf(out, "Phone:   %s\n", phone)
	}
	if address := core.StringField(user, "address"); address != "" {
		fmt.Fprintf(out, "Address: %s\n", address)
	}
}

func displayName(user core.UserRecord, fallback string) string {
	if name := user.Name(); name != "" {
		return fmt.Sprintf("%s <%s>", name, user.Email())
	}
	if email := user.Email(); email != "" {
		return email
	}
	return fallback
}
