package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atinyakov/GophTasks/internal/client/form"
	"github.com/atinyakov/GophTasks/internal/client/strength"
	"github.com/atinyakov/GophTasks/internal/client/tui"
)

func (a *app) signUpCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := form.NewSignUpForm()
			if err := a.fill(f.Username, username, "Username: "); err != nil {
				return err
			}
			password, err := a.prompt.Secret("Password: ")
			if err != nil {
				return err
			}
			f.Password.SetValue(password)
			fmt.Fprintln(a.streams.Err, "Strength:", tui.StrengthMeter(f.Strength()))

			confirm, err := a.prompt.Secret("Confirm password: ")
			if err != nil {
				return err
			}
			f.ConfirmPassword.SetValue(confirm)

			if err := a.submit(&f.Form); err != nil {
				return err
			}
			c, err := a.core()
			if err != nil {
				return err
			}
			if err := c.Session.SignUp(cmd.Context(), f.Credentials()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %s created, sign in with `gophtasks signin`\n", f.Username.Value())
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account name (prompted when empty)")
	return cmd
}

func (a *app) signInCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := form.NewSignInForm()
			if err := a.fill(f.Username, username, "Username: "); err != nil {
				return err
			}
			password, err := a.prompt.Secret("Password: ")
			if err != nil {
				return err
			}
			f.Password.SetValue(password)

			if err := a.submit(&f.Form); err != nil {
				return err
			}
			c, err := a.core()
			if err != nil {
				return err
			}
			s, err := c.Session.SignIn(cmd.Context(), f.Credentials())
			if err != nil {
				return err
			}
			if !s.IsAuthenticated {
				return errors.New("the service returned an unreadable token, try again later")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", s.CurrentUser.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account name (prompted when empty)")
	return cmd
}

func (a *app) signOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.core()
			if err != nil {
				return err
			}
			c.Session.SignOut()
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func (a *app) whoAmICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.signedIn()
			if err != nil {
				return err
			}
			u := c.Session.CurrentUser()
			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %s)\n", u.Username, u.ID)
			return nil
		},
	}
}

func (a *app) strengthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strength [password]",
		Short: "Score a candidate password",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				var err error
				if password, err = a.prompt.Secret("Password: "); err != nil {
					return err
				}
			}

			as := strength.Evaluate(password)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%d/%d)\n", tui.StrengthMeter(as), as.Score, strength.MaxScore)
			for _, c := range []struct {
				name string
				ok   bool
			}{
				{"at least 8 characters", as.Criteria.Length},
				{"uppercase letter", as.Criteria.Uppercase},
				{"lowercase letter", as.Criteria.Lowercase},
				{"number", as.Criteria.Number},
				{"special character", as.Criteria.Special},
			} {
				mark := "-"
				if c.ok {
					mark = "+"
				}
				fmt.Fprintf(out, "  %s %s\n", mark, c.name)
			}
			return nil
		},
	}
}

// fill sets field from value, prompting with label when value is empty.
func (a *app) fill(field *form.Field, value, label string) error {
	if value == "" {
		var err error
		if value, err = a.prompt.Line(label); err != nil {
			return err
		}
	}
	field.SetValue(value)
	field.Blur()
	return nil
}

// submit prints every invalid field and fails when there is one.
func (a *app) submit(f *form.Form) error {
	ok, errs := f.Submit()
	if ok {
		return nil
	}
	for _, field := range f.Fields {
		if msg, bad := errs[field.Name]; bad {
			fmt.Fprintf(a.streams.Err, "  %s: %s\n", field.Label, msg)
		}
	}
	return errors.New("invalid input")
}
