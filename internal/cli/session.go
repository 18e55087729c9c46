package cli

import (
	"context"
	"flag"
	"strings"

	"github.com/google/subcommands"

	"finance-dashboard/internal/app"
	"finance-dashboard/internal/domain"
	"finance-dashboard/internal/util"
)

type loginCmd struct {
	env   *Env
	email string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "sign in with email and password" }
func (*loginCmd) Usage() string {
	return `finctl login -email <email>

  Prompts for the password (or reads it from stdin) and stores the session.
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "Account email.")
}

func (c *loginCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.run(ctx, func(a *app.App) error {
		if c.email == "" {
			return usagef("-email is required")
		}
		password, err := c.env.readPassword("Password: ")
		if err != nil {
			return err
		}
		if err := a.Session.SignIn(ctx, strings.TrimSpace(c.email), password); err != nil {
			return err
		}
		c.env.printf("Signed in as %s\n", a.Session.Current().Email)
		return nil
	})
}

type signupCmd struct {
	env   *Env
	email string
}

func (*signupCmd) Name() string     { return "signup" }
func (*signupCmd) Synopsis() string { return "create an account and sign in" }
func (*signupCmd) Usage() string {
	return `finctl signup -email <email>
`
}

func (c *signupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "Account email.")
}

func (c *signupCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.run(ctx, func(a *app.App) error {
		email := strings.TrimSpace(c.email)
		if err := util.ValidateEmail(email); err != nil {
			return usagef("%v", err)
		}
		password, err := c.env.readPassword("Password: ")
		if err != nil {
			return err
		}
		if err := util.ValidatePassword(password); err != nil {
			return usagef("%v", err)
		}
		if err := a.Session.SignUp(ctx, email, password); err != nil {
			return err
		}
		c.env.printf("Account created, signed in as %s\n", email)
		return nil
	})
}

type demoCmd struct {
	env   *Env
	email string
}

func (*demoCmd) Name() string     { return "demo" }
func (*demoCmd) Synopsis() string { return "start a local demo session" }
func (*demoCmd) Usage() string {
	return `finctl demo [-email <email>]
`
}

func (c *demoCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "Email shown for the demo identity.")
}

func (c *demoCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.run(ctx, func(a *app.App) error {
		sess := a.Session.SignInDemo(ctx, strings.TrimSpace(c.email))
		c.env.printf("Demo session started for %s\n", sess.Email)
		return nil
	})
}

type logoutCmd struct{ env *Env }

func (*logoutCmd) Name() string             { return "logout" }
func (*logoutCmd) Synopsis() string         { return "sign out and forget the stored session" }
func (*logoutCmd) Usage() string            { return "finctl logout\n" }
func (*logoutCmd) SetFlags(_ *flag.FlagSet) {}

func (c *logoutCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.run(ctx, func(a *app.App) error {
		// 本地状态总会被清空，远端失败只提示
		if err := a.Session.SignOut(ctx); err != nil {
			c.env.errorf("Warning: %v\n", err)
		}
		c.env.printf("Signed out\n")
		return nil
	})
}

type resetCmd struct {
	env   *Env
	email string
	token string
}

func (*resetCmd) Name() string     { return "reset" }
func (*resetCmd) Synopsis() string { return "request or confirm a password reset" }
func (*resetCmd) Usage() string {
	return `finctl reset -email <email>
finctl reset -token <token>

  With -email a reset code is sent to the address. With -token the new
  password is read like in login and the code is redeemed. Neither signs in.
`
}

func (c *resetCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "Send a reset code to this email.")
	f.StringVar(&c.token, "token", "", "Reset code received by email.")
}

func (c *resetCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.run(ctx, func(a *app.App) error {
		if (c.email == "") == (c.token == "") {
			return usagef("exactly one of -email or -token is required")
		}
		if c.email != "" {
			email := strings.TrimSpace(c.email)
			if err := util.ValidateEmail(email); err != nil {
				return usagef("%v", err)
			}
			if err := a.Session.RequestPasswordReset(ctx, email); err != nil {
				return err
			}
			c.env.printf("If %s has an account, a reset code is on its way\n", email)
			return nil
		}

		password, err := c.env.readPassword("New password: ")
		if err != nil {
			return err
		}
		if err := util.ValidatePassword(password); err != nil {
			return usagef("%v", err)
		}
		if err := a.Session.ConfirmPasswordReset(ctx, strings.TrimSpace(c.token), password); err != nil {
			return err
		}
		c.env.printf("Password changed, sign in with `finctl login`\n")
		return nil
	})
}

type whoamiCmd struct{ env *Env }

func (*whoamiCmd) Name() string             { return "whoami" }
func (*whoamiCmd) Synopsis() string         { return "show the current session and profile" }
func (*whoamiCmd) Usage() string            { return "finctl whoami\n" }
func (*whoamiCmd) SetFlags(_ *flag.FlagSet) {}

func (c *whoamiCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.run(ctx, func(a *app.App) error {
		sess := a.Session.Current()
		if sess == nil {
			c.env.printf("Not signed in (%s mode)\n", a.Source.Name())
			return nil
		}
		c.env.printf("%s %s (%s mode)\n", heading.Sprint("Session:"), sess.Email, a.Source.Name())
		if p := a.Session.Profile(); p != nil {
			c.env.printf("Name:     %s\n", p.FullName)
			c.env.printf("Currency: %s\n", p.DefaultCurrency)
			c.env.printf("Theme:    %s\n", a.Theme.Name())
			if p.AvatarURL != "" {
				c.env.printf("Avatar:   %s\n", p.AvatarURL)
			}
		}
		return nil
	})
}

type profileCmd struct {
	env      *Env
	name     string
	currency string
	theme    string
	email    string
	password bool
}

func (*profileCmd) Name() string     { return "profile" }
func (*profileCmd) Synopsis() string { return "update the profile of the current session" }
func (*profileCmd) Usage() string {
	return `finctl profile [-name <full name>] [-currency <code>] [-theme light|dark] [-email <email>] [-password]
`
}

func (c *profileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Full name.")
	f.StringVar(&c.currency, "currency", "", "Default currency code, e.g. BRL.")
	f.StringVar(&c.theme, "theme", "", "Theme preference: light or dark.")
	f.StringVar(&c.email, "email", "", "New login email.")
	f.BoolVar(&c.password, "password", false, "Prompt for a new password.")
}

func (c *profileCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.env.run(ctx, func(a *app.App) error {
		if err := requireSession(a); err != nil {
			return err
		}

		var upd domain.ProfileUpdate
		if c.name != "" {
			upd.FullName = &c.name
		}
		if c.currency != "" {
			cur := strings.ToUpper(c.currency)
			upd.DefaultCurrency = &cur
		}
		if c.theme != "" {
			if c.theme != domain.ThemeLight && c.theme != domain.ThemeDark {
				return usagef("-theme must be light or dark")
			}
			upd.ThemePreference = &c.theme
		}
		if upd.Empty() && c.email == "" && !c.password {
			return usagef("nothing to update")
		}

		if !upd.Empty() {
			if err := a.Session.UpdateProfile(ctx, upd); err != nil {
				return err
			}
		}
		if c.email != "" {
			if err := util.ValidateEmail(c.email); err != nil {
				return usagef("%v", err)
			}
			if err := a.Session.UpdateEmail(ctx, c.email); err != nil {
				return err
			}
		}
		if c.password {
			password, err := c.env.readPassword("New password: ")
			if err != nil {
				return err
			}
			if err := util.ValidatePassword(password); err != nil {
				return usagef("%v", err)
			}
			if err := a.Session.UpdatePassword(ctx, password); err != nil {
				return err
			}
		}
		c.env.printf("Profile updated\n")
		return nil
	})
}
