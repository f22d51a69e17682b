package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/trezcool/masomo/core/user"
)

func (cli *commandLine) login(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("login")
	email := fs.String("email", "", "The user's email. The password will be prompted next.")
	if err := parse(fs, args, "email"); err != nil {
		return err
	}

	pwd, err := cli.readPassword()
	if err != nil {
		return err
	}
	if pwd == "" {
		fs.Usage()
		return errHelp
	}

	sess, err := cli.client.Login(ctx, user.Credentials{Email: *email, Password: pwd})
	if err != nil {
		return err
	}
	if err = cli.saveToken(sess.Token); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Logged in as %s <%s>\n", sess.User.Name, sess.User.Email)
	return nil
}

func (cli *commandLine) logout() error {
	cli.client.Logout()
	if err := cli.removeToken(); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Logged out")
	return nil
}

func (cli *commandLine) me(ctx context.Context) error {
	usr, err := cli.client.Me(ctx)
	if err != nil {
		return err
	}
	w := cli.table("ID", "NAME", "EMAIL", "ROLES")
	row(w, usr.ID, usr.Name, usr.Email, strings.Join(usr.Roles, ","))
	return w.Flush()
}
