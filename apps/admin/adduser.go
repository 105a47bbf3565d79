package main

import (
	"context"

	"github.com/neuropeak/backend/core/user"
)

// addUser creates a user account; with superuser set it mints a superuser,
// the one account kind open registration never produces.
func (cli *commandLine) addUser(name, email, pwd string, superuser bool) error {
	ctx := context.Background()

	nu := user.NewUser{
		Name:            name,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		IsSuperuser:     superuser,
	}
	if err := nu.Validate(ctx, cli.validate, cli.usrSvc); err != nil {
		return err
	}

	if _, err := cli.usrSvc.Create(ctx, nu); err != nil {
		return err
	}
	return nil
}
