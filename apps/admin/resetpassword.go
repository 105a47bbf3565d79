package main

import (
	"context"

	"github.com/neuropeak/backend/core/user"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()

	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	uu := user.UpdateUser{Password: pwd, PasswordConfirm: pwd}
	if err = uu.Validate(ctx, cli.validate, usr, cli.usrSvc); err != nil {
		return err
	}
	if _, err = cli.usrSvc.Update(ctx, usr.ID, uu); err != nil {
		return err
	}
	return nil
}
