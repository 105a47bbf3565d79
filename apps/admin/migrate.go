package main

import (
	"github.com/jmoiron/sqlx"

	"github.com/neuropeak/backend/storage/database"
)

var migrateRunFunc = func(db *sqlx.DB, command string, args ...string) error { // mockable
	return database.RunMigrationCommand(db, command, args...)
}

func (cli *commandLine) migrate(args []string) error {
	command := args[0]
	return migrateRunFunc(cli.db, command, args[1:]...)
}
