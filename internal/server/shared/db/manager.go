// Package db wires the user store to its concrete backend. The manager owns
// the database handle (when there is one) and hands out repositories.
package db

import (
	"context"
	"database/sql"

	"github.com/avolkov/filevault/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Users() users.Repository
	Close() error
}
