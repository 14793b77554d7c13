// Package users contains the credential-record store. The Repository
// interface hides the concrete backend: PostgreSQL for durable deployments,
// an in-memory map for development and tests.
package users

import (
	"context"

	"github.com/avolkov/filevault/internal/server/models"
)

type Repository interface {
	// Create inserts a new credential record. Returns
	// common.ErrorAlreadyExists when the username is taken; the uniqueness
	// check and insert are atomic.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetUserByLogin returns the record for the exact (case-sensitive)
	// username, or common.ErrorNotFound.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}
