// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, and resolving bearer tokens
// back to accounts.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/avolkov/filevault/internal/common"
	"github.com/avolkov/filevault/internal/server/auth"
	"github.com/avolkov/filevault/internal/server/models"
	"github.com/avolkov/filevault/internal/server/repositories/users"
)

// Token bundles an issued access token with its type tag.
type Token struct {
	AccessToken string
	TokenType   string
}

// UserService provides authentication-related operations:
// - Register: create users
// - Login: verify credentials and mint a bearer token
// - Authenticate: resolve a presented token to an existing account
type UserService struct {
	repo   users.Repository
	hasher auth.Hasher
	issuer *auth.TokenIssuer

	// dummyHash is verified on the user-not-found branch of Login so both
	// failure branches do comparable work and stay indistinguishable.
	dummyHash string
}

// NewUserService constructs a UserService from its collaborators.
func NewUserService(repo users.Repository, hasher auth.Hasher, issuer *auth.TokenIssuer) (*UserService, error) {
	pad, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, err
	}
	dummy, err := hasher.Hash(pad)
	if err != nil {
		return nil, err
	}
	return &UserService{repo: repo, hasher: hasher, issuer: issuer, dummyHash: dummy}, nil
}

// Register creates a new user with the given username and password.
// Empty username or password yields common.ErrInvalidInput; a taken username
// yields common.ErrorAlreadyExists. No token is issued at registration.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, common.ErrInvalidInput
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user, err := s.repo.Create(ctx, &models.User{UserName: username, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Login verifies the credentials and, on success, returns a bearer token.
// A missing user and a wrong password both return common.ErrorUnauthorized;
// nothing about the failure distinguishes the two cases.
func (s *UserService) Login(ctx context.Context, username, password string) (*Token, error) {
	user, err := s.repo.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}

	access, err := s.issuer.Issue(user.UserName, 0)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &Token{AccessToken: access, TokenType: "bearer"}, nil
}

// Authenticate resolves a raw bearer token to the account it names. The
// subject is re-checked against the user store, so a token for a since-deleted
// account is rejected even though its signature is still valid. Every failure
// collapses to common.ErrorUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, rawToken string) (*models.User, error) {
	subject, err := s.issuer.Verify(rawToken)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repo.GetUserByLogin(ctx, subject)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	return user, nil
}
