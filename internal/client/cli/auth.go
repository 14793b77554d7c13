package cli

import (
	"context"
	"fmt"
)

// Register prompts for credentials and creates an account on the server.
func (a *App) Register(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	if err := a.client.Register(ctx, userName, password); err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	fmt.Fprintln(a.out, "Success! You can now log in.")
	return nil
}

// Login prompts for credentials and stores the bearer token for the session.
func (a *App) Login(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	token, err := a.client.Login(ctx, userName, password)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	a.token = token
	a.userName = userName
	fmt.Fprintln(a.out, "Logged in.")
	return nil
}

// Logout drops the session token.
func (a *App) Logout(ctx context.Context) error {
	a.token = ""
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
