// Package cli implements the interactive FileVault command-line client.
package cli

import (
	"bufio"
	"os"

	"github.com/avolkov/filevault/internal/client/api"
	"github.com/avolkov/filevault/internal/client/config"
)

type App struct {
	config   *config.Config
	client   *api.Client
	token    string
	userName string
	reader   *bufio.Reader
	out      *os.File
}

func NewApp(c *config.Config) *App {
	return &App{
		config: c,
		client: api.NewClient(c.ServerEndpointAddr, c.RequestTimeout),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

func (a *App) isLoggedIn() bool {
	return a.token != ""
}

// showLogin returns the string used in the REPL prompt.
func (a *App) showLogin() string {
	if a.isLoggedIn() {
		return a.userName
	}
	return "not logged in"
}
