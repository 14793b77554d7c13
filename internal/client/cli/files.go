package cli

import (
	"context"
	"fmt"
	"os"
)

// Upload sends a local file to the server. The path argument may come from
// the command line; when empty the user is prompted for it.
func (a *App) Upload(ctx context.Context, path string) error {
	var err error
	if path == "" {
		path, err = GetSimpleText(a.reader, "Enter path to file", a.out)
		if err != nil {
			fmt.Fprintln(a.out, err.Error())
			return err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	defer f.Close()

	if err := a.client.Upload(ctx, a.token, path, f); err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	fmt.Fprintln(a.out, "Uploaded.")
	return nil
}

// List prints the user's files with their sizes.
func (a *App) List(ctx context.Context) error {
	files, err := a.client.List(ctx, a.token)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	if len(files) == 0 {
		fmt.Fprintln(a.out, "No files uploaded yet.")
		return nil
	}

	for _, f := range files {
		fmt.Fprintf(a.out, "%s\t%d bytes\n", f.Name, f.Size)
	}
	return nil
}

// Health checks server reachability.
func (a *App) Health(ctx context.Context) error {
	if err := a.client.Health(ctx); err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}
	fmt.Fprintln(a.out, "Server is up.")
	return nil
}
