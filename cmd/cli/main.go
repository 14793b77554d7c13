package main

import (
	"context"
	"os"

	"github.com/avolkov/filevault/internal/buildinfo"
	"github.com/avolkov/filevault/internal/client/cli"
	"github.com/avolkov/filevault/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app := cli.NewApp(cfg)

	app.Run(ctx)

}
