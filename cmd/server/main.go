package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/vetdesk/vetdesk/cmd/server/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug       bool `help:"Enable debug mode."`
		Version     kong.VersionFlag
		Server      commands.ServerCmd      `cmd:"" help:"Start the identity API server"`
		CreateAdmin commands.CreateAdminCmd `cmd:"" name:"create-admin" help:"Provision a platform admin"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
