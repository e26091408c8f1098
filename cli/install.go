package cli

import (
	"t0ast.cc/floorpier/internal"
	uerror "t0ast.cc/floorpier/util/error"
)

type InstallCmd struct {
	Profile    string `help:"The profile directory to install into instead of searching for one" optional:"" type:"path"`
	KeepBuild  bool   `help:"Render over the previous build instead of removing it first"`
	NoBackup   bool   `help:"Overwrite profile files without backing them up first"`
	AppendLink bool   `help:"Always append the stylesheet link instead of replacing one installed before"`
}

func (cmd *InstallCmd) Run(ctx CommandContext) error {
	config := ctx.Config
	if cmd.KeepBuild {
		config.Policy.KeepBuildArtifacts = true
	}
	if cmd.NoBackup {
		config.Policy.BackupBeforeOverwrite = false
	}
	if cmd.AppendLink {
		config.Policy.IdempotentPatch = false
	}

	pipeline := internal.Pipeline{
		Config:     config,
		Confirmer:  ctx.Confirmer,
		ProfileDir: cmd.Profile,
	}
	return uerror.WithStackTrace(pipeline.Run())
}
