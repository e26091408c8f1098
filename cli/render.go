package cli

import (
	"log/slog"

	"t0ast.cc/floorpier/internal"
	uerror "t0ast.cc/floorpier/util/error"
)

type RenderCmd struct {
	KeepBuild bool `help:"Render over the previous build instead of removing it first"`
}

func (cmd *RenderCmd) Run(ctx CommandContext) error {
	config := ctx.Config
	if cmd.KeepBuild {
		config.Policy.KeepBuildArtifacts = true
	}
	if err := internal.PrepareBuild(config); err != nil {
		return uerror.WithStackTrace(err)
	}
	slog.Info("rendered the theme", slog.String("build", config.BuildDir))
	return nil
}
