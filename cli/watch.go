package cli

import (
	"log/slog"

	"t0ast.cc/floorpier/internal"
	uerror "t0ast.cc/floorpier/util/error"
)

type WatchCmd struct{}

func (cmd *WatchCmd) Run(ctx CommandContext) error {
	slog.Info("watching the theme source, press Ctrl+C to stop", slog.String("src", ctx.Config.ThemeSourceDir))
	return uerror.WithStackTrace(internal.Watch(ctx.Context, ctx.Config, func(err error) {
		if err != nil {
			slog.Error("rendering the theme failed", slog.String("err", uerror.Message(err)))
			return
		}
		slog.Info("rendered the theme", slog.String("build", ctx.Config.BuildDir))
	}))
}
