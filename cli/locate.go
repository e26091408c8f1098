package cli

import (
	"fmt"
	"os"
	"runtime"

	"t0ast.cc/floorpier/internal"
	uerror "t0ast.cc/floorpier/util/error"
)

type LocateCmd struct{}

func (cmd *LocateCmd) Run(ctx CommandContext) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return uerror.WithStackTrace(err)
	}
	profileDir, err := internal.LocateProfile(runtime.GOOS, home, ctx.Config.Profiles)
	if err != nil {
		return uerror.WithStackTrace(err)
	}
	fmt.Println(profileDir)
	return nil
}
