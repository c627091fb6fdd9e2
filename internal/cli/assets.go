package cli

import (
	"github.com/spf13/cobra"

	"github.com/glif-dev/glif/internal/assets"
)

func RunAssets(cmd *cobra.Command, args []string) error {
	p, err := buildPipeline(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	nodeID, _ := flags.GetString("node")
	targetDir, _ := flags.GetString("dir")
	scale, _ := flags.GetFloat64("scale")
	format, _ := flags.GetString("format")

	result, err := p.ResolveAssets(cmd.Context(), args[0], nodeID, targetDir, assets.Options{
		FallbackScale:  scale,
		FallbackFormat: format,
	})
	if err != nil {
		return err
	}
	return emitResult(cmd, result)
}
