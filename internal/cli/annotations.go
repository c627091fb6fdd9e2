package cli

import (
	"github.com/spf13/cobra"

	"github.com/glif-dev/glif/internal/annotate"
	"github.com/glif-dev/glif/internal/tree"
)

func RunAnnotations(cmd *cobra.Command, args []string) error {
	p, err := buildPipeline(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	nodeID, _ := flags.GetString("node")
	depth, _ := flags.GetInt("depth")
	radius, _ := flags.GetFloat64("radius")

	matches, err := p.MatchAnnotations(cmd.Context(), args[0], nodeID,
		tree.Config{MaxDepth: depth, SemanticAnalysis: true},
		annotate.Options{ProximityRadius: radius},
	)
	if err != nil {
		return err
	}
	return emitResult(cmd, matches)
}
