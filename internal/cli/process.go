package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/glif-dev/glif/internal/tree"
)

func RunProcess(cmd *cobra.Command, args []string) error {
	p, err := buildPipeline(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	nodeID, _ := flags.GetString("node")
	depth, _ := flags.GetInt("depth")
	semantic, _ := flags.GetBool("semantic")
	tokens, _ := flags.GetBool("tokens")
	textLimit, _ := flags.GetInt("text-limit")
	exclude, _ := flags.GetStringSlice("exclude")
	prioritize, _ := flags.GetStringSlice("prioritize")

	cfg := tree.Config{
		MaxDepth:         depth,
		ExcludeTypes:     nodeTypes(upper(exclude)),
		PrioritizeTypes:  nodeTypes(upper(prioritize)),
		SemanticAnalysis: semantic,
		ExtractTokens:    tokens,
		LimitTextLength:  textLimit,
	}

	result, err := p.ProcessGraph(cmd.Context(), args[0], nodeID, cfg)
	if err != nil {
		return err
	}
	return emitResult(cmd, result)
}

func upper(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		out = append(out, strings.ToUpper(strings.TrimSpace(value)))
	}
	return out
}
