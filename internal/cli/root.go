// Package cli is the thin driver over the pipeline: it validates inputs,
// builds the remote client from flags and environment, and prints
// machine-readable JSON results.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "glif",
		Short: "Turn design files into AI-ready context and assets",
		Long: `Glif fetches a design-document graph from the remote design API and
compacts it into a token-efficient artifact for code-generation agents:
semantic roles, style tokens, matched reviewer comments, and exported
image assets with stable filenames.`,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("token", "", "API token (defaults to GLIF_API_TOKEN)")
	flags.String("base-url", "", "Remote API base URL (defaults to the public endpoint)")
	flags.Int("cache-ttl", 300, "Response cache lifetime in seconds")
	flags.Int("cache-entries", 500, "Response cache eviction ceiling")
	flags.Int("rpm", 60, "Sustained requests per minute")
	flags.Int("burst", 10, "Token-bucket burst capacity")

	processCmd := &cobra.Command{
		Use:   "process <file-id>",
		Short: "Fetch a subtree and emit the reduced AI-facing tree",
		Args:  cobra.ExactArgs(1),
		RunE:  RunProcess,
	}
	processCmd.Flags().String("node", "", "Root node id (default: document root)")
	processCmd.Flags().Int("depth", 0, "Depth ceiling for the processed tree (0 = unlimited)")
	processCmd.Flags().Bool("semantic", true, "Enable built-in semantic role heuristics")
	processCmd.Flags().Bool("tokens", false, "Extract design tokens per node")
	processCmd.Flags().Int("text-limit", 200, "Text truncation ceiling")
	processCmd.Flags().StringSlice("exclude", nil, "Node types to drop with their subtrees")
	processCmd.Flags().StringSlice("prioritize", nil, "Node types retained one level past the ceiling")
	processCmd.Flags().String("out", "", "Write the result to a file instead of stdout")

	annotationsCmd := &cobra.Command{
		Use:   "annotations <file-id>",
		Short: "Match reviewer comments to nodes and classify their intent",
		Args:  cobra.ExactArgs(1),
		RunE:  RunAnnotations,
	}
	annotationsCmd.Flags().String("node", "", "Root node id (default: document root)")
	annotationsCmd.Flags().Int("depth", 0, "Depth ceiling for the bounds index (0 = unlimited)")
	annotationsCmd.Flags().Float64("radius", 0, "Proximity radius in document units (0 = default)")
	annotationsCmd.Flags().String("out", "", "Write the result to a file instead of stdout")

	assetsCmd := &cobra.Command{
		Use:   "assets <file-id>",
		Short: "Download export-eligible images plus a reference snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  RunAssets,
	}
	assetsCmd.Flags().String("node", "", "Root node id (default: document root)")
	assetsCmd.Flags().StringP("dir", "d", "", "Target directory for downloaded assets (required)")
	assetsCmd.Flags().Float64("scale", 2, "Fallback render scale for settings without one")
	assetsCmd.Flags().String("format", "PNG", "Fallback render format for settings without one")
	_ = assetsCmd.MarkFlagRequired("dir")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("glif %s\n", version)
		},
	}

	rootCmd.AddCommand(
		processCmd,
		annotationsCmd,
		assetsCmd,
		versionCmd,
	)

	return rootCmd
}
