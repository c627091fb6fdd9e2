package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glif-dev/glif/internal/design"
	"github.com/glif-dev/glif/internal/fileutil"
	"github.com/glif-dev/glif/internal/pipeline"
	"github.com/glif-dev/glif/internal/remote"
)

// buildPipeline assembles the remote client and pipeline from the root
// command's persistent flags plus GLIF_API_TOKEN.
func buildPipeline(cmd *cobra.Command) (*pipeline.Pipeline, error) {
	flags := cmd.Flags()
	token, _ := flags.GetString("token")
	if token == "" {
		token = os.Getenv("GLIF_API_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("no API token: set --token or GLIF_API_TOKEN")
	}

	baseURL, _ := flags.GetString("base-url")
	ttl, _ := flags.GetInt("cache-ttl")
	cacheEntries, _ := flags.GetInt("cache-entries")
	rpm, _ := flags.GetInt("rpm")
	burst, _ := flags.GetInt("burst")

	client := remote.NewAPIClient(remote.Config{
		Token:             token,
		BaseURL:           baseURL,
		TTLSeconds:        ttl,
		MaxCacheEntries:   cacheEntries,
		RequestsPerMinute: rpm,
		BurstSize:         burst,
	})
	return pipeline.New(client), nil
}

// emitResult prints the value as JSON to stdout, or writes it to the
// --out file when set.
func emitResult(cmd *cobra.Command, value any) error {
	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		return fileutil.FprintJSON(cmd.OutOrStdout(), value)
	}
	data, err := fileutil.EncodeJSON(value)
	if err != nil {
		return err
	}
	return fileutil.WriteIfChanged(outPath, data)
}

func nodeTypes(values []string) []design.NodeType {
	out := make([]design.NodeType, 0, len(values))
	for _, value := range values {
		out = append(out, design.NodeType(value))
	}
	return out
}
