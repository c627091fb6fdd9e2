// Package pipeline exposes the driver-facing operations: ProcessGraph,
// MatchAnnotations, ResolveAssets, and the stats accessors. The CLI (or any
// other driver) supplies validated inputs and receives JSON-ready results.
package pipeline

import (
	"context"
	"sort"
	"sync"

	"github.com/glif-dev/glif/internal/annotate"
	"github.com/glif-dev/glif/internal/apierr"
	"github.com/glif-dev/glif/internal/assets"
	"github.com/glif-dev/glif/internal/remote"
	"github.com/glif-dev/glif/internal/tree"
)

// Pipeline wires the remote client into the processing components. The
// aggregate stats counter is the only shared mutable state; it sits behind
// its own lock so overlapping invocations cannot corrupt each other's
// counts.
type Pipeline struct {
	client   remote.Client
	resolver *assets.Resolver

	mu    sync.Mutex
	stats tree.Stats
}

// New builds a pipeline over the given remote client.
func New(client remote.Client) *Pipeline {
	return &Pipeline{
		client:   client,
		resolver: assets.NewResolver(client),
	}
}

// ProcessResult is the outcome of one ProcessGraph call.
type ProcessResult struct {
	FileID  string     `json:"fileId"`
	NodeID  string     `json:"nodeId,omitempty"`
	Tree    *tree.Node `json:"tree"`
	Palette []string   `json:"palette,omitempty"`
	Stats   tree.Stats `json:"stats"`
}

// ProcessGraph fetches the subtree, runs the enhance and reduce passes, and
// returns the AI-facing artifact with this run's stats.
func (p *Pipeline) ProcessGraph(ctx context.Context, fileID, nodeID string, cfg tree.Config) (*ProcessResult, error) {
	enhanced, stats, err := p.enhanceSubtree(ctx, fileID, nodeID, cfg)
	if err != nil {
		return nil, err
	}

	result := &ProcessResult{
		FileID: fileID,
		NodeID: nodeID,
		Tree:   tree.Reduce(enhanced, cfg),
		Stats:  stats,
	}
	if cfg.ExtractTokens {
		result.Palette = collectPalette(enhanced)
	}

	p.mu.Lock()
	p.stats.Add(stats)
	p.mu.Unlock()

	return result, nil
}

// MatchAnnotations fetches the file's annotations and resolves each one
// against the bounds index derived from the enhanced (not reduced) tree.
func (p *Pipeline) MatchAnnotations(ctx context.Context, fileID, nodeID string, cfg tree.Config, opts annotate.Options) ([]annotate.Match, error) {
	annotations, err := p.client.FetchAnnotations(ctx, fileID)
	if err != nil {
		return nil, err
	}

	enhanced, stats, err := p.enhanceSubtree(ctx, fileID, nodeID, cfg)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.stats.Add(stats)
	p.mu.Unlock()

	return annotate.MatchAll(tree.Flatten(enhanced), annotations, opts), nil
}

// ResolveAssets scans the raw subtree for export-eligible nodes and
// materializes their rendered images under targetDir.
func (p *Pipeline) ResolveAssets(ctx context.Context, fileID, nodeID, targetDir string, opts assets.Options) (*assets.Result, error) {
	return p.resolver.Resolve(ctx, fileID, nodeID, targetDir, opts)
}

// Stats returns the counters aggregated across all runs since the last
// reset.
func (p *Pipeline) Stats() tree.Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// ResetStats zeroes the aggregate counters.
func (p *Pipeline) ResetStats() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats.Reset()
}

func (p *Pipeline) enhanceSubtree(ctx context.Context, fileID, nodeID string, cfg tree.Config) (*tree.Node, tree.Stats, error) {
	var stats tree.Stats
	if fileID == "" {
		return nil, stats, apierr.New(apierr.InvalidInput, "process-graph", "file id is required")
	}

	root, err := p.client.FetchSubtree(ctx, fileID, nodeID, fetchDepth(cfg), true)
	if err != nil {
		return nil, stats, err
	}

	enhanced := tree.Enhance(root, cfg, &stats)
	if enhanced == nil {
		err := apierr.New(apierr.NodeNotFound, "process-graph", "subtree empty after filtering")
		return nil, stats, err.WithFile(fileID).WithNode(nodeID)
	}
	return enhanced, stats, nil
}

// fetchDepth asks the server for one level past the ceiling when the
// prioritize set could retain nodes there; the enhance pass still enforces
// the ceiling locally.
func fetchDepth(cfg tree.Config) int {
	if cfg.MaxDepth <= 0 {
		return 0
	}
	if len(cfg.PrioritizeTypes) > 0 {
		return cfg.MaxDepth + 1
	}
	return cfg.MaxDepth
}

func collectPalette(root *tree.Node) []string {
	seen := make(map[string]bool)
	var walk func(node *tree.Node)
	walk = func(node *tree.Node) {
		if fill, ok := node.Tokens["fill"]; ok {
			seen[fill] = true
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(root)

	palette := make([]string, 0, len(seen))
	for fill := range seen {
		palette = append(palette, fill)
	}
	sort.Strings(palette)
	return palette
}
