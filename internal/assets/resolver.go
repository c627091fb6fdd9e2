// Package assets scans a raw design subtree for export-eligible nodes,
// downloads their rendered images, and materializes them on disk with
// stable, sanitized filenames.
package assets

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/glif-dev/glif/internal/apierr"
	"github.com/glif-dev/glif/internal/design"
	"github.com/glif-dev/glif/internal/remote"
)

// ReferenceFilename is the canonical name of the wide-context snapshot.
const ReferenceFilename = "reference.png"

// referenceScale keeps the snapshot cheap; it is a sanity-check image, not
// an asset.
const referenceScale = 0.5

// ExportRequest is one render produced by the export scan. Suffix carries
// the export setting's filename suffix so two settings on the same node
// land under distinct names.
type ExportRequest struct {
	NodeID   string  `json:"nodeId"`
	NodeName string  `json:"nodeName"`
	Suffix   string  `json:"suffix,omitempty"`
	Format   string  `json:"format"`
	Scale    float64 `json:"scale"`
}

// DownloadResult records the outcome for one asset.
type DownloadResult struct {
	NodeID          string  `json:"nodeId"`
	NodeName        string  `json:"nodeName"`
	RequestedFormat string  `json:"requestedFormat"`
	FinalFilePath   string  `json:"finalFilePath,omitempty"`
	Success         bool    `json:"success"`
	SizeBytes       int64   `json:"sizeBytes,omitempty"`
	Width           int     `json:"width,omitempty"`
	Height          int     `json:"height,omitempty"`
	StrategyUsed    string  `json:"strategyUsed,omitempty"`
	Warning         string  `json:"warning,omitempty"`
	Error           string  `json:"error,omitempty"`
}

// Summary aggregates a resolver run.
type Summary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// Result is the full output of one resolver run. Downloads preserve the
// scan order; Reference is nil only when the snapshot could not even be
// attempted, in which case ReferenceError says why. Status is "ok" when
// every download succeeded and "partial_failure" otherwise; the per-item
// failures stay in Downloads either way.
type Result struct {
	RunID          string           `json:"runId"`
	Status         string           `json:"status"`
	Downloads      []DownloadResult `json:"downloads"`
	Reference      *DownloadResult  `json:"reference,omitempty"`
	ReferenceError string           `json:"referenceError,omitempty"`
	Summary        Summary          `json:"summary"`
}

// Options tune one resolver run.
type Options struct {
	// FallbackScale applies to export settings without a scale; 0 means 2.
	FallbackScale float64
	// FallbackFormat applies to export settings without a format; empty
	// means PNG.
	FallbackFormat string
	// DownloadTimeout bounds each individual asset fetch; 0 means 60s.
	DownloadTimeout time.Duration
}

func (o Options) scale() float64 {
	if o.FallbackScale < 0.5 || o.FallbackScale > 4.0 {
		return 2
	}
	return o.FallbackScale
}

func (o Options) format() string {
	if o.FallbackFormat == "" {
		return "PNG"
	}
	return strings.ToUpper(o.FallbackFormat)
}

func (o Options) timeout() time.Duration {
	if o.DownloadTimeout <= 0 {
		return 60 * time.Second
	}
	return o.DownloadTimeout
}

// Resolver downloads export assets through the remote client.
type Resolver struct {
	client     remote.Client
	httpClient *http.Client
	logger     *log.Logger
}

// NewResolver builds a resolver over the given client. The plain HTTP
// client fetches the pre-signed render URLs, which are not rate-limited
// API calls.
func NewResolver(client remote.Client) *Resolver {
	return &Resolver{
		client:     client,
		httpClient: &http.Client{},
		logger:     log.New(os.Stderr, "", log.LstdFlags),
	}
}

// Scan walks the raw subtree depth-first collecting one request per export
// setting. The walk ignores any depth ceiling so deeply nested exportable
// icons are never missed. Nodes without export settings never produce a
// request.
func Scan(root *design.Node, opts Options) []ExportRequest {
	var requests []ExportRequest
	var walk func(node *design.Node)
	walk = func(node *design.Node) {
		if node == nil {
			return
		}
		for _, setting := range node.ExportSettings {
			format := strings.ToUpper(setting.Format)
			if format == "" {
				format = opts.format()
			}
			scale := setting.Scale
			if scale < 0.5 || scale > 4.0 {
				scale = opts.scale()
			}
			requests = append(requests, ExportRequest{
				NodeID:   node.ID,
				NodeName: node.Name,
				Suffix:   setting.Suffix,
				Format:   format,
				Scale:    scale,
			})
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(root)
	return requests
}

// Resolve fetches the raw subtree, scans it, downloads every export asset
// into targetDir, and finishes with the reference snapshot. Individual
// download failures are recorded per result and never abort the batch.
func (r *Resolver) Resolve(ctx context.Context, fileID, nodeID, targetDir string, opts Options) (*Result, error) {
	const op = "resolve-assets"
	if fileID == "" {
		return nil, apierr.New(apierr.InvalidInput, op, "file id is required")
	}
	if targetDir == "" {
		return nil, apierr.New(apierr.InvalidInput, op, "target directory is required")
	}
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return nil, apierr.Wrap(apierr.FilesystemError, op, err)
	}

	runID := uuid.New().String()
	r.logger.Printf("[%s] resolving assets for file=%s node=%s dir=%s", runID, fileID, nodeID, targetDir)

	// Full-depth raw fetch, independent of any AI-facing depth ceiling.
	root, err := r.client.FetchSubtree(ctx, fileID, nodeID, 0, true)
	if err != nil {
		return nil, err
	}

	requests := Scan(root, opts)
	downloads := r.downloadAll(ctx, fileID, runID, targetDir, requests, opts)

	result := &Result{
		RunID:     runID,
		Status:    "ok",
		Downloads: downloads,
		Summary:   Summary{Total: len(downloads)},
	}
	for _, download := range downloads {
		if download.Success {
			result.Summary.Successful++
		} else {
			result.Summary.Failed++
		}
	}
	if result.Summary.Failed > 0 {
		result.Status = apierr.PartialFailure.String()
	}

	// The reference snapshot always runs after the per-node downloads so
	// its fallback-chain logging is unambiguous.
	reference, refErr := r.downloadReference(ctx, fileID, nodeID, root, targetDir, runID, opts)
	if refErr != nil {
		result.ReferenceError = refErr.Error()
		r.logger.Printf("[%s] reference snapshot failed: %v", runID, refErr)
	} else {
		result.Reference = reference
	}

	r.logger.Printf("[%s] done: %d/%d assets, reference=%t",
		runID, result.Summary.Successful, result.Summary.Total, result.Reference != nil)
	return result, nil
}

// downloadReference renders one wide-context image of the selected node
// (or the first page when no selection was given) at a fixed low scale and
// materializes it to the canonical reference filename.
func (r *Resolver) downloadReference(ctx context.Context, fileID, nodeID string, root *design.Node, targetDir, runID string, opts Options) (*DownloadResult, error) {
	referenceNode := nodeID
	referenceName := "reference"
	if referenceNode == "" {
		if root == nil || len(root.Children) == 0 {
			return nil, fmt.Errorf("no page available for reference snapshot")
		}
		referenceNode = root.Children[0].ID
		referenceName = root.Children[0].Name
	}

	urls, err := r.client.FetchExportURLs(ctx, fileID, []string{referenceNode}, "PNG", referenceScale)
	if err != nil {
		return nil, fmt.Errorf("fetch reference url: %w", err)
	}
	renderURL, ok := urls[referenceNode]
	if !ok || renderURL == "" {
		return nil, fmt.Errorf("remote produced no render url for node %s", referenceNode)
	}

	result := r.downloadOne(ctx, downloadJob{
		request:  ExportRequest{NodeID: referenceNode, NodeName: referenceName, Format: "PNG", Scale: referenceScale},
		url:      renderURL,
		filename: "reference-" + runID + ".png.part",
		timeout:  opts.timeout(),
	}, targetDir)
	if !result.Success {
		return nil, fmt.Errorf("download reference: %s", result.Error)
	}

	strategy, finalPath, warning := Materialize(DefaultStrategies(), result.FinalFilePath, filepath.Join(targetDir, ReferenceFilename))
	result.StrategyUsed = strategy
	result.FinalFilePath = finalPath
	result.Warning = warning
	if warning != "" {
		r.logger.Printf("[%s] reference materialization degraded: %s", runID, warning)
	}
	return &result, nil
}
