package assets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/glif-dev/glif/internal/fileutil"
)

type downloadJob struct {
	request  ExportRequest
	url      string
	filename string // name chosen during download, relative to targetDir
	target   string // canonical name, relative to targetDir
	timeout  time.Duration
}

// downloadAll resolves render URLs in ceiling-sized batches grouped by
// (format, scale), then fetches every asset through a worker pool bounded
// by the limiter's burst size. Results come back in request order no matter
// which downloads finish first.
func (r *Resolver) downloadAll(ctx context.Context, fileID, runID, targetDir string, requests []ExportRequest, opts Options) []DownloadResult {
	results := make([]DownloadResult, len(requests))
	for i, request := range requests {
		results[i] = DownloadResult{
			NodeID:          request.NodeID,
			NodeName:        request.NodeName,
			RequestedFormat: request.Format,
		}
	}
	if len(requests) == 0 {
		return results
	}

	names := assignFilenames(requests, runID)
	jobs := make(map[int]downloadJob, len(requests))

	for _, group := range groupRequests(requests) {
		for start := 0; start < len(group.indices); start += r.client.BatchCeiling() {
			end := start + r.client.BatchCeiling()
			if end > len(group.indices) {
				end = len(group.indices)
			}
			batch := group.indices[start:end]

			ids := make([]string, 0, len(batch))
			for _, index := range batch {
				ids = append(ids, requests[index].NodeID)
			}
			urls, err := r.client.FetchExportURLs(ctx, fileID, ids, group.format, group.scale)
			if err != nil {
				for _, index := range batch {
					results[index].Error = err.Error()
				}
				continue
			}
			for _, index := range batch {
				request := requests[index]
				renderURL, ok := urls[request.NodeID]
				if !ok || renderURL == "" {
					results[index].Error = "remote produced no render url"
					continue
				}
				jobs[index] = downloadJob{
					request:  request,
					url:      renderURL,
					filename: names[index] + ".part-" + runID,
					target:   names[index],
					timeout:  opts.timeout(),
				}
			}
		}
	}

	pool, poolCtx := errgroup.WithContext(ctx)
	pool.SetLimit(r.client.Burst())
	for index, job := range jobs {
		index, job := index, job
		pool.Go(func() error {
			result := r.downloadOne(poolCtx, job, targetDir)
			if result.Success {
				strategy, finalPath, warning := Materialize(DefaultStrategies(),
					result.FinalFilePath, filepath.Join(targetDir, job.target))
				result.StrategyUsed = strategy
				result.FinalFilePath = finalPath
				if result.Warning == "" {
					result.Warning = warning
				}
			}
			results[index] = result
			return nil
		})
	}
	pool.Wait()

	return results
}

// downloadOne fetches a single render URL and lands the bytes at
// targetDir/job.filename. Raster payloads are decoded to capture their
// dimensions and catch truncated bodies.
func (r *Resolver) downloadOne(ctx context.Context, job downloadJob, targetDir string) DownloadResult {
	result := DownloadResult{
		NodeID:          job.request.NodeID,
		NodeName:        job.request.NodeName,
		RequestedFormat: job.request.Format,
	}

	data, err := r.fetchURL(ctx, job.url, job.timeout)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	if isRaster(job.request.Format) {
		image, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			result.Warning = fmt.Sprintf("undecodable %s payload: %v", job.request.Format, err)
		} else {
			size := image.Bounds().Size()
			result.Width = size.X
			result.Height = size.Y
		}
	}

	path := filepath.Join(targetDir, job.filename)
	if err := writeFile(path, data); err != nil {
		result.Error = err.Error()
		return result
	}

	result.FinalFilePath = path
	result.SizeBytes = int64(len(data))
	result.Success = true
	return result
}

func (r *Resolver) fetchURL(ctx context.Context, renderURL string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, renderURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

type requestGroup struct {
	format  string
	scale   float64
	indices []int
}

// groupRequests buckets request indices by (format, scale) so each bucket
// maps to one export-url call shape, preserving request order inside each
// bucket.
func groupRequests(requests []ExportRequest) []requestGroup {
	var groups []requestGroup
	positions := make(map[string]int)
	for i, request := range requests {
		key := fmt.Sprintf("%s|%g", request.Format, request.Scale)
		position, ok := positions[key]
		if !ok {
			position = len(groups)
			positions[key] = position
			groups = append(groups, requestGroup{format: request.Format, scale: request.Scale})
		}
		groups[position].indices = append(groups[position].indices, i)
	}
	return groups
}

// assignFilenames picks a sanitized display-name filename per request. The
// export setting's suffix is part of the base name; collisions get the node
// id appended, then an ordinal, so no two requests ever share a name.
func assignFilenames(requests []ExportRequest, runID string) []string {
	names := make([]string, len(requests))
	taken := make(map[string]bool, len(requests))
	for i, request := range requests {
		base := fileutil.SanitizeFilename(request.NodeName)
		if request.Suffix != "" {
			base += fileutil.SanitizeFilename(request.Suffix)
		}
		ext := extensionFor(request.Format)
		candidate := base + ext
		if taken[strings.ToLower(candidate)] {
			base += "-" + fileutil.SanitizeFilename(request.NodeID)
			candidate = base + ext
		}
		for ordinal := 2; taken[strings.ToLower(candidate)]; ordinal++ {
			candidate = base + "-" + strconv.Itoa(ordinal) + ext
		}
		taken[strings.ToLower(candidate)] = true
		names[i] = candidate
	}
	return names
}

func extensionFor(format string) string {
	switch strings.ToUpper(format) {
	case "JPG", "JPEG":
		return ".jpg"
	case "SVG":
		return ".svg"
	case "PDF":
		return ".pdf"
	default:
		return ".png"
	}
}

func isRaster(format string) bool {
	switch strings.ToUpper(format) {
	case "PNG", "JPG", "JPEG":
		return true
	default:
		return false
	}
}
