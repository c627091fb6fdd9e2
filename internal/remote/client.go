// Package remote provides cached, rate-limited access to the design-tool
// HTTP API. All reads are idempotent GETs: they consult the cache first,
// then the token bucket, then the network with a small retry budget.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/glif-dev/glif/internal/apierr"
	"github.com/glif-dev/glif/internal/design"
)

const (
	DefaultBaseURL      = "https://api.figma.com"
	DefaultBatchCeiling = 50

	retryAttempts  = 3
	retryBaseDelay = 250 * time.Millisecond
)

// Client is the remote design-graph contract consumed by the pipeline.
type Client interface {
	// FetchSubtree returns the subtree rooted at nodeID, or the whole
	// document root when nodeID is empty. maxDepth is passed through to the
	// server unmodified; 0 means unlimited.
	FetchSubtree(ctx context.Context, fileID, nodeID string, maxDepth int, useAbsoluteBounds bool) (*design.Node, error)
	// FetchAnnotations returns all reviewer comments on the file.
	FetchAnnotations(ctx context.Context, fileID string) ([]design.Annotation, error)
	// FetchExportURLs resolves render URLs for up to BatchCeiling node ids.
	FetchExportURLs(ctx context.Context, fileID string, nodeIDs []string, format string, scale float64) (map[string]string, error)
	// BatchCeiling reports the maximum node count accepted per
	// FetchExportURLs call.
	BatchCeiling() int
	// Burst reports the limiter's bucket capacity; download pools bound
	// their concurrency with it.
	Burst() int
}

// Config carries the per-construction options recognized by NewAPIClient.
// Zero values fall back to the documented defaults.
type Config struct {
	Token   string
	BaseURL string

	TTLSeconds        int // cache lifetime, default 300
	MaxCacheEntries   int // eviction ceiling, default 500
	RequestsPerMinute int // sustained rate, default 60
	BurstSize         int // token-bucket capacity, default 10
	MaxWait           time.Duration
	BatchCeiling      int

	HTTPClient *http.Client
	// Registry receives the client's counters when non-nil.
	Registry prometheus.Registerer
}

// APIClient is the HTTP implementation of Client.
type APIClient struct {
	token        string
	baseURL      string
	httpClient   *http.Client
	cache        *responseCache
	limiter      *waitLimiter
	batchCeiling int
	metrics      *clientMetrics
}

type clientMetrics struct {
	requests *prometheus.CounterVec
	cache    *prometheus.CounterVec
	retries  prometheus.Counter
}

func newClientMetrics(registry prometheus.Registerer) *clientMetrics {
	m := &clientMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "glif_remote_requests_total",
			Help: "Remote API requests by operation and outcome.",
		}, []string{"op", "outcome"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "glif_remote_cache_total",
			Help: "Cache lookups by result.",
		}, []string{"result"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "glif_remote_retries_total",
			Help: "Retried remote requests.",
		}),
	}
	if registry != nil {
		registry.MustRegister(m.requests, m.cache, m.retries)
	}
	return m
}

// NewAPIClient builds a client from cfg. An empty token is accepted at
// construction; the remote rejects unauthenticated calls with a 403 that
// surfaces as RemoteUnavailable.
func NewAPIClient(cfg Config) *APIClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if cfg.TTLSeconds == 0 {
		ttl = 5 * time.Minute
	}
	batchCeiling := cfg.BatchCeiling
	if batchCeiling <= 0 {
		batchCeiling = DefaultBatchCeiling
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &APIClient{
		token:        cfg.Token,
		baseURL:      baseURL,
		httpClient:   httpClient,
		cache:        newResponseCache(ttl, cfg.MaxCacheEntries),
		limiter:      newWaitLimiter(cfg.RequestsPerMinute, cfg.BurstSize, cfg.MaxWait),
		batchCeiling: batchCeiling,
		metrics:      newClientMetrics(cfg.Registry),
	}
}

func (c *APIClient) BatchCeiling() int {
	return c.batchCeiling
}

func (c *APIClient) Burst() int {
	return c.limiter.burstSize()
}

// wire shapes

type fileResponse struct {
	Document *design.Node `json:"document"`
}

type nodesResponse struct {
	Nodes map[string]struct {
		Document *design.Node `json:"document"`
	} `json:"nodes"`
}

type commentsResponse struct {
	Comments []struct {
		ID         string `json:"id"`
		Message    string `json:"message"`
		User       struct {
			Handle string `json:"handle"`
		} `json:"user"`
		ClientMeta struct {
			X          *float64 `json:"x"`
			Y          *float64 `json:"y"`
			NodeID     string   `json:"node_id"`
			NodeOffset *struct {
				X float64 `json:"x"`
				Y float64 `json:"y"`
			} `json:"node_offset"`
		} `json:"client_meta"`
	} `json:"comments"`
}

type imagesResponse struct {
	Err    string            `json:"err"`
	Images map[string]string `json:"images"`
}

func (c *APIClient) FetchSubtree(ctx context.Context, fileID, nodeID string, maxDepth int, useAbsoluteBounds bool) (*design.Node, error) {
	const op = "fetch-subtree"
	if fileID == "" {
		return nil, apierr.New(apierr.InvalidInput, op, "file id is required")
	}

	key := CacheKey(op, fileID, nodeID, strconv.Itoa(maxDepth), strconv.FormatBool(useAbsoluteBounds))
	if cached, ok := c.cache.get(key); ok {
		c.metrics.cache.WithLabelValues("hit").Inc()
		return cached.(*design.Node).Clone(), nil
	}
	c.metrics.cache.WithLabelValues("miss").Inc()

	query := url.Values{}
	if maxDepth > 0 {
		query.Set("depth", strconv.Itoa(maxDepth))
	}
	if useAbsoluteBounds {
		query.Set("use_absolute_bounds", "true")
	}

	var root *design.Node
	if nodeID == "" {
		var parsed fileResponse
		endpoint := fmt.Sprintf("%s/v1/files/%s", c.baseURL, url.PathEscape(fileID))
		if err := c.getJSON(ctx, op, fileID, nodeID, endpoint, query, &parsed); err != nil {
			return nil, err
		}
		root = parsed.Document
	} else {
		query.Set("ids", nodeID)
		var parsed nodesResponse
		endpoint := fmt.Sprintf("%s/v1/files/%s/nodes", c.baseURL, url.PathEscape(fileID))
		if err := c.getJSON(ctx, op, fileID, nodeID, endpoint, query, &parsed); err != nil {
			return nil, err
		}
		if entry, ok := parsed.Nodes[nodeID]; ok {
			root = entry.Document
		}
	}
	if root == nil {
		notFound := apierr.New(apierr.NodeNotFound, op, "node absent from response")
		return nil, notFound.WithFile(fileID).WithNode(nodeID)
	}

	c.cache.put(key, root)
	return root.Clone(), nil
}

func (c *APIClient) FetchAnnotations(ctx context.Context, fileID string) ([]design.Annotation, error) {
	const op = "fetch-annotations"
	if fileID == "" {
		return nil, apierr.New(apierr.InvalidInput, op, "file id is required")
	}

	key := CacheKey(op, fileID)
	if cached, ok := c.cache.get(key); ok {
		c.metrics.cache.WithLabelValues("hit").Inc()
		return append([]design.Annotation(nil), cached.([]design.Annotation)...), nil
	}
	c.metrics.cache.WithLabelValues("miss").Inc()

	var parsed commentsResponse
	endpoint := fmt.Sprintf("%s/v1/files/%s/comments", c.baseURL, url.PathEscape(fileID))
	if err := c.getJSON(ctx, op, fileID, "", endpoint, nil, &parsed); err != nil {
		return nil, err
	}

	annotations := make([]design.Annotation, 0, len(parsed.Comments))
	for _, comment := range parsed.Comments {
		annotation := design.Annotation{
			ID:           comment.ID,
			Message:      comment.Message,
			AuthorHandle: comment.User.Handle,
			AnchorNodeID: comment.ClientMeta.NodeID,
		}
		switch {
		case comment.ClientMeta.NodeOffset != nil:
			annotation.AnchorPoint = &design.Point{
				X: comment.ClientMeta.NodeOffset.X,
				Y: comment.ClientMeta.NodeOffset.Y,
			}
		case comment.ClientMeta.X != nil && comment.ClientMeta.Y != nil:
			annotation.AnchorPoint = &design.Point{
				X: *comment.ClientMeta.X,
				Y: *comment.ClientMeta.Y,
			}
		}
		annotations = append(annotations, annotation)
	}

	c.cache.put(key, annotations)
	return append([]design.Annotation(nil), annotations...), nil
}

func (c *APIClient) FetchExportURLs(ctx context.Context, fileID string, nodeIDs []string, format string, scale float64) (map[string]string, error) {
	const op = "fetch-export-urls"
	if fileID == "" {
		return nil, apierr.New(apierr.InvalidInput, op, "file id is required")
	}
	if len(nodeIDs) == 0 {
		return nil, apierr.New(apierr.InvalidInput, op, "at least one node id is required").WithFile(fileID)
	}
	// Rejected up front: a silent truncation here would turn a typo into a
	// whole-document export.
	if len(nodeIDs) > c.batchCeiling {
		err := apierr.New(apierr.InvalidInput, op,
			"%d node ids exceed the batch ceiling of %d", len(nodeIDs), c.batchCeiling)
		return nil, err.WithFile(fileID)
	}
	if scale < 0.5 || scale > 4.0 {
		return nil, apierr.New(apierr.InvalidInput, op, "scale %.2f outside [0.5, 4.0]", scale).WithFile(fileID)
	}

	joined := strings.Join(nodeIDs, ",")
	key := CacheKey(op, fileID, joined, format, strconv.FormatFloat(scale, 'f', 2, 64))
	if cached, ok := c.cache.get(key); ok {
		c.metrics.cache.WithLabelValues("hit").Inc()
		return copyURLMap(cached.(map[string]string)), nil
	}
	c.metrics.cache.WithLabelValues("miss").Inc()

	query := url.Values{}
	query.Set("ids", joined)
	query.Set("format", strings.ToLower(format))
	query.Set("scale", strconv.FormatFloat(scale, 'f', -1, 64))

	var parsed imagesResponse
	endpoint := fmt.Sprintf("%s/v1/images/%s", c.baseURL, url.PathEscape(fileID))
	if err := c.getJSON(ctx, op, fileID, "", endpoint, query, &parsed); err != nil {
		return nil, err
	}
	if parsed.Err != "" {
		err := apierr.New(apierr.RemoteUnavailable, op, "remote render error: %s", parsed.Err)
		return nil, err.WithFile(fileID)
	}

	c.cache.put(key, parsed.Images)
	return copyURLMap(parsed.Images), nil
}

func copyURLMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for id, u := range in {
		out[id] = u
	}
	return out
}

// getJSON performs one rate-limited GET with bounded retries on 5xx and
// transport errors, decoding the body into target on success.
func (c *APIClient) getJSON(ctx context.Context, op, fileID, nodeID, endpoint string, query url.Values, target interface{}) error {
	if err := c.limiter.acquire(ctx, op); err != nil {
		return err
	}

	fullURL := endpoint
	if len(query) > 0 {
		fullURL = endpoint + "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			c.metrics.retries.Inc()
			delay := retryBaseDelay << (attempt - 1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		body, status, err := c.doGET(ctx, fullURL)
		if err != nil {
			lastErr = err
			continue // transport errors are retryable for idempotent GETs
		}

		switch {
		case status == http.StatusOK:
			if err := json.Unmarshal(body, target); err != nil {
				wrapped := apierr.Wrap(apierr.RemoteUnavailable, op, fmt.Errorf("decode response: %w", err))
				return wrapped.WithFile(fileID).WithNode(nodeID)
			}
			c.metrics.requests.WithLabelValues(op, "ok").Inc()
			return nil
		case status == http.StatusNotFound:
			c.metrics.requests.WithLabelValues(op, "not_found").Inc()
			notFound := apierr.New(apierr.NodeNotFound, op, "remote returned 404")
			return notFound.WithFile(fileID).WithNode(nodeID)
		case status >= 500 || status == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("remote returned status %d", status)
			continue
		default:
			c.metrics.requests.WithLabelValues(op, "client_error").Inc()
			wrapped := apierr.New(apierr.RemoteUnavailable, op, "remote returned status %d", status)
			return wrapped.WithFile(fileID).WithNode(nodeID)
		}
	}

	c.metrics.requests.WithLabelValues(op, "exhausted").Inc()
	exhausted := apierr.Wrap(apierr.RemoteUnavailable, op, fmt.Errorf("retries exhausted: %w", lastErr))
	return exhausted.WithFile(fileID).WithNode(nodeID)
}

func (c *APIClient) doGET(ctx context.Context, fullURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("X-Figma-Token", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
