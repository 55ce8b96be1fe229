// Package estimator computes the memory footprint of a remotely hosted model
// from safetensors header metadata alone: it lists the repository's weight
// files, narrows them through the shard index when one exists, reads each
// file's header via range requests and aggregates per-tensor element counts
// into a multi-precision memory report.
package estimator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/docker/go-units"
	"golang.org/x/sync/errgroup"

	"github.com/ksingh-scogo/vramio/pkg/hub"
	"github.com/ksingh-scogo/vramio/pkg/logging"
	"github.com/ksingh-scogo/vramio/pkg/metrics"
	"github.com/ksingh-scogo/vramio/pkg/safetensors"
)

// unsafeIDChars are rejected in model identifiers to keep them out of
// constructed URLs and logs. Defense in depth, not a security boundary.
const unsafeIDChars = `<>"';&|\`

// defaultConcurrency bounds the per-request fan-out over weight files.
const defaultConcurrency = 4

// vramHeadroom is the multiplier applied to native memory to account for
// activations and KV cache at a small context size.
const vramHeadroom = 1.2

// precisionTable lists the hypothetical precisions reported for every model,
// independent of its stored dtype.
var precisionTable = []struct {
	label         string
	bytesPerParam float64
}{
	{"fp32", 4},
	{"fp16", 2},
	{"int8", 1},
	{"int4", 0.5},
}

// Report is the externally visible result of an estimation.
type Report struct {
	Model              string            `json:"model"`
	TotalParameters    string            `json:"total_parameters"`
	NativeMemory       string            `json:"native_memory"`
	NativeDtype        safetensors.DType `json:"native_dtype"`
	MemoryRequirements map[string]string `json:"memory_requirements"`
	RecommendedMemory  string            `json:"recommended_memory"`
	Note               string            `json:"note"`
}

// Estimator aggregates remote safetensors headers into memory estimates.
// It holds no per-request state and is safe for concurrent use.
type Estimator struct {
	hub         *hub.Client
	log         logging.Logger
	concurrency int
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithConcurrency bounds the number of weight files whose headers are read
// in parallel within one request.
func WithConcurrency(n int) Option {
	return func(e *Estimator) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// New creates an Estimator backed by the given hub client.
func New(client *hub.Client, log logging.Logger, opts ...Option) *Estimator {
	e := &Estimator{
		hub:         client,
		log:         log,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate computes the memory report for a model at the given revision
// (empty means "main"). All failures are returned as wrapped sentinel errors
// from this package; nothing panics through to the caller.
func (e *Estimator) Estimate(ctx context.Context, modelID, revision string) (*Report, error) {
	modelID = strings.TrimSpace(modelID)
	if err := validateModelID(modelID); err != nil {
		return nil, err
	}

	metrics.ObserveUpstream("tree")
	files, err := e.hub.ListFiles(ctx, modelID, revision)
	if err != nil {
		return nil, classifyUpstreamError(modelID, err)
	}

	candidates := e.resolveWeightFiles(ctx, modelID, revision, files)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoWeightFiles, modelID)
	}

	total, err := e.collect(ctx, modelID, revision, candidates)
	if err != nil {
		return nil, err
	}

	e.log.WithFields(map[string]interface{}{
		"model": modelID,
		"files": len(candidates),
	}).Infof("aggregated %d tensors, %s native",
		total.tensors, units.BytesSize(float64(total.bytes)))

	return total.report(modelID), nil
}

// validateModelID checks the owner/name form and rejects characters that
// could smuggle content into constructed URLs.
func validateModelID(modelID string) error {
	owner, name, ok := strings.Cut(modelID, "/")
	if !ok || owner == "" || name == "" {
		return fmt.Errorf("%w: %q", ErrInvalidModelID, modelID)
	}
	if strings.ContainsAny(modelID, unsafeIDChars) || strings.ContainsAny(modelID, " \t\r\n") {
		return fmt.Errorf("%w: unsafe characters in %q", ErrInvalidModelID, modelID)
	}
	return nil
}

// resolveWeightFiles filters the listing to safetensors files and, for
// sharded models, restricts it to the shards the index actually references.
// An unreadable index falls back to the unfiltered listing.
func (e *Estimator) resolveWeightFiles(ctx context.Context, modelID, revision string, files []hub.RepoFile) []hub.RepoFile {
	weights := hub.FilterWeightFiles(files)

	indexFile := hub.FindShardIndex(files)
	if indexFile == nil {
		return weights
	}

	metrics.ObserveUpstream("index")
	index, err := e.hub.FetchShardIndex(ctx, modelID, revision, indexFile.Path)
	if err != nil {
		e.log.WithError(err).Warnf("shard index %s unreadable, using full listing", indexFile.Path)
		return weights
	}

	referenced := make(map[string]struct{})
	for _, shard := range index.ShardSet() {
		referenced[shard] = struct{}{}
	}

	var resolved []hub.RepoFile
	for _, f := range weights {
		if _, ok := referenced[f.Path]; ok {
			resolved = append(resolved, f)
		}
	}
	return resolved
}

// aggregate holds the running totals of an estimation.
type aggregate struct {
	mu      sync.Mutex
	tensors int
	params  int64
	bytes   int64
	byDtype map[safetensors.DType]int64
}

// add folds one file's header into the totals. The reserved metadata entry
// is already split out by the safetensors package.
func (a *aggregate) add(header *safetensors.Header) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, tensor := range header.Tensors {
		elements := tensor.Elements()
		a.tensors++
		a.params += elements
		a.bytes += tensor.ByteSize()
		a.byDtype[tensor.Dtype] += elements
	}
}

// dominantDtype returns the dtype holding the most parameters. Ties are
// resolved arbitrarily; the field is informational.
func (a *aggregate) dominantDtype() safetensors.DType {
	var dominant safetensors.DType
	var best int64 = -1
	for dtype, count := range a.byDtype {
		if count > best {
			dominant, best = dtype, count
		}
	}
	return dominant
}

func (a *aggregate) report(modelID string) *Report {
	requirements := make(map[string]string, len(precisionTable))
	for _, p := range precisionTable {
		requirements[p.label] = formatSize(float64(a.params) * p.bytesPerParam)
	}

	return &Report{
		Model:              modelID,
		TotalParameters:    formatParameters(a.params),
		NativeMemory:       formatSize(float64(a.bytes)),
		NativeDtype:        a.dominantDtype(),
		MemoryRequirements: requirements,
		RecommendedMemory:  formatSize(float64(a.bytes) * vramHeadroom),
		Note:               "recommended_memory includes 20% for activations/KV cache (2K context)",
	}
}

// collect reads the header of every candidate file with bounded fan-out and
// accumulates totals. Per-file failures are skipped; only an empty aggregate
// is an error.
func (e *Estimator) collect(ctx context.Context, modelID, revision string, candidates []hub.RepoFile) (*aggregate, error) {
	total := &aggregate{byDtype: make(map[safetensors.DType]int64)}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.concurrency)
	for _, file := range candidates {
		group.Go(func() error {
			metrics.ObserveUpstream("header")
			url := e.hub.ResolveURL(modelID, revision, file.Path)
			header, err := safetensors.FetchHeader(groupCtx, e.hub, url)
			if err != nil {
				// Soft failure: the file is excluded from aggregation.
				e.log.WithError(err).Debugf("skipping %s", file.Path)
				return nil
			}
			total.add(header)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, classifyUpstreamError(modelID, err)
	}

	if total.params == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnparseableMetadata, modelID)
	}
	return total, nil
}

// classifyUpstreamError maps a transport-layer failure onto the estimation
// error taxonomy.
func classifyUpstreamError(modelID string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %s", ErrUpstreamTimeout, modelID)
	}

	var notFound *hub.NotFoundError
	var authErr *hub.AuthError
	if errors.As(err, &notFound) || errors.As(err, &authErr) {
		return fmt.Errorf("%w: %s", ErrModelNotFound, modelID)
	}

	return fmt.Errorf("%w: %s", ErrUpstreamUnavailable, err)
}
