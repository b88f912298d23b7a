// Package tracer drives kernel.RayTrace across fixed-size batches of
// directions (spec §4.3), standing in for the "work-group size G" SIMT
// dispatch model with a bounded goroutine pool per batch. It owns the
// image-source deduplication map and the raw diffuse/image accumulators.
package tracer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/reuk/parallel-reverb-raytracer/geometry"
	"github.com/reuk/parallel-reverb-raytracer/kernel"
	"github.com/reuk/parallel-reverb-raytracer/rayverberr"
)

// DefaultBatchSize is the default work-group size G.
const DefaultBatchSize = 4096

// Tracer drives raytrace kernel launches over a fixed geometry.
type Tracer struct {
	geo       *geometry.Geometry
	batchSize int
	workers   int
}

// Option configures a Tracer.
type Option func(*Tracer)

// WithBatchSize overrides the work-group size G (spec §3's RayBatch).
func WithBatchSize(g int) Option {
	return func(t *Tracer) { t.batchSize = g }
}

// WithWorkers bounds the goroutine pool used per batch launch. Defaults to
// runtime.GOMAXPROCS(0), standing in for "work-group size" parallel
// dispatch (spec §4.2, §5).
func WithWorkers(n int) Option {
	return func(t *Tracer) { t.workers = n }
}

// New builds a Tracer over a fixed, already-validated Geometry.
func New(geo *geometry.Geometry, opts ...Option) *Tracer {
	t := &Tracer{geo: geo, batchSize: DefaultBatchSize, workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Trace partitions dirs into ceil(N/G) batches and launches RayTrace for
// every direction, accumulating diffuse impulses in ray order and
// deduplicating image-source paths with first-insertion-wins semantics
// (spec §4.3, §5). Cancellation is honored only between batches: a batch
// already in flight always runs to completion.
func (t *Tracer) Trace(ctx context.Context, dirs []geometry.Vec3, source, receiver geometry.Vec3, k, m int) (*RawResult, error) {
	if t.geo == nil {
		return nil, rayverberr.NewGeometryError(errors.New("tracer: geometry not built"))
	}

	result := &RawResult{batchSize: t.batchSize, m: m}
	seen := make(map[string]struct{})

	workers := t.workers
	if workers < 1 {
		workers = 1
	}

	for start := 0; start < len(dirs); start += t.batchSize {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		end := start + t.batchSize
		if end > len(dirs) {
			end = len(dirs)
		}
		batch := dirs[start:end]

		diffuse := make([][]kernel.Impulse, len(batch))
		image := make([][]kernel.Impulse, len(batch))
		imageIndex := make([][]int, len(batch))

		var wg sync.WaitGroup
		sem := make(chan struct{}, workers)
		launchErr := make(chan error, len(batch))
		for i, dir := range batch {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int, dir geometry.Vec3) {
				defer wg.Done()
				defer func() { <-sem }()
				defer func() {
					if r := recover(); r != nil {
						launchErr <- rayverberr.NewDeviceError(fmt.Errorf("ray launch panic: %v", r))
					}
				}()
				diffuse[i], image[i], imageIndex[i] = kernel.RayTrace(t.geo, source, receiver, dir, k, m)
			}(i, dir)
		}
		wg.Wait()
		close(launchErr)
		if err := <-launchErr; err != nil {
			return nil, err
		}

		for i := range batch {
			result.diffuse = append(result.diffuse, diffuse[i]...)
			for p := 0; p < m; p++ {
				if p != 0 && imageIndex[i][p] == 0 {
					continue
				}
				key := pathKey(imageIndex[i][:p+1])
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				result.images = append(result.images, image[i][p])
			}
		}
	}

	return result, nil
}

func pathKey(path []int) string {
	var b strings.Builder
	for i, v := range path {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

// RawResult holds the accumulated diffuse impulses and the deduplicated,
// first-insertion-ordered image-source impulses for a completed trace
// (spec §3's RawResult, §4.3).
type RawResult struct {
	diffuse   []kernel.Impulse
	images    []kernel.Impulse
	batchSize int
	m         int
}

// RawDiffuse returns the flat diffuse impulse vector, length N*K, in
// batch/ray order.
func (r *RawResult) RawDiffuse() []kernel.Impulse {
	return r.diffuse
}

// RawImages returns the deduplicated image-source impulses, padded with
// zero-volume impulses up to a multiple of G*M so attenuators can process
// the stream by batch (spec §4.3).
func (r *RawResult) RawImages() []kernel.Impulse {
	out := append([]kernel.Impulse(nil), r.images...)
	unit := r.batchSize * r.m
	if unit <= 0 {
		return out
	}
	if rem := len(out) % unit; rem != 0 {
		for i := 0; i < unit-rem; i++ {
			out = append(out, kernel.Impulse{})
		}
	}
	return out
}

// Images returns the deduplicated, unpadded image-source impulses. If
// removeDirect is set, the first-depth direct-path entry is dropped
// first (spec §4.3).
func (r *RawResult) Images(removeDirect bool) []kernel.Impulse {
	images := r.images
	if removeDirect && len(images) > 0 {
		images = images[1:]
	}
	return append([]kernel.Impulse(nil), images...)
}

// All concatenates the diffuse and (unpadded, deduplicated) image
// sections. If removeDirect is set, the first-depth direct-path entry is
// dropped from the image section first (spec §4.3).
func (r *RawResult) All(removeDirect bool) []kernel.Impulse {
	images := r.Images(removeDirect)
	out := make([]kernel.Impulse, 0, len(r.diffuse)+len(images))
	out = append(out, r.diffuse...)
	out = append(out, images...)
	return out
}

// NewRawResult builds a RawResult directly from already-computed diffuse
// and (deduplicated) image impulse slices, for callers that need to
// filter or recombine sections before attenuation — e.g. the top-level
// pipeline's output_mode selection.
func NewRawResult(diffuse, images []kernel.Impulse) *RawResult {
	return &RawResult{diffuse: diffuse, images: images}
}
