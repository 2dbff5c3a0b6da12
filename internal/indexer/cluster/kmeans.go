// Package cluster trains and applies the k-means partition over sentence
// embeddings used by the clustered term filter.
package cluster

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/internal/vector"
	apperrors "github.com/Adithya-Monish-Kumar-K/Abstract-Search-Engine/pkg/errors"
)

// Model stores the centroids and the label of every training point (one
// per sentIdx).
type Model struct {
	Centroids []vector.Dense `json:"centroids"`
	Labels    []int32        `json:"labels"`
}

// Dim returns the centroid dimensionality.
func (m *Model) Dim() int {
	if len(m.Centroids) == 0 {
		return 0
	}
	return len(m.Centroids[0])
}

// Predict returns the label of the nearest centroid (squared Euclidean).
func (m *Model) Predict(v vector.Vector) (int, error) {
	if len(m.Centroids) == 0 {
		return 0, fmt.Errorf("cluster model has no centroids")
	}
	if v.Dim() != m.Dim() {
		return 0, fmt.Errorf("%w: query %d vs centroids %d", apperrors.ErrShapeMismatch, v.Dim(), m.Dim())
	}
	return nearest(m.Centroids, vector.ToDense(v)), nil
}

// Members returns every id carrying label, in id order.
func (m *Model) Members(label int) []uint32 {
	var out []uint32
	for id, l := range m.Labels {
		if int(l) == label {
			out = append(out, uint32(id))
		}
	}
	return out
}

// Options control training.
type Options struct {
	K         int
	MaxIter   int
	Seed      int64
	Tolerance float64
}

// Train runs Lloyd's algorithm with k-means++ seeding. The fixed seed makes
// repeated builds produce the same partition.
func Train(ctx context.Context, points []vector.Dense, opts Options) (*Model, error) {
	if opts.K <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", opts.K)
	}
	if len(points) < opts.K {
		return nil, fmt.Errorf("need at least %d points, got %d", opts.K, len(points))
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = 100
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = 1e-4
	}
	dim := len(points[0])
	for i, p := range points {
		if len(p) != dim {
			return nil, fmt.Errorf("%w: point %d has %d dims, want %d", apperrors.ErrShapeMismatch, i, len(p), dim)
		}
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	centroids := seedPlusPlus(points, opts.K, rng)
	labels := make([]int32, len(points))

	for iter := 0; iter < opts.MaxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i, p := range points {
			labels[i] = int32(nearest(centroids, p))
		}
		next := make([][]float64, opts.K)
		counts := make([]int, opts.K)
		for k := range next {
			next[k] = make([]float64, dim)
		}
		for i, p := range points {
			k := labels[i]
			counts[k]++
			for d, x := range p {
				next[k][d] += float64(x)
			}
		}
		var shift float64
		for k := range centroids {
			if counts[k] == 0 {
				// empty cluster keeps its centroid
				continue
			}
			updated := make(vector.Dense, dim)
			for d := range updated {
				updated[d] = float32(next[k][d] / float64(counts[k]))
			}
			shift += sqDist(centroids[k], updated)
			centroids[k] = updated
		}
		if shift <= opts.Tolerance {
			break
		}
	}
	for i, p := range points {
		labels[i] = int32(nearest(centroids, p))
	}
	return &Model{Centroids: centroids, Labels: labels}, nil
}

func seedPlusPlus(points []vector.Dense, k int, rng *rand.Rand) []vector.Dense {
	centroids := make([]vector.Dense, 0, k)
	first := points[rng.Intn(len(points))]
	centroids = append(centroids, append(vector.Dense(nil), first...))

	dist := make([]float64, len(points))
	for len(centroids) < k {
		var total float64
		for i, p := range points {
			dist[i] = sqDist(centroids[nearest(centroids, p)], p)
			total += dist[i]
		}
		pick := 0
		if total > 0 {
			target := rng.Float64() * total
			for i, d := range dist {
				target -= d
				if target <= 0 {
					pick = i
					break
				}
			}
		} else {
			pick = rng.Intn(len(points))
		}
		centroids = append(centroids, append(vector.Dense(nil), points[pick]...))
	}
	return centroids
}

func nearest(centroids []vector.Dense, p vector.Dense) int {
	best, bestDist := 0, math.Inf(1)
	for k, c := range centroids {
		if d := sqDist(c, p); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}

func sqDist(a, b vector.Dense) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
