// Package geoindex is an in-memory "nearest N within radius" index over
// (longitude, latitude) points. An R-tree narrows the search to the bounding
// box of the circle; candidates are then filtered by exact great-circle
// distance and ordered nearest first.
package geoindex

import (
	"math"
	"sort"
	"sync"

	"dispatch/internal/pkg/geo"

	"github.com/dhconnelly/rtreego"
)

const (
	minBranching = 25
	maxBranching = 50

	// pointTolerance gives each point a non-degenerate box in the R-tree.
	pointTolerance = 1e-9
)

// Match is a value found by Nearest together with its distance from the centre.
type Match[V any] struct {
	Value          V
	DistanceMeters float64
}

type entry[K comparable, V any] struct {
	key   K
	lon   float64
	lat   float64
	value V
}

func (e *entry[K, V]) Bounds() rtreego.Rect {
	return rtreego.Point{e.lon, e.lat}.ToRect(pointTolerance)
}

// Index maps keys to positioned values. It is safe for concurrent use.
type Index[K comparable, V any] struct {
	mu      sync.RWMutex
	tree    *rtreego.Rtree
	entries map[K]*entry[K, V]
}

// New returns an empty index.
func New[K comparable, V any]() *Index[K, V] {
	return &Index[K, V]{
		tree:    rtreego.NewTree(2, minBranching, maxBranching),
		entries: make(map[K]*entry[K, V]),
	}
}

// Put stores value at (lon, lat) under key, replacing any previous entry.
func (ix *Index[K, V]) Put(key K, lon, lat float64, value V) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if old, ok := ix.entries[key]; ok {
		ix.tree.Delete(old)
	}
	e := &entry[K, V]{key: key, lon: lon, lat: lat, value: value}
	ix.entries[key] = e
	ix.tree.Insert(e)
}

// Remove drops key from the index and reports whether it was present.
func (ix *Index[K, V]) Remove(key K) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	old, ok := ix.entries[key]
	if !ok {
		return false
	}
	delete(ix.entries, key)
	ix.tree.Delete(old)
	return true
}

// Get returns the value stored under key.
func (ix *Index[K, V]) Get(key K) (V, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	e, ok := ix.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Len returns the number of stored entries.
func (ix *Index[K, V]) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Nearest returns up to limit values within radiusMeters of (lon, lat) for
// which keep returns true, closest first. Ties keep no particular order. A
// limit of zero or less means no limit; a nil keep accepts everything. The
// result is empty, never nil, when nothing qualifies.
func (ix *Index[K, V]) Nearest(lon, lat, radiusMeters float64, limit int, keep func(V) bool) []Match[V] {
	matches := make([]Match[V], 0)
	if !(radiusMeters >= 0) || math.IsInf(radiusMeters, 1) {
		return matches
	}

	ix.mu.RLock()
	seen := make(map[K]struct{})
	for _, box := range geo.BoundingBoxes(lon, lat, radiusMeters) {
		for _, s := range ix.tree.SearchIntersect(toRect(box)) {
			e := s.(*entry[K, V])
			if _, dup := seen[e.key]; dup {
				continue
			}
			seen[e.key] = struct{}{}

			d := geo.Distance(lon, lat, e.lon, e.lat)
			if !(d <= radiusMeters) {
				continue
			}
			if keep != nil && !keep(e.value) {
				continue
			}
			matches = append(matches, Match[V]{Value: e.value, DistanceMeters: d})
		}
	}
	ix.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].DistanceMeters < matches[j].DistanceMeters
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func toRect(b geo.Box) rtreego.Rect {
	lengths := []float64{
		b.MaxLon - b.MinLon + 2*pointTolerance,
		b.MaxLat - b.MinLat + 2*pointTolerance,
	}
	// lengths are strictly positive, so NewRect cannot fail.
	r, _ := rtreego.NewRect(rtreego.Point{b.MinLon - pointTolerance, b.MinLat - pointTolerance}, lengths)
	return r
}
