// Package corpus builds an in-memory inverted index over one parse
// pass's surviving requests, so EndpointEnricher can pull each group's
// candidate set by method/path facet instead of a linear scan, and
// cmd/skillgen can reuse the same index afterward for category-facet
// diagnostics. Unlike a live capture index, this is single-pass and
// read-only once built: nothing here needs the refresh/session-tracking
// machinery a long-lived proxy index would carry.
package corpus

import (
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/usestring/apiskill/pkg/types"
)

// Index is a read-only inverted index over a []ParsedRequest, built
// once by New and queried by facet for the remainder of the pipeline.
type Index struct {
	requests []types.ParsedRequest

	byHost           map[string]*roaring.Bitmap
	byMethod         map[string]*roaring.Bitmap
	byStatusBucket   map[int]*roaring.Bitmap // status / 100
	byNormalizedPath map[string]*roaring.Bitmap
	byCategory       map[string]*roaring.Bitmap
}

// New builds the index over requests. The category facet isn't built
// here since category isn't known until EndpointEnricher classifies
// each group; call BuildCategoryFacet once that's done.
func New(requests []types.ParsedRequest) *Index {
	idx := &Index{
		requests:         requests,
		byHost:           map[string]*roaring.Bitmap{},
		byMethod:         map[string]*roaring.Bitmap{},
		byStatusBucket:   map[int]*roaring.Bitmap{},
		byNormalizedPath: map[string]*roaring.Bitmap{},
		byCategory:       map[string]*roaring.Bitmap{},
	}
	for i := range requests {
		docID := uint32(i)
		r := &requests[i]
		add(idx.byHost, strings.ToLower(r.Host), docID)
		add(idx.byMethod, strings.ToUpper(r.Method), docID)
		add(idx.byStatusBucket, r.Status/100, docID)
		add(idx.byNormalizedPath, r.Method+" "+r.NormalizedPath, docID)
	}
	return idx
}

// BuildCategoryFacet indexes by EndpointEnricher's category assignment
// once it's known, keyed by "METHOD /normalized/path" -> category.
func (idx *Index) BuildCategoryFacet(categoryByKey map[string]string) {
	for i := range idx.requests {
		r := &idx.requests[i]
		key := r.Method + " " + r.NormalizedPath
		if cat, ok := categoryByKey[key]; ok {
			add(idx.byCategory, cat, uint32(i))
		}
	}
}

func add[K comparable](m map[K]*roaring.Bitmap, key K, docID uint32) {
	bm, ok := m[key]
	if !ok {
		bm = roaring.New()
		m[key] = bm
	}
	bm.Add(docID)
}

// Requests returns the backing slice the returned bitmaps index into.
func (idx *Index) Requests() []types.ParsedRequest { return idx.requests }

func (idx *Index) Host(host string) *roaring.Bitmap { return idx.byHost[strings.ToLower(host)] }

func (idx *Index) Method(method string) *roaring.Bitmap { return idx.byMethod[strings.ToUpper(method)] }

func (idx *Index) StatusBucket(bucket int) *roaring.Bitmap { return idx.byStatusBucket[bucket] }

func (idx *Index) Endpoint(method, normalizedPath string) *roaring.Bitmap {
	return idx.byNormalizedPath[method+" "+normalizedPath]
}

func (idx *Index) Category(category string) *roaring.Bitmap { return idx.byCategory[category] }

// Select materializes the ParsedRequests a bitmap references, in
// ascending document order.
func (idx *Index) Select(bm *roaring.Bitmap) []types.ParsedRequest {
	if bm == nil {
		return nil
	}
	out := make([]types.ParsedRequest, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, idx.requests[it.Next()])
	}
	return out
}

// And intersects bitmaps, returning a fresh bitmap (inputs untouched).
func And(bitmaps ...*roaring.Bitmap) *roaring.Bitmap {
	if len(bitmaps) == 0 {
		return roaring.New()
	}
	result := bitmaps[0].Clone()
	for _, bm := range bitmaps[1:] {
		if bm == nil {
			return roaring.New()
		}
		result.And(bm)
	}
	return result
}
