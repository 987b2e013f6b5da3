package catalog

import (
	"context"
	"encoding/json"
	"log"

	"github.com/nucleus/catalog-api/internal/source"
	"github.com/nucleus/catalog-api/internal/store"
)

// =============================================================================
// CACHE / FRESHNESS DECISION LOGIC
// Decides, per request, whether to reuse persisted transformed data,
// partially re-transform, or transform from scratch, then persists the
// result where policy requires.
// =============================================================================

// Transformation strategies, reported for observability and asserted in tests.
const (
	StrategyReuseCached        = "reuse_cached"
	StrategyReinferSchema      = "reinfer_schema"
	StrategyPartialRetransform = "partial_retransform"
	StrategyFieldMapped        = "field_mapped"
	StrategyFreshTransform     = "fresh_transform"
)

// Service resolves catalogs for data sources. Each request is an
// independent, stateless cycle: two concurrent requests for the same
// source may both transform and persist; the last writer wins.
type Service struct {
	store       store.Store
	transformer SourceTransformer
}

// NewService creates a catalog service.
func NewService(st store.Store, transformer SourceTransformer) *Service {
	return &Service{store: st, transformer: transformer}
}

// ResolveCatalog produces the catalog for a source, choosing among reuse,
// schema re-inference, partial re-transform, field-mapped interpretation,
// and fresh transform. The chosen strategy is returned alongside.
func (s *Service) ResolveCatalog(ctx context.Context, ds *source.DataSource, req PageRequest) (*UnifiedDataCatalog, string, error) {
	req = req.Normalize()

	state, err := s.store.GetTransformState(ctx, ds.ID)
	if err != nil {
		return nil, "", err
	}

	var cat *UnifiedDataCatalog
	var strategy string

	switch {
	case ds.Type == source.TypeAPI:
		// API sources are backed by a mutable external system; persisted
		// data is never trusted.
		cat, err = s.freshTransform(ctx, ds, req)
		strategy = StrategyFreshTransform

	case state.HasData():
		cat, strategy, err = s.resolveFromPersisted(ctx, ds, state, req)

	default:
		cat, err = s.freshTransform(ctx, ds, req)
		strategy = StrategyFreshTransform
	}
	if err != nil {
		return nil, "", err
	}

	s.persistIfNeeded(ctx, ds, state, cat)

	log.Printf("resolved catalog for source %s via %s: %d/%d records materialized",
		ds.ID, strategy, len(cat.Records), cat.TotalRecords)
	return cat, strategy, nil
}

// resolveFromPersisted handles the non-API, persisted-data branches.
func (s *Service) resolveFromPersisted(ctx context.Context, ds *source.DataSource, state *store.TransformState, req PageRequest) (*UnifiedDataCatalog, string, error) {
	decoded := DecodePersisted(state.TransformedData.String)

	switch decoded.Kind {
	case PersistedFullCatalog:
		persisted := decoded.Catalog
		if !persisted.RecordsElided() {
			if len(persisted.Schema.Fields) == 0 {
				// Cheap repair: re-derive the schema from the records we
				// already have instead of re-reading source content.
				return persisted.WithInferredSchema(), StrategyReinferSchema, nil
			}
			return persisted, StrategyReuseCached, nil
		}
		cat, err := s.retransformElided(ctx, ds, persisted, req)
		return cat, StrategyPartialRetransform, err

	case PersistedFieldMapped:
		return FieldMappedCatalog(ds, decoded.Rows), StrategyFieldMapped, nil

	default:
		// Persisted state matches no recognized shape. Recompute, with a
		// cap as a bandwidth/memory guard.
		opts := TransformOptions{MaxRecords: minInt(FreshTransformRecordCap, req.Page*req.PageSize+100)}
		cat, err := s.transformer.Transform(ctx, ds, opts)
		return cat, StrategyFreshTransform, err
	}
}

// retransformElided re-transforms a source whose persisted catalog had its
// records elided for size. Small datasets load fully; large ones load just
// enough to serve the requested page. The previously saved count remains
// authoritative because a capped re-transform cannot re-derive the true
// total.
func (s *Service) retransformElided(ctx context.Context, ds *source.DataSource, persisted *UnifiedDataCatalog, req PageRequest) (*UnifiedDataCatalog, error) {
	savedTotal := persisted.SavedTotal()

	opts := TransformOptions{}
	if !req.SkipPagination && savedTotal >= FullLoadThreshold {
		opts.MaxRecords = maxInt(req.PageSize, req.Page*req.PageSize)
	}

	cat, err := s.transformer.Transform(ctx, ds, opts)
	if err != nil {
		return nil, err
	}
	if savedTotal > 0 {
		cat = cat.WithTotalRecords(savedTotal)
	}
	return cat, nil
}

// freshTransform computes a catalog from source, capping materialization
// unless the caller explicitly asked for the full set.
func (s *Service) freshTransform(ctx context.Context, ds *source.DataSource, req PageRequest) (*UnifiedDataCatalog, error) {
	opts := TransformOptions{}
	if !req.SkipPagination {
		opts.MaxRecords = FreshTransformRecordCap
	}
	return s.transformer.Transform(ctx, ds, opts)
}

// persistIfNeeded writes the computed catalog back to the store. Two
// conditions apply independently: (a) first-ever transformation or an API
// source, and (b) no transformed data persisted yet at all (so the
// field-mapping feature has something to read). Write failures are logged
// and swallowed; the computed result is still served.
func (s *Service) persistIfNeeded(ctx context.Context, ds *source.DataSource, state *store.TransformState, cat *UnifiedDataCatalog) {
	firstTransform := !state.HasData() && (state == nil || !state.TransformedAt.Valid)

	if firstTransform || ds.Type == source.TypeAPI {
		s.persist(ctx, ds, cat)
	}
	if !state.HasData() {
		s.persist(ctx, ds, cat)
	}
}

func (s *Service) persist(ctx context.Context, ds *source.DataSource, cat *UnifiedDataCatalog) {
	toSave := cat
	if cat.TotalRecords > PersistRecordLimit {
		toSave = cat.MetadataOnly()
	}

	raw, err := json.Marshal(toSave)
	if err != nil {
		log.Printf("failed to serialize catalog for source %s: %v", ds.ID, err)
		return
	}
	if err := s.store.SaveTransformState(ctx, ds.ID, string(raw), cat.TotalRecords); err != nil {
		log.Printf("failed to persist catalog for source %s: %v", ds.ID, err)
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
