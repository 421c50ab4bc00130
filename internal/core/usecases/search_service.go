package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jobbmapper/jobbmapper-api/internal/core/domain"
	"github.com/jobbmapper/jobbmapper-api/internal/core/ports"
	"github.com/jobbmapper/jobbmapper-api/internal/pkg/geospatial"
	"github.com/jobbmapper/jobbmapper-api/internal/pkg/metrics"
)

// DefaultMaxMunicipalities caps how many municipalities one URL may carry.
const DefaultMaxMunicipalities = 80

// User-facing outcome messages, in the front end's language.
const (
	MsgDatasetUnavailable = "Erro: A base de dados de cidades não foi carregada."
	MsgMissingBounds      = "Coordenadas não fornecidas."
	MsgNoResults          = "Nenhuma cidade encontrada na área."
	msgAreaTooLarge       = "Área muito grande. Selecione menos de %d cidades."
)

// SearchOptions tune URL composition.
type SearchOptions struct {
	BaseURL           string
	MaxMunicipalities int
	Policy            RepresentativePolicy
	PolicyName        string
	CacheTTL          int // seconds; 0 disables caching
}

// SearchService turns viewport queries into job-search URLs against a shared,
// read-only dataset. It is safe for concurrent use.
type SearchService struct {
	dataset *domain.Dataset
	opts    SearchOptions
	cache   ports.CacheService
	events  ports.EventPublisher
}

// NewSearchService creates a new SearchService. cache and events may be nil.
func NewSearchService(dataset *domain.Dataset, opts SearchOptions, cache ports.CacheService, events ports.EventPublisher) *SearchService {
	if dataset == nil {
		dataset = domain.EmptyDataset()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultJobSearchBaseURL
	}
	if opts.MaxMunicipalities <= 0 {
		opts.MaxMunicipalities = DefaultMaxMunicipalities
	}
	if opts.Policy == nil {
		opts.Policy = FirstMatch
		opts.PolicyName = "first"
	}
	return &SearchService{dataset: dataset, opts: opts, cache: cache, events: events}
}

// Dataset returns the snapshot the service queries.
func (s *SearchService) Dataset() *domain.Dataset {
	return s.dataset
}

// Limit returns the municipality cap.
func (s *SearchService) Limit() int {
	return s.opts.MaxMunicipalities
}

// MunicipalitiesInView returns the municipalities inside b in dataset order.
func (s *SearchService) MunicipalitiesInView(b domain.Bounds) []domain.Municipality {
	return s.dataset.Within(b)
}

// BuildURL runs the query pipeline. Every result is an Outcome value; the
// pipeline never fails.
func (s *SearchService) BuildURL(ctx context.Context, q domain.Query) domain.Outcome {
	ctx, span := otel.Tracer("jobbmapper/usecases").Start(ctx, "search.build_url")
	defer span.End()

	out, cached := s.buildURL(ctx, q)

	metrics.QueryOutcomes.WithLabelValues(string(out.Kind)).Inc()
	span.SetAttributes(
		attribute.String("search.outcome", string(out.Kind)),
		attribute.Int("search.matches", out.Matches),
		attribute.Bool("search.cached", cached),
	)
	s.publish(ctx, q, out, cached)

	return out
}

func (s *SearchService) buildURL(ctx context.Context, q domain.Query) (domain.Outcome, bool) {
	if s.dataset.Empty() {
		return domain.Outcome{Kind: domain.OutcomeDatasetUnavailable, Message: MsgDatasetUnavailable}, false
	}
	if q.Bounds == nil {
		return domain.Outcome{Kind: domain.OutcomeMissingBounds, Message: MsgMissingBounds}, false
	}

	key := s.cacheKey(q)
	if out, ok := s.cached(ctx, key); ok {
		return out, true
	}

	matches := s.dataset.Within(*q.Bounds)
	metrics.MatchedMunicipalities.Observe(float64(len(matches)))

	if len(matches) == 0 {
		return domain.Outcome{Kind: domain.OutcomeNoResults, Message: MsgNoResults}, false
	}
	if len(matches) > s.opts.MaxMunicipalities {
		return domain.Outcome{
			Kind:    domain.OutcomeAreaTooLarge,
			Message: fmt.Sprintf(msgAreaTooLarge, s.opts.MaxMunicipalities),
			Matches: len(matches),
			Limit:   s.opts.MaxMunicipalities,
		}, false
	}

	region := domain.ResolveRegion(s.opts.Policy(matches).RegionCode)
	cities := make([]string, len(matches))
	for i, m := range matches {
		cities[i] = m.Name
	}

	out := domain.Outcome{
		Kind: domain.OutcomeSuccess,
		URL: ComposeURL(s.opts.BaseURL, URLParams{
			Term:           q.Term,
			Company:        q.Company,
			Sort:           q.Sort,
			Region:         region,
			Cities:         cities,
			PWD:            q.PWD,
			WorkplaceTypes: q.WorkplaceTypes,
		}),
		Matches: len(matches),
		Region:  region,
	}
	s.store(ctx, key, out)
	return out, false
}

// cacheKeyInput is the JSON-encoded form of everything that influences a
// URL. Each field is encoded separately so no two queries share a digest.
type cacheKeyInput struct {
	BaseURL        string        `json:"base"`
	Limit          int           `json:"limit"`
	Policy         string        `json:"policy"`
	Bounds         domain.Bounds `json:"bounds"`
	Term           string        `json:"term"`
	Sort           string        `json:"sort"`
	PWD            bool          `json:"pwd"`
	WorkplaceTypes []string      `json:"workplace_types"`
}

// cacheKey digests the normalized query together with the options that
// influence the URL.
func (s *SearchService) cacheKey(q domain.Query) string {
	if s.cache == nil || s.opts.CacheTTL <= 0 {
		return ""
	}
	raw, err := json.Marshal(cacheKeyInput{
		BaseURL:        s.opts.BaseURL,
		Limit:          s.opts.MaxMunicipalities,
		Policy:         s.opts.PolicyName,
		Bounds:         *q.Bounds,
		Term:           SearchTerm(q.Term, q.Company),
		Sort:           strings.TrimSpace(q.Sort),
		PWD:            q.PWD,
		WorkplaceTypes: q.WorkplaceTypes,
	})
	if err != nil {
		return "" // NaN or infinite bounds skip the cache
	}
	sum := sha256.Sum256(raw)
	return "jobsearch:url:" + hex.EncodeToString(sum[:16])
}

func (s *SearchService) cached(ctx context.Context, key string) (domain.Outcome, bool) {
	if key == "" {
		return domain.Outcome{}, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.CacheMisses.WithLabelValues("build_url").Inc()
		return domain.Outcome{}, false
	}
	var out domain.Outcome
	if err := json.Unmarshal(data, &out); err != nil || !out.OK() {
		metrics.CacheMisses.WithLabelValues("build_url").Inc()
		return domain.Outcome{}, false
	}
	metrics.CacheHits.WithLabelValues("build_url").Inc()
	return out, true
}

func (s *SearchService) store(ctx context.Context, key string, out domain.Outcome) {
	if key == "" {
		return
	}
	data, err := json.Marshal(out)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.opts.CacheTTL); err != nil {
		slog.WarnContext(ctx, "cache set failed", "key", key, "error", err)
	}
}

func (s *SearchService) publish(ctx context.Context, q domain.Query, out domain.Outcome, cached bool) {
	if s.events == nil {
		return
	}
	event := &domain.SearchEvent{
		Time:    time.Now().UTC(),
		Outcome: out.Kind,
		Matches: out.Matches,
		Region:  out.Region,
		HasTerm: SearchTerm(q.Term, q.Company) != "",
		Cached:  cached,
	}
	if b := q.Bounds; b != nil {
		event.ViewportKm = geospatial.DiagonalKm(b.SouthWest.Lat, b.SouthWest.Lng, b.NorthEast.Lat, b.NorthEast.Lng)
	}
	if err := s.events.PublishSearchEvent(ctx, event); err != nil {
		slog.WarnContext(ctx, "publish search event failed", "error", err)
	}
}
