// Package catalog implements discovery over the remote offer catalog:
// plain listing, location and category filters, and fuzzy lookup by name or
// shared link. All reads go through the blanes gateway per call; nothing is
// cached durably.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"dabachat_backend/internal/blanes"
	"dabachat_backend/platform/apperr"
	"dabachat_backend/platform/logger"
	"dabachat_backend/platform/textmatch"
)

const (
	remotePageSize = 10  // page size of the plain list endpoint
	bulkPageSize   = 100 // page size when the whole catalog is needed
	maxRemotePages = 50

	// DefaultOffset and MaxOffset bound how many items one listing returns.
	DefaultOffset = 10
	MaxOffset     = 25

	// DefaultMatchLimit and DefaultScoreThreshold tune the fuzzy lookup.
	DefaultMatchLimit     = 10
	DefaultScoreThreshold = 60
)

// Gateway is the slice of the blanes client the catalog needs.
type Gateway interface {
	ListBlanes(ctx context.Context, page, perPage int) ([]blanes.Blane, blanes.Meta, error)
	ListByCategory(ctx context.Context, categoryID, page, perPage int) ([]blanes.Blane, blanes.Meta, error)
	GetBlane(ctx context.Context, id int) (blanes.Blane, error)
	ListCategories(ctx context.Context) ([]blanes.Category, error)
}

// Page is one window of catalog results.
type Page struct {
	Items []blanes.Blane
	Start int // 1-based position of the first item
	End   int // 1-based position of the last item
	Total int
}

// HasMore reports whether results remain past this window.
func (p Page) HasMore() bool { return p.End < p.Total }

// Match is a fuzzy lookup result.
type Match struct {
	Blane blanes.Blane
	Score int
}

// Service implements the catalog operations.
type Service struct {
	gateway   Gateway
	districts Districts
	logger    *logger.Logger
}

// NewService wires the catalog.
func NewService(gateway Gateway, districts Districts, log *logger.Logger) *Service {
	return &Service{gateway: gateway, districts: districts, logger: log}
}

// Districts exposes the embedded district reference data.
func (s *Service) Districts() Districts { return s.districts }

// Categories fetches the remote category list.
func (s *Service) Categories(ctx context.Context) ([]blanes.Category, error) {
	return s.gateway.ListCategories(ctx)
}

// Info fetches one offer by ID.
func (s *Service) Info(ctx context.Context, id int) (blanes.Blane, error) {
	return s.gateway.GetBlane(ctx, id)
}

// ListRange returns the window [start, start+offset) of the active catalog,
// newest first. The remote paginates in tens, so the window may span
// several remote pages.
func (s *Service) ListRange(ctx context.Context, start, offset int) (Page, error) {
	start, offset = clampWindow(start, offset)

	firstPage := ((start - 1) / remotePageSize) + 1
	fetchedFrom := (firstPage - 1) * remotePageSize // 0-based position of the first fetched item

	var fetched []blanes.Blane
	total := 0
	for page := firstPage; page <= firstPage+maxRemotePages; page++ {
		batch, meta, err := s.gateway.ListBlanes(ctx, page, remotePageSize)
		if err != nil {
			return Page{}, err
		}
		total = meta.Total
		if start > total {
			return Page{}, apperr.NotFound(fmt.Sprintf(
				"start position %d is beyond available blanes, total blanes: %d", start, total))
		}
		if len(batch) == 0 {
			break
		}
		fetched = append(fetched, batch...)
		if fetchedFrom+len(fetched) >= min(start-1+offset, total) {
			break
		}
	}

	from := start - 1 - fetchedFrom
	if from < 0 || from >= len(fetched) {
		return Page{}, apperr.NotFound(fmt.Sprintf(
			"no blanes found in range %d to %d", start, start+offset-1))
	}
	to := min(from+offset, len(fetched))

	items := fetched[from:to]
	return Page{
		Items: items,
		Start: start,
		End:   start + len(items) - 1,
		Total: total,
	}, nil
}

// LocationFilter narrows a category listing by city and district.
type LocationFilter struct {
	District string
	Category string
	City     string
	Start    int
	Offset   int
}

// Summary renders the active filters for display.
func (f LocationFilter) Summary() string {
	var parts []string
	if f.City != "" {
		parts = append(parts, "City: "+f.City)
	}
	if f.District != "" {
		parts = append(parts, "District: "+f.District)
	}
	if f.Category != "" {
		parts = append(parts, "Category: "+f.Category)
	}
	if len(parts) == 0 {
		return "All locations"
	}
	return strings.Join(parts, " | ")
}

// FilterByLocation lists offers of a category, optionally narrowed to a city
// and a district. District matching is textual: an offer matches when any
// known sub-area of the district appears in its name or description.
// District hits sort ahead of the rest.
func (s *Service) FilterByLocation(ctx context.Context, filter LocationFilter) (Page, error) {
	filter.Start, filter.Offset = clampWindow(filter.Start, filter.Offset)

	if strings.TrimSpace(filter.Category) == "" {
		names, err := s.categoryNames(ctx)
		if err != nil {
			return Page{}, err
		}
		return Page{}, apperr.Validation(
			"please provide a category, available categories: " + strings.Join(names, ", "))
	}

	categoryID, err := s.resolveCategory(ctx, filter.Category)
	if err != nil {
		return Page{}, err
	}

	all, err := s.listAllByCategory(ctx, categoryID)
	if err != nil {
		return Page{}, err
	}

	cityNorm := textmatch.Fold(filter.City)
	var subAreas []string
	if strings.TrimSpace(filter.District) != "" {
		for _, sub := range s.districts.SubAreas(filter.District) {
			subAreas = append(subAreas, textmatch.Fold(sub))
		}
	}

	var districtHits, rest []blanes.Blane
	for _, b := range all {
		if cityNorm != "" && !strings.Contains(textmatch.Fold(b.City), cityNorm) {
			continue
		}
		if len(subAreas) == 0 && strings.TrimSpace(filter.District) != "" {
			// Unknown district name: nothing can match it.
			continue
		}
		if len(subAreas) > 0 {
			searchable := textmatch.Fold(b.Name + " " + b.Description)
			if !containsAny(searchable, subAreas) {
				continue
			}
			districtHits = append(districtHits, b)
			continue
		}
		rest = append(rest, b)
	}
	matched := append(districtHits, rest...)

	if len(matched) == 0 {
		return Page{}, apperr.NotFound(fmt.Sprintf(
			"no blanes found for %s, try different search criteria", filter.Summary()))
	}
	if filter.Start > len(matched) {
		return Page{}, apperr.NotFound(fmt.Sprintf(
			"start position %d exceeds total results (%d), try a lower start position",
			filter.Start, len(matched)))
	}

	end := min(filter.Start+filter.Offset-1, len(matched))
	return Page{
		Items: matched[filter.Start-1 : end],
		Start: filter.Start,
		End:   end,
		Total: len(matched),
	}, nil
}

// FindByNameOrLink fuzzy-matches a user-typed name, or the de-slugged tail
// of a shared link, against every active offer's name and slug.
func (s *Service) FindByNameOrLink(ctx context.Context, query string, limit, threshold int) ([]Match, error) {
	name := ExtractQueryName(query)
	if name == "" {
		return nil, apperr.Validation("please provide a blane name or link")
	}
	if limit < 1 {
		limit = DefaultMatchLimit
	}
	if threshold <= 0 {
		threshold = DefaultScoreThreshold
	}

	all, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}

	var matches []Match
	for _, b := range all {
		if score := scoreAgainst(name, b); score >= threshold {
			matches = append(matches, Match{Blane: b, Score: score})
		}
	}
	if len(matches) == 0 {
		return nil, apperr.NotFound(fmt.Sprintf("no similar blanes found for %q", name))
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// scoreAgainst takes the best fuzzy score across the offer's name and its
// de-slugged slug.
func scoreAgainst(query string, b blanes.Blane) int {
	best := 0
	if b.Name != "" {
		if s := textmatch.Score(query, b.Name); s > best {
			best = s
		}
	}
	if b.Slug != "" {
		slug := strings.NewReplacer("-", " ", "_", " ").Replace(b.Slug)
		if s := textmatch.Score(query, slug); s > best {
			best = s
		}
	}
	return best
}

func (s *Service) resolveCategory(ctx context.Context, name string) (int, error) {
	categories, err := s.gateway.ListCategories(ctx)
	if err != nil {
		return 0, err
	}

	folded := textmatch.Fold(name)
	for _, c := range categories {
		if textmatch.Fold(c.Name) == folded {
			return c.ID, nil
		}
	}
	// Substring fallback in both directions; ambiguous input may match an
	// unintended category, first hit wins.
	for _, c := range categories {
		cn := textmatch.Fold(c.Name)
		if strings.Contains(cn, folded) || strings.Contains(folded, cn) {
			return c.ID, nil
		}
	}

	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return 0, apperr.NotFound(fmt.Sprintf(
		"category %q not found, available categories: %s", name, strings.Join(names, ", ")))
}

func (s *Service) categoryNames(ctx context.Context) ([]string, error) {
	categories, err := s.gateway.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names, nil
}

func (s *Service) listAll(ctx context.Context) ([]blanes.Blane, error) {
	var all []blanes.Blane
	for page := 1; page <= maxRemotePages; page++ {
		batch, meta, err := s.gateway.ListBlanes(ctx, page, bulkPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) == 0 || len(batch) < bulkPageSize || (meta.LastPage > 0 && page >= meta.LastPage) {
			break
		}
	}
	return all, nil
}

func (s *Service) listAllByCategory(ctx context.Context, categoryID int) ([]blanes.Blane, error) {
	var all []blanes.Blane
	for page := 1; page <= maxRemotePages; page++ {
		batch, meta, err := s.gateway.ListByCategory(ctx, categoryID, page, bulkPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) == 0 || len(batch) < bulkPageSize || (meta.LastPage > 0 && page >= meta.LastPage) {
			break
		}
	}
	return all, nil
}

func clampWindow(start, offset int) (int, int) {
	if start < 1 {
		start = 1
	}
	if offset < 1 {
		offset = DefaultOffset
	}
	if offset > MaxOffset {
		offset = MaxOffset
	}
	return start, offset
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
