package portal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/gisadmin/internal/logger"
)

// MaxSearchItems is the most items one portal search returns.
const MaxSearchItems = 500

// Type filter modes.
const (
	FilterNone    = ""
	FilterInclude = "include"
	FilterExclude = "exclude"
)

// ErrNoItems is returned when a search finds nothing.
var ErrNoItems = errors.New("no portal items found")

// ResolveTypeFilter turns a filter mode and a list of item types into the
// list of types to search for. Include keeps the known types that are listed,
// exclude keeps the known types that are not. With no mode or no types the
// list is returned unchanged.
func ResolveTypeFilter(mode string, types []string) ([]string, error) {
	switch strings.ToLower(mode) {
	case FilterNone:
		return types, nil
	case FilterInclude, FilterExclude:
	default:
		return nil, fmt.Errorf("invalid type filter %q: expected %q, %q or an empty string", mode, FilterInclude, FilterExclude)
	}
	if len(types) == 0 {
		return nil, nil
	}

	listed := make(map[string]bool, len(types))
	for _, t := range types {
		listed[strings.ToLower(t)] = true
	}
	include := strings.EqualFold(mode, FilterInclude)

	var resolved []string
	for _, t := range ItemTypes {
		if listed[strings.ToLower(t)] == include {
			resolved = append(resolved, t)
		}
	}
	return resolved, nil
}

// typeClause returns `type:("A" OR "B")`, or "" for no types.
func typeClause(types []string) string {
	if len(types) == 0 {
		return ""
	}
	quoted := make([]string, len(types))
	for i, t := range types {
		quoted[i] = `"` + strings.ReplaceAll(t, `"`, `\"`) + `"`
	}
	return "type:(" + strings.Join(quoted, " OR ") + ")"
}

func joinQuery(clauses ...string) string {
	var parts []string
	for _, c := range clauses {
		if c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " AND ")
}

// Searcher collects every portal item matching a type filter, working around
// the per-search item cap.
type Searcher struct {
	client   Client
	maxItems int
	maxUsers int
	logger   *logger.Logger
}

// NewSearcher creates a Searcher. maxItems is the per-search cap and
// maxUsers bounds the member list used by the per-owner fallback.
func NewSearcher(client Client, maxItems, maxUsers int, log *logger.Logger) (*Searcher, error) {
	if client == nil {
		return nil, fmt.Errorf("portal client is nil")
	}
	if maxItems <= 0 {
		maxItems = MaxSearchItems
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Searcher{client: client, maxItems: maxItems, maxUsers: maxUsers, logger: log}, nil
}

// QueryItems returns the items of the listed types, excluding items owned by
// esri accounts. When the search hits the cap it is repeated per owner for
// every member using storage, and an owner who hits the cap is searched per
// item type. Items are returned once each, in the order first found.
func (s *Searcher) QueryItems(ctx context.Context, mode string, types []string) ([]Item, error) {
	log := s.logger.WithOperation("portal-items")

	types, err := ResolveTypeFilter(mode, types)
	if err != nil {
		return nil, err
	}
	typeQ := typeClause(types)

	items, err := s.client.SearchItems(ctx, joinQuery(typeQ, "NOT owner:esri*"), s.maxItems)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	if len(items) < s.maxItems {
		log.Infow("Portal items found", "items", len(items))
		return items, nil
	}

	log.Infow("Search reached the item cap, searching per owner", "cap", s.maxItems)
	found := orderedmap.NewOrderedMap[string, Item]()

	users, err := s.client.SearchUsers(ctx, s.maxUsers)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		if user.StorageUsage == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ownerQ := "owner:" + user.Username
		byOwner, err := s.client.SearchItems(ctx, joinQuery(typeQ, ownerQ), s.maxItems)
		if err != nil {
			return nil, err
		}
		if len(byOwner) < s.maxItems {
			addItems(found, byOwner)
			continue
		}

		perType := types
		if len(perType) == 0 {
			perType = ItemTypes
		}
		for _, itemType := range perType {
			byType, err := s.client.SearchItems(ctx, joinQuery(typeClause([]string{itemType}), ownerQ), s.maxItems)
			if err != nil {
				return nil, err
			}
			if len(byType) >= s.maxItems {
				log.Warnw("Owner has more items of one type than a search returns, results are incomplete",
					"owner", user.Username,
					"type", itemType,
					"cap", s.maxItems,
				)
			}
			addItems(found, byType)
		}
	}

	if found.Len() == 0 {
		return nil, ErrNoItems
	}
	result := make([]Item, 0, found.Len())
	for el := found.Front(); el != nil; el = el.Next() {
		result = append(result, el.Value)
	}
	log.Infow("Portal items found", "items", len(result), "owners", len(users))
	return result, nil
}

func addItems(found *orderedmap.OrderedMap[string, Item], items []Item) {
	for _, item := range items {
		if _, ok := found.Get(item.ID); !ok {
			found.Set(item.ID, item)
		}
	}
}
