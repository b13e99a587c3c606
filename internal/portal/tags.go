package portal

import (
	"context"
	"fmt"
	"sort"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/gisadmin/internal/logger"
)

// NoTagsLabel stands in for items without tags in the tag histogram.
const NoTagsLabel = "<No Tags>"

// TagCount is one row of the tag histogram.
type TagCount struct {
	Tag   string
	Count int
}

// TagHistogram counts how many times each tag is used across items, in the
// order tags are first seen. Empty tags and untagged items count under
// NoTagsLabel.
func TagHistogram(items []Item) []TagCount {
	counts := orderedmap.NewOrderedMap[string, int]()
	add := func(tag string) {
		n, _ := counts.Get(tag)
		counts.Set(tag, n+1)
	}

	for _, item := range items {
		if len(item.Tags) == 0 {
			add(NoTagsLabel)
			continue
		}
		for _, tag := range item.Tags {
			if tag == "" {
				tag = NoTagsLabel
			}
			add(tag)
		}
	}

	result := make([]TagCount, 0, counts.Len())
	for el := counts.Front(); el != nil; el = el.Next() {
		result = append(result, TagCount{Tag: el.Key, Count: el.Value})
	}
	return result
}

// SortByCount orders a histogram by descending count, then by tag.
func SortByCount(counts []TagCount) {
	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Tag < counts[j].Tag
	})
}

// TagUpdate is the planned tag change of one item. NewTags is nil when the
// item is left alone.
type TagUpdate struct {
	Item    Item
	OldTags []string
	NewTags []string
}

// Changed reports whether the update rewrites the item's tags.
func (u TagUpdate) Changed() bool {
	return u.NewTags != nil
}

// PlanTagUpdates maps each item's tags through mapping. Tags missing from the
// mapping are kept; tags mapped to "" are dropped; duplicates collapse. Items
// without tags, and items whose tag set does not change, get no update.
func PlanTagUpdates(items []Item, mapping map[string]string) []TagUpdate {
	plan := make([]TagUpdate, 0, len(items))
	for _, item := range items {
		update := TagUpdate{Item: item, OldTags: item.Tags}
		if hasTags(item.Tags) {
			newTags := remapTags(item.Tags, mapping)
			if !sameTagSet(item.Tags, newTags) {
				update.NewTags = newTags
			}
		}
		plan = append(plan, update)
	}
	return plan
}

func hasTags(tags []string) bool {
	for _, t := range tags {
		if t != "" {
			return true
		}
	}
	return false
}

func remapTags(tags []string, mapping map[string]string) []string {
	seen := orderedmap.NewOrderedMap[string, struct{}]()
	for _, tag := range tags {
		if mapped, ok := mapping[tag]; ok {
			tag = mapped
		}
		if tag != "" {
			seen.Set(tag, struct{}{})
		}
	}
	newTags := make([]string, 0, seen.Len())
	for el := seen.Front(); el != nil; el = el.Next() {
		newTags = append(newTags, el.Key)
	}
	return newTags
}

func sameTagSet(a, b []string) bool {
	set := make(map[string]bool)
	for _, t := range a {
		if t != "" {
			set[t] = true
		}
	}
	other := make(map[string]bool)
	for _, t := range b {
		if !set[t] {
			return false
		}
		other[t] = true
	}
	return len(set) == len(other)
}

// ApplyTagUpdates writes every changed update through client and returns the
// number of items updated. It stops at the first failure.
func ApplyTagUpdates(ctx context.Context, client Client, plan []TagUpdate, log *logger.Logger) (int, error) {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.WithOperation("portal-retag")

	updated := 0
	for _, u := range plan {
		if !u.Changed() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		if err := client.UpdateTags(ctx, u.Item, u.NewTags); err != nil {
			return updated, fmt.Errorf("retag stopped after %d items: %w", updated, err)
		}
		updated++
		log.Debugw("Item retagged", "item", u.Item.ID, "old", u.OldTags, "new", u.NewTags)
	}

	log.Infow("Tags updated", "items", updated)
	return updated, nil
}
