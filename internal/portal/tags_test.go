package portal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagHistogram(t *testing.T) {
	items := []Item{
		{ID: "1", Tags: []string{"roads", "transport"}},
		{ID: "2", Tags: []string{"roads"}},
		{ID: "3", Tags: []string{""}},
		{ID: "4"},
	}

	counts := TagHistogram(items)
	assert.Equal(t, []TagCount{
		{Tag: "roads", Count: 2},
		{Tag: "transport", Count: 1},
		{Tag: NoTagsLabel, Count: 2},
	}, counts)

	SortByCount(counts)
	assert.Equal(t, []TagCount{
		{Tag: NoTagsLabel, Count: 2},
		{Tag: "roads", Count: 2},
		{Tag: "transport", Count: 1},
	}, counts)
}

func TestPlanTagUpdates(t *testing.T) {
	mapping := map[string]string{
		"Roads":  "roads",
		"temp":   "",
		"parcel": "parcels",
	}
	items := []Item{
		{ID: "rename", Tags: []string{"Roads", "transport"}},
		{ID: "merge", Tags: []string{"parcel", "parcels"}},
		{ID: "drop", Tags: []string{"temp"}},
		{ID: "same", Tags: []string{"transport"}},
		{ID: "empty", Tags: []string{""}},
		{ID: "none"},
	}

	plan := PlanTagUpdates(items, mapping)
	require.Len(t, plan, len(items))

	assert.Equal(t, []string{"roads", "transport"}, plan[0].NewTags)
	assert.Equal(t, []string{"parcels"}, plan[1].NewTags)
	assert.Equal(t, []string{}, plan[2].NewTags)
	assert.True(t, plan[2].Changed(), "dropping every tag is a change")
	assert.False(t, plan[3].Changed())
	assert.False(t, plan[4].Changed())
	assert.False(t, plan[5].Changed())
	assert.Equal(t, []string{"Roads", "transport"}, plan[0].OldTags)
}

func TestApplyTagUpdates(t *testing.T) {
	items := []Item{
		{ID: "a", Tags: []string{"Roads"}},
		{ID: "b", Tags: []string{"roads"}},
		{ID: "c", Tags: []string{"Roads", "x"}},
	}
	plan := PlanTagUpdates(items, map[string]string{"Roads": "roads"})

	client := &fakeClient{}
	n, err := ApplyTagUpdates(context.Background(), client, plan, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, map[string][]string{
		"a": {"roads"},
		"c": {"roads", "x"},
	}, client.updates, "only changed items are written")
}

func TestApplyTagUpdates_StopsOnFailure(t *testing.T) {
	items := []Item{
		{ID: "a", Tags: []string{"Roads"}},
		{ID: "b", Tags: []string{"Roads"}},
		{ID: "c", Tags: []string{"Roads"}},
	}
	plan := PlanTagUpdates(items, map[string]string{"Roads": "roads"})

	client := &fakeClient{failOn: "b"}
	n, err := ApplyTagUpdates(context.Background(), client, plan, nil)
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, err.Error(), "after 1 items")
}
