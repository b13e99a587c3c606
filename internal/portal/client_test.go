package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/gisadmin/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) *RESTClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig().Portal
	cfg.URL = srv.URL + "/"
	cfg.Token = "tok-123"
	cfg.PageSize = 2
	cfg.RetryMax = 0

	c, err := NewRESTClient(cfg, nil)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewRESTClient_RequiresURL(t *testing.T) {
	_, err := NewRESTClient(config.PortalConfig{}, nil)
	assert.Error(t, err)
}

func TestSearchItems_Pages(t *testing.T) {
	all := []Item{
		{ID: "a1", Type: "Web Map", Owner: "ann", Tags: []string{"roads"}},
		{ID: "a2", Type: "Web Map", Owner: "ann"},
		{ID: "b1", Type: "Feature Service", Owner: "bob", Tags: []string{"parcels", "tax"}},
	}

	var queries []string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sharing/rest/search", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("X-Esri-Authorization"))
		assert.Equal(t, "json", r.URL.Query().Get("f"))
		queries = append(queries, r.URL.Query().Get("q"))

		start, _ := strconv.Atoi(r.URL.Query().Get("start"))
		num, _ := strconv.Atoi(r.URL.Query().Get("num"))
		end := start - 1 + num
		next := end + 1
		if end >= len(all) {
			end = len(all)
			next = -1
		}
		writeJSON(w, map[string]interface{}{
			"total":     len(all),
			"nextStart": next,
			"results":   all[start-1 : end],
		})
	}))

	items, err := c.SearchItems(context.Background(), "NOT owner:esri*", 0)
	require.NoError(t, err)
	assert.Equal(t, all, items)
	assert.Equal(t, []string{"NOT owner:esri*", "NOT owner:esri*"}, queries)
}

func TestSearchItems_Limit(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))
		writeJSON(w, map[string]interface{}{
			"nextStart": start + 2,
			"results": []Item{
				{ID: fmt.Sprintf("i%d", start)},
				{ID: fmt.Sprintf("i%d", start+1)},
			},
		})
	}))

	items, err := c.SearchItems(context.Background(), "q", 3)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "i3", items[2].ID)
}

func TestSearchItems_APIError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"error": map[string]interface{}{"code": 498, "message": "Invalid token."},
		})
	}))

	_, err := c.SearchItems(context.Background(), "q", 10)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 498, apiErr.Code)
}

func TestSearchUsers(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sharing/rest/portals/self/users", r.URL.Path)
		writeJSON(w, map[string]interface{}{
			"nextStart": -1,
			"users": []User{
				{Username: "ann", StorageUsage: 1024},
				{Username: "bob"},
			},
		})
	}))

	users, err := c.SearchUsers(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, []User{{Username: "ann", StorageUsage: 1024}, {Username: "bob"}}, users)
}

func TestUpdateTags(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sharing/rest/content/users/ann/items/a1/update", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "roads,transport", r.PostForm.Get("tags"))
		assert.Equal(t, "json", r.PostForm.Get("f"))
		writeJSON(w, map[string]interface{}{"success": true, "id": "a1"})
	}))

	err := c.UpdateTags(context.Background(), Item{ID: "a1", Owner: "ann"}, []string{"roads", "transport"})
	assert.NoError(t, err)
}

func TestUpdateTags_Failure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"success": false})
	}))

	err := c.UpdateTags(context.Background(), Item{ID: "a1", Owner: "ann"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a1")
}
