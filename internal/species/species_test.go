package species

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/gisadmin/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig().Species
	cfg.BaseURL = srv.URL + "/rest"
	cfg.UnitListURL = srv.URL + "/units?outFields=UNIT_CODE&f=json"
	cfg.RetryMax = 0

	c, err := NewClient(cfg, nil)
	require.NoError(t, err)
	return c
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(config.SpeciesConfig{ListType: "checklist"}, nil)
	assert.Error(t, err)

	_, err = NewClient(config.SpeciesConfig{BaseURL: "http://x", ListType: "shortlist"}, nil)
	assert.Error(t, err)
}

func TestUnitURL(t *testing.T) {
	c, err := NewClient(config.SpeciesConfig{BaseURL: "https://irma.example/rest/", ListType: "checklist"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://irma.example/rest/checklist/YELL?format=Json", c.UnitURL("checklist", "YELL", nil))
	assert.Equal(t, "https://irma.example/rest/fulllist/GRCA/Vascular%20Plant,Bird?format=Json",
		c.UnitURL("fulllist", "GRCA", []string{"Vascular Plant", "Bird"}))
}

func TestUnitCodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/units", r.URL.Path)
		_, _ = w.Write([]byte(`{"features":[
			{"attributes":{"UNIT_CODE":"YELL"}},
			{"attributes":{"UNIT_CODE":""}},
			{"attributes":{"UNIT_CODE":"GRCA"}}
		]}`))
	})

	codes, err := c.UnitCodes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"YELL", "GRCA"}, codes)
}

func TestFetch_SkipsFailedUnits(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Json", r.URL.Query().Get("format"))
		switch {
		case strings.HasSuffix(r.URL.Path, "/checklist/YELL"):
			_ = json.NewEncoder(w).Encode([]map[string]interface{}{
				{"SciName": "Ursus arctos"},
				{"SciName": "Canis lupus"},
			})
		case strings.HasSuffix(r.URL.Path, "/checklist/NOPE"):
			http.Error(w, "unknown unit", http.StatusBadRequest)
		case strings.HasSuffix(r.URL.Path, "/checklist/BUSY"):
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		case strings.HasSuffix(r.URL.Path, "/checklist/GRCA"):
			_ = json.NewEncoder(w).Encode([]map[string]interface{}{
				{"SciName": "Gymnogyps californianus"},
			})
		default:
			http.NotFound(w, r)
		}
	})

	records, results, err := c.Fetch(context.Background(), FetchOptions{Units: []string{"YELL", "NOPE", "BUSY", "GRCA"}})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Ursus arctos", records[0]["SciName"])
	assert.Equal(t, "Gymnogyps californianus", records[2]["SciName"])

	assert.Equal(t, []UnitResult{
		{Unit: "YELL", Records: 2},
		{Unit: "NOPE", Status: http.StatusBadRequest},
		{Unit: "BUSY", Status: http.StatusServiceUnavailable},
		{Unit: "GRCA", Records: 1},
	}, results)
	assert.True(t, results[1].Skipped())
	assert.True(t, results[2].Skipped())
}

func TestFetch_AllUnitsWithCategories(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/units" {
			_, _ = w.Write([]byte(`{"features":[{"attributes":{"UNIT_CODE":"ACAD"}}]}`))
			return
		}
		paths = append(paths, r.URL.EscapedPath())
		_, _ = w.Write([]byte(`[]`))
	})

	_, results, err := c.Fetch(context.Background(), FetchOptions{
		Categories: []string{"Vascular Plant"},
		ListType:   "detaillist",
	})
	require.NoError(t, err)
	assert.Equal(t, []UnitResult{{Unit: "ACAD"}}, results)
	assert.Equal(t, []string{"/rest/detaillist/ACAD/Vascular%20Plant"}, paths)
}

func TestFetch_InvalidListType(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, _, err := c.Fetch(context.Background(), FetchOptions{Units: []string{"YELL"}, ListType: "all"})
	assert.Error(t, err)
}
