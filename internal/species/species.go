// Package species fetches park unit species lists from the NPSpecies REST
// service.
package species

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/dbsmedya/gisadmin/internal/config"
	"github.com/dbsmedya/gisadmin/internal/httpclient"
	"github.com/dbsmedya/gisadmin/internal/logger"
)

// ListTypes are the list kinds the service offers.
var ListTypes = []string{"checklist", "detaillist", "fulllist"}

// Categories are the species category filters the service accepts. It also
// accepts them in any case, and the numbers 1 to 5.
var Categories = []string{"Vascular Plant", "Reptile", "Amphibian", "Fish", "Mammal", "Bird"}

// Record is one species record as returned by the service.
type Record map[string]interface{}

// UnitResult reports the outcome of fetching one park unit.
type UnitResult struct {
	Unit    string
	Records int
	Status  int // HTTP status of a skipped unit, 0 on success
}

// Skipped reports whether the unit returned no usable response.
func (r UnitResult) Skipped() bool {
	return r.Status != 0
}

// Client fetches species lists.
type Client struct {
	baseURL     string
	unitListURL string
	listType    string
	http        *retryablehttp.Client
	logger      *logger.Logger
}

// NewClient creates a client from the species configuration.
func NewClient(cfg config.SpeciesConfig, log *logger.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("species base url is required")
	}
	if err := ValidateListType(cfg.ListType); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/") + "/",
		unitListURL: cfg.UnitListURL,
		listType:    cfg.ListType,
		http:        httpclient.New(time.Duration(cfg.TimeoutSeconds)*time.Second, cfg.RetryMax, log),
		logger:      log,
	}, nil
}

// ValidateListType checks a list type name.
func ValidateListType(listType string) error {
	for _, lt := range ListTypes {
		if listType == lt {
			return nil
		}
	}
	return fmt.Errorf("invalid list type %q: expected one of %s", listType, strings.Join(ListTypes, ", "))
}

type unitListResponse struct {
	Features []struct {
		Attributes struct {
			UnitCode string `json:"UNIT_CODE"`
		} `json:"attributes"`
	} `json:"features"`
}

// UnitCodes returns the park unit codes listed by the boundary feature service.
func (c *Client) UnitCodes(ctx context.Context) ([]string, error) {
	if c.unitListURL == "" {
		return nil, fmt.Errorf("species unit list url is not configured")
	}

	var resp unitListResponse
	if err := httpclient.GetJSON(ctx, c.http, c.unitListURL, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch park unit list: %w", err)
	}

	codes := make([]string, 0, len(resp.Features))
	for _, f := range resp.Features {
		if f.Attributes.UnitCode != "" {
			codes = append(codes, f.Attributes.UnitCode)
		}
	}
	return codes, nil
}

// UnitURL returns the species list URL of one unit:
// {base}/{listType}/{unit}[/{categories}]?format=Json.
func (c *Client) UnitURL(listType, unit string, categories []string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	b.WriteString(url.PathEscape(listType))
	b.WriteByte('/')
	b.WriteString(url.PathEscape(unit))
	if len(categories) > 0 {
		escaped := make([]string, len(categories))
		for i, cat := range categories {
			escaped[i] = url.PathEscape(cat)
		}
		b.WriteByte('/')
		b.WriteString(strings.Join(escaped, ","))
	}
	b.WriteString("?format=Json")
	return b.String()
}

// FetchOptions selects what Fetch downloads.
type FetchOptions struct {
	// Units are park unit codes. Nil fetches every unit from UnitCodes.
	Units []string
	// Categories filter the species categories. Nil means all.
	Categories []string
	// ListType overrides the configured list type.
	ListType string
}

// Fetch downloads the species records of every requested unit in order.
// Units answering with a non-2xx status are logged and skipped; transport
// failures stop the fetch.
func (c *Client) Fetch(ctx context.Context, opts FetchOptions) ([]Record, []UnitResult, error) {
	log := c.logger.WithOperation("species")

	listType := opts.ListType
	if listType == "" {
		listType = c.listType
	}
	if err := ValidateListType(listType); err != nil {
		return nil, nil, err
	}

	units := opts.Units
	if units == nil {
		var err error
		if units, err = c.UnitCodes(ctx); err != nil {
			return nil, nil, err
		}
	}

	var records []Record
	results := make([]UnitResult, 0, len(units))
	for i, unit := range units {
		var unitRecords []Record
		result := UnitResult{Unit: unit}

		err := httpclient.GetJSON(ctx, c.http, c.UnitURL(listType, unit, opts.Categories), &unitRecords)
		var statusErr *httpclient.StatusError
		switch {
		case err == nil:
			result.Records = len(unitRecords)
			records = append(records, unitRecords...)
		case errors.As(err, &statusErr):
			result.Status = statusErr.StatusCode
		default:
			return records, results, fmt.Errorf("unit %s: %w", unit, err)
		}
		results = append(results, result)

		unitLog := log.WithUnit(unit)
		if result.Skipped() {
			unitLog.Warnw("No species list response",
				"progress", fmt.Sprintf("%d/%d", i+1, len(units)),
				"status", result.Status,
			)
			continue
		}
		unitLog.Infow("Species list fetched",
			"progress", fmt.Sprintf("%d/%d", i+1, len(units)),
			"records", result.Records,
		)
	}
	return records, results, nil
}
