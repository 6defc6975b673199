// Copyright 2026 SAR Project
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package drugscom implements the drug interaction connector backed by
// the public drugs.com reference pages. A drug name is first resolved to
// an interactions slug through the site search, then the slug addresses
// the drug/food/disease interaction pages.
package drugscom

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Gannon44/sar-project/connectors/base"
)

const (
	// DefaultBaseURL is the root of the public interactions reference site.
	DefaultBaseURL = "https://www.drugs.com"

	// DefaultTimeout bounds every page fetch.
	DefaultTimeout = 10 * time.Second

	// userAgent mirrors a desktop browser; the site serves reduced
	// markup to unknown clients.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/91.0.4472.124 Safari/537.36"

	// Interaction severity filters used by the index pages.
	filterMajor    = 3
	filterModerate = 2
)

var (
	// ErrNoInteractionsLink is returned when the site search yields no
	// drug-interactions anchor for the requested name.
	ErrNoInteractionsLink = errors.New("no drug interactions link found")

	// ErrNoReferenceSection is returned when an interactions page lacks
	// the reference section the text is extracted from.
	ErrNoReferenceSection = errors.New("interactions reference section not found")

	slugPattern = regexp.MustCompile(`/drug-interactions/([^/]+)\.html`)
)

// InteractionList groups interacting drug names by severity.
type InteractionList struct {
	Major    []string `json:"major"`
	Moderate []string `json:"moderate"`
}

// Contains reports whether the drug appears in either severity list.
// Matching is case-insensitive.
func (l InteractionList) Contains(drugName string) bool {
	want := normalizedName(drugName)
	for _, name := range l.Major {
		if normalizedName(name) == want {
			return true
		}
	}
	for _, name := range l.Moderate {
		if normalizedName(name) == want {
			return true
		}
	}
	return false
}

// Report is the combined interaction lookup result for one drug.
type Report struct {
	DrugName            string          `json:"drug_name"`
	Slug                string          `json:"slug"`
	DrugInteractions    InteractionList `json:"drug_interactions"`
	FoodInteractions    string          `json:"food_interactions"`
	DiseaseInteractions string          `json:"disease_interactions"`
	Cached              bool            `json:"cached,omitempty"`
}

// Connector scrapes the interactions reference site. It implements the
// base.Connector lifecycle; the domain lookups are its own methods.
type Connector struct {
	config  *base.ConnectorConfig
	client  *resty.Client
	cache   *Cache
	logger  *zap.Logger
	baseURL string
}

// New creates an unconnected drugs.com connector. The cache is optional;
// pass nil to disable result caching.
func New(logger *zap.Logger, cache *Cache) *Connector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Connector{logger: logger, cache: cache}
}

// Connect prepares the HTTP client. No session is established; the check
// that the site is reachable happens in HealthCheck.
func (c *Connector) Connect(ctx context.Context, config *base.ConnectorConfig) error {
	if config == nil {
		return base.NewConnectorError("drugscom", "Connect", "config cannot be nil", nil)
	}
	c.config = config

	c.baseURL = config.BaseURL
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	client := resty.New().
		SetBaseURL(c.baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)
	if config.MaxRetries > 0 {
		client.SetRetryCount(config.MaxRetries)
	}
	c.client = client

	c.logger.Info("Interactions connector ready",
		zap.String("base_url", c.baseURL),
		zap.Duration("timeout", timeout),
	)
	return nil
}

// Disconnect releases the HTTP client.
func (c *Connector) Disconnect(ctx context.Context) error {
	c.client = nil
	return nil
}

// HealthCheck fetches the site root and reports latency.
func (c *Connector) HealthCheck(ctx context.Context) (*base.HealthStatus, error) {
	if c.client == nil {
		return &base.HealthStatus{
			Healthy:   false,
			Timestamp: time.Now(),
			Error:     "connector not connected",
		}, nil
	}

	start := time.Now()
	resp, err := c.client.R().SetContext(ctx).Head("/")
	latency := time.Since(start)

	status := &base.HealthStatus{
		Latency:   latency,
		Timestamp: time.Now(),
		Details:   map[string]string{"base_url": c.baseURL},
	}
	if err != nil {
		status.Error = err.Error()
		return status, nil
	}
	status.Healthy = resp.StatusCode() < 500
	if !status.Healthy {
		status.Error = fmt.Sprintf("unexpected status %d", resp.StatusCode())
	}
	return status, nil
}

// Name returns the connector instance name.
func (c *Connector) Name() string {
	if c.config != nil && c.config.Name != "" {
		return c.config.Name
	}
	return "drugscom"
}

// Type returns the connector type.
func (c *Connector) Type() string { return "http_scrape" }

// Version returns the connector version.
func (c *Connector) Version() string { return "1.0.0" }

// Capabilities lists the supported lookups.
func (c *Connector) Capabilities() []string {
	return []string{"interactions_slug", "drug_interactions", "food_interactions", "disease_interactions"}
}

// InteractionsSlug resolves a drug name (or alias) to its interactions
// slug, e.g. "skyclarys" -> "omaveloxolone,skyclarys".
func (c *Connector) InteractionsSlug(ctx context.Context, drugName string) (string, error) {
	root, err := c.fetchHTML(ctx, "/search.php", map[string]string{"searchterm": drugName})
	if err != nil {
		return "", base.NewConnectorError(c.Name(), "InteractionsSlug",
			fmt.Sprintf("failed to retrieve search results for %q", drugName), err)
	}

	href := findAnchorHref(root, "/drug-interactions/")
	if href == "" {
		return "", fmt.Errorf("%w for %q", ErrNoInteractionsLink, drugName)
	}

	match := slugPattern.FindStringSubmatch(href)
	if match == nil {
		return "", fmt.Errorf("could not parse interaction slug from link %q", href)
	}
	return match[1], nil
}

// DrugInteractions fetches the major and moderate interaction lists for
// the given slug.
func (c *Connector) DrugInteractions(ctx context.Context, slug string) (*InteractionList, error) {
	major, err := c.interactionDrugs(ctx, slug, filterMajor)
	if err != nil {
		return nil, err
	}
	moderate, err := c.interactionDrugs(ctx, slug, filterModerate)
	if err != nil {
		return nil, err
	}
	return &InteractionList{Major: major, Moderate: moderate}, nil
}

// interactionDrugs scrapes one severity-filtered interactions index page.
func (c *Connector) interactionDrugs(ctx context.Context, slug string, filter int) ([]string, error) {
	path := fmt.Sprintf("/drug-interactions/%s-index.html", slug)
	root, err := c.fetchHTML(ctx, path, map[string]string{"filter": fmt.Sprintf("%d", filter)})
	if err != nil {
		return nil, base.NewConnectorError(c.Name(), "DrugInteractions",
			fmt.Sprintf("failed to retrieve interactions page for slug %q (filter %d)", slug, filter), err)
	}

	seen := map[string]bool{}
	var names []string
	for _, name := range interactionListEntries(root) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// FoodInteractions returns the full text of the food interactions
// reference section.
func (c *Connector) FoodInteractions(ctx context.Context, slug string) (string, error) {
	return c.referenceText(ctx, "FoodInteractions", fmt.Sprintf("/food-interactions/%s.html", slug))
}

// DiseaseInteractions returns the full text of the disease interactions
// reference section.
func (c *Connector) DiseaseInteractions(ctx context.Context, slug string) (string, error) {
	return c.referenceText(ctx, "DiseaseInteractions", fmt.Sprintf("/disease-interactions/%s.html", slug))
}

func (c *Connector) referenceText(ctx context.Context, op, path string) (string, error) {
	root, err := c.fetchHTML(ctx, path, map[string]string{"professional": "1"})
	if err != nil {
		return "", base.NewConnectorError(c.Name(), op, "failed to retrieve interactions page", err)
	}

	section := findNodeByClass(root, "div", "interactions-reference")
	if section == nil {
		return "", ErrNoReferenceSection
	}
	return nodeText(section), nil
}

// AllInteractions resolves the slug and composes the drug, food and
// disease interaction lookups. Results are cached per drug name when a
// cache is configured.
func (c *Connector) AllInteractions(ctx context.Context, drugName string) (*Report, error) {
	if c.cache != nil {
		if report, err := c.cache.Get(ctx, drugName); err != nil {
			c.logger.Warn("Interactions cache read failed", zap.Error(err))
		} else if report != nil {
			report.Cached = true
			return report, nil
		}
	}

	slug, err := c.InteractionsSlug(ctx, drugName)
	if err != nil {
		return nil, err
	}
	drugs, err := c.DrugInteractions(ctx, slug)
	if err != nil {
		return nil, err
	}
	food, err := c.FoodInteractions(ctx, slug)
	if err != nil {
		return nil, err
	}
	disease, err := c.DiseaseInteractions(ctx, slug)
	if err != nil {
		return nil, err
	}

	report := &Report{
		DrugName:            drugName,
		Slug:                slug,
		DrugInteractions:    *drugs,
		FoodInteractions:    food,
		DiseaseInteractions: disease,
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, drugName, report); err != nil {
			c.logger.Warn("Interactions cache write failed", zap.Error(err))
		}
	}
	return report, nil
}

// fetchHTML GETs a page and parses the response body.
func (c *Connector) fetchHTML(ctx context.Context, path string, params map[string]string) (*htmlNode, error) {
	if c.client == nil {
		return nil, errors.New("connector not connected")
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode(), path)
	}
	return parseHTML(resp.Body())
}

var _ base.Connector = (*Connector)(nil)

// normalizedName is the cache key form of a drug name.
func normalizedName(drugName string) string {
	return strings.ToLower(strings.TrimSpace(drugName))
}
