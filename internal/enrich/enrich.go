// Package enrich attaches promotional metadata to normalized places by
// evaluating a declarative rule table: brand rules first, then category
// groups, then a per-place fallback.
package enrich

import (
	_ "embed"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/localdeals/deals-api/internal/model"
)

//go:embed rules.yaml
var rulesYAML []byte

// Rule is one entry in the rule table. Match tokens are compared
// case-insensitively as substrings.
type Rule struct {
	Match    []string `yaml:"match"`
	Title    string   `yaml:"title"`
	Subtitle string   `yaml:"subtitle"`
	URL      string   `yaml:"url"`
}

// PlaceFallback configures the last-resort rule that reuses the place's own
// resolved link.
type PlaceFallback struct {
	Subtitle string `yaml:"subtitle"`
}

type ruleTable struct {
	Brands     []Rule        `yaml:"brands"`
	Categories []Rule        `yaml:"categories"`
	Place      PlaceFallback `yaml:"place"`
}

// Engine resolves enrichment for places. It holds only immutable rule data;
// Apply is pure and safe for concurrent use.
type Engine struct {
	table ruleTable
}

// NewEngine parses the embedded rule table.
func NewEngine() (*Engine, error) {
	var table ruleTable
	if err := yaml.Unmarshal(rulesYAML, &table); err != nil {
		return nil, eris.Wrap(err, "enrich: parse rules")
	}
	return &Engine{table: table}, nil
}

// Apply returns a copy of p with enrichment attached when a rule matches.
// Rules are tried in order: brand against the store name, category group
// against the category label, then the place's own link. When nothing
// matches, the enrichment fields stay null.
func (e *Engine) Apply(p model.Place) model.Place {
	if rule, ok := matchRule(e.table.Brands, p.StoreName); ok {
		return withDeal(p, rule.Title, rule.Subtitle, rule.URL, model.DealSourceBrand)
	}

	if rule, ok := matchRule(e.table.Categories, p.Category); ok {
		return withDeal(p, rule.Title, rule.Subtitle, rule.URL, model.DealSourceCategory)
	}

	if p.URL != "" {
		title := p.StoreName + " Offers"
		return withDeal(p, title, e.table.Place.Subtitle, p.URL, model.DealSourcePlace)
	}

	return p
}

// ApplyAll enriches every place in the list, returning a new slice.
func (e *Engine) ApplyAll(places []model.Place) []model.Place {
	out := make([]model.Place, len(places))
	for i, p := range places {
		out[i] = e.Apply(p)
	}
	return out
}

func matchRule(rules []Rule, value string) (Rule, bool) {
	haystack := strings.ToLower(value)
	if haystack == "" {
		return Rule{}, false
	}
	for _, rule := range rules {
		for _, token := range rule.Match {
			if strings.Contains(haystack, strings.ToLower(token)) {
				return rule, true
			}
		}
	}
	return Rule{}, false
}

func withDeal(p model.Place, title, subtitle, url string, source model.DealSource) model.Place {
	p.DealTitle = &title
	p.DealSubtitle = &subtitle
	p.DealURL = &url
	p.DealSource = &source
	return p
}
