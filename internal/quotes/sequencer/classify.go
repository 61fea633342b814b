package sequencer

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default service-type patterns. Matching is case-insensitive on the label.
var (
	defaultLodgingTerms     = []string{"hotel", "alojamiento", "hospedaje", "hostal", "lodge", "lodging", "accommodation", "cabaña", "cabana", "resort"}
	defaultPriceExemptTerms = []string{"vuelo", "aereo", "aéreo", "flight", "tren", "train"}
)

// Classifier decides from a service-type label whether an item is lodging
// and whether it is priced outside the quotation (flights, trains).
type Classifier struct {
	lodging     *regexp.Regexp
	priceExempt *regexp.Regexp
}

// classificationFile is the YAML shape of SERVICE_TYPES_FILE.
type classificationFile struct {
	Lodging     []string `yaml:"lodging"`
	PriceExempt []string `yaml:"priceExempt"`
}

// NewClassifier builds a classifier from plain terms. Terms are matched as
// substrings of the label.
func NewClassifier(lodging, priceExempt []string) *Classifier {
	return &Classifier{
		lodging:     compileTerms(lodging),
		priceExempt: compileTerms(priceExempt),
	}
}

// DefaultClassifier returns the built-in travel agency classification.
func DefaultClassifier() *Classifier {
	return NewClassifier(defaultLodgingTerms, defaultPriceExemptTerms)
}

// LoadClassifier reads term lists from a YAML file. An empty path yields the
// default classifier; an empty list in the file keeps the default for that list.
func LoadClassifier(path string) (*Classifier, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultClassifier(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service types file: %w", err)
	}

	var file classificationFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse service types file: %w", err)
	}

	lodging := file.Lodging
	if len(lodging) == 0 {
		lodging = defaultLodgingTerms
	}
	exempt := file.PriceExempt
	if len(exempt) == 0 {
		exempt = defaultPriceExemptTerms
	}
	return NewClassifier(lodging, exempt), nil
}

func compileTerms(terms []string) *regexp.Regexp {
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term != "" {
			quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(term)))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(strings.Join(quoted, "|"))
}

// IsLodging reports whether the label names an accommodation service.
func (c *Classifier) IsLodging(serviceType string) bool {
	return c.lodging != nil && c.lodging.MatchString(strings.ToLower(serviceType))
}

// IsPriceExempt reports whether items of this type never carry a price.
func (c *Classifier) IsPriceExempt(serviceType string) bool {
	return c.priceExempt != nil && c.priceExempt.MatchString(strings.ToLower(serviceType))
}

// Apply sets the derived flags on item. Price-exempt items lose their price.
// Non-lodging items and non-positive counts lose their night count.
func (c *Classifier) Apply(item *Item) {
	item.IsLodging = c.IsLodging(item.ServiceTypeLabel)
	item.PriceExempt = c.IsPriceExempt(item.ServiceTypeLabel)
	if item.PriceExempt {
		item.Price.Valid = false
	}
	if !item.IsLodging || (item.NightCount != nil && *item.NightCount < 1) {
		item.NightCount = nil
	}
}
