package adapters

import (
	"context"

	cattransport "travel_backoffice/internal/catalog/transport"
	"travel_backoffice/internal/quotes/editor"
)

type catalogGroups interface {
	ListGroup(ctx context.Context, group string) (cattransport.GroupResponse, error)
}

// QuotesCatalog adapts the catalog module for quotation editors,
// satisfying editor.CatalogReader.
type QuotesCatalog struct {
	catalog catalogGroups
}

// NewQuotesCatalog creates a new catalog adapter.
func NewQuotesCatalog(catalog catalogGroups) *QuotesCatalog {
	return &QuotesCatalog{catalog: catalog}
}

var _ editor.CatalogReader = (*QuotesCatalog)(nil)

// ListGroup returns the value/label pairs of group.
func (a *QuotesCatalog) ListGroup(ctx context.Context, group string) ([]editor.LookupEntry, error) {
	resp, err := a.catalog.ListGroup(ctx, group)
	if err != nil {
		return nil, err
	}
	entries := make([]editor.LookupEntry, 0, len(resp.Entries))
	for _, e := range resp.Entries {
		entries = append(entries, editor.LookupEntry{Value: e.Value, Label: e.Label})
	}
	return entries, nil
}
