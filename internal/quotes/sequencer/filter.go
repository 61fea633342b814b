package sequencer

import (
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// ServiceOption is a selectable service in the insertion form.
type ServiceOption struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	City        string    `json:"city"`
	ServiceType string    `json:"serviceType"`
	NightCount  *int      `json:"nightCount,omitempty"`
}

// FilterOptions restricts options to typeFilter (when set). For a lodging
// filter with both dates chosen, only services whose configured night count
// equals the chosen range are kept; incomplete dates disable that filter.
func (c *Classifier) FilterOptions(options []ServiceOption, typeFilter string, start, end civil.Date) []ServiceOption {
	typeFilter = strings.TrimSpace(typeFilter)

	byNights := false
	nights := 0
	if typeFilter != "" && c.IsLodging(typeFilter) && start.IsValid() && end.IsValid() {
		byNights = true
		nights = NightsBetween(start, end)
	}

	out := make([]ServiceOption, 0, len(options))
	for _, opt := range options {
		if typeFilter != "" && !strings.EqualFold(opt.ServiceType, typeFilter) {
			continue
		}
		if byNights && (opt.NightCount == nil || *opt.NightCount != nights) {
			continue
		}
		out = append(out, opt)
	}
	return out
}
