package sequencer

import (
	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"travel_backoffice/platform/apperr"
)

// ParseDate parses a YYYY-MM-DD string. Blank input returns the zero Date.
func ParseDate(s string) (civil.Date, error) {
	if s == "" {
		return civil.Date{}, nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, apperr.Validation("dates must use the YYYY-MM-DD format")
	}
	return d, nil
}

// NightsBetween returns the whole-day difference end - start.
func NightsBetween(start, end civil.Date) int {
	return end.DaysSince(start)
}

// InsertRequest is what the insertion form submits.
type InsertRequest struct {
	ServiceRef  uuid.UUID
	StartDate   civil.Date
	EndDate     civil.Date // lodging only
	IsOptional  bool
	DisplayText string
}

// ServiceInfo is the directory view of the selected service.
type ServiceInfo struct {
	ID          uuid.UUID
	Name        string
	City        string
	ServiceType string
}

// PrepareInsert validates req against the selected service and builds the
// item to persist. Nothing is mutated on failure.
func (c *Classifier) PrepareInsert(req InsertRequest, svc *ServiceInfo) (Item, error) {
	if req.ServiceRef == uuid.Nil || svc == nil {
		return Item{}, apperr.Validation("a service must be selected")
	}
	if svc.ID != req.ServiceRef {
		return Item{}, apperr.Validation("selected service does not match the request")
	}
	if !req.StartDate.IsValid() {
		return Item{}, apperr.Validation("start date is required")
	}

	item := Item{
		ServiceRef:       svc.ID,
		City:             svc.City,
		ServiceTypeLabel: svc.ServiceType,
		ScheduledDate:    req.StartDate,
		DisplayText:      req.DisplayText,
		IsOptional:       req.IsOptional,
	}

	if c.IsLodging(svc.ServiceType) {
		if !req.EndDate.IsValid() {
			return Item{}, apperr.Validation("end date is required for lodging")
		}
		nights := NightsBetween(req.StartDate, req.EndDate)
		if nights < 1 {
			return Item{}, apperr.Validation("end date must be at least one night after the start date")
		}
		item.NightCount = &nights
	}

	c.Apply(&item)
	return item, nil
}
