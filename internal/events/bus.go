package events

import (
	platformevents "travel_backoffice/platform/events"
	"travel_backoffice/platform/logger"
)

// InMemoryBus delivers events between the back-office modules.
type InMemoryBus = platformevents.InMemoryBus

func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
