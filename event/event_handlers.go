package event

import (
	"github.com/sirupsen/logrus"
)

// EventHandler returns nil when the event is not of interest to it.
type EventHandler func(record *EventRecord) *EventHandleResult

type EventHandleResult struct {
	Success           bool
	Message           string
	HandlerIdentifier string
}

var (
	EventHandlers []EventHandler

	InvokeHandlersFunc = invokeHandlers
)

func invokeHandlers(record *EventRecord) []EventHandleResult {
	results := []EventHandleResult{}
	for _, handle := range EventHandlers {
		r := handle(record)
		if r == nil {
			continue
		}
		results = append(results, *r)

		if r.Success {
			logrus.Infof("handler %s processed event of %s %d", r.HandlerIdentifier,
				record.SourceType, record.SourceId)
		} else {
			logrus.Errorf("handler %s failed on event of %s %d: %s", r.HandlerIdentifier,
				record.SourceType, record.SourceId, r.Message)
		}
	}
	return results
}
