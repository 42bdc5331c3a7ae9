package kafka

import (
	"time"

	"transaction-orchestrator/internal/core/domain"

	"github.com/twmb/franz-go/pkg/kgo"
)

// CloudEvents binary-mode header names.
const (
	HeaderID          = "ce_id"
	HeaderType        = "ce_type"
	HeaderSource      = "ce_source"
	HeaderSpecVersion = "ce_specversion"
	HeaderTime        = "ce_time"
	HeaderContentType = "content-type"
	HeaderAudience    = "ce_audience"
	HeaderContext     = "ce_eventcontext"

	cloudEventsSpecVersion = "1.0"
	contentTypeJSON        = "application/json"
	audienceExternal       = "external-bounded-context"
	eventContextDomain     = "domain"
)

func cloudEventHeaders(n domain.Notification, source string) []kgo.RecordHeader {
	return []kgo.RecordHeader{
		{Key: HeaderID, Value: []byte(n.ID.String())},
		{Key: HeaderType, Value: []byte(n.Channel.EventType())},
		{Key: HeaderSource, Value: []byte(source)},
		{Key: HeaderSpecVersion, Value: []byte(cloudEventsSpecVersion)},
		{Key: HeaderTime, Value: []byte(n.OccurredAt.UTC().Format(time.RFC3339Nano))},
		{Key: HeaderContentType, Value: []byte(contentTypeJSON)},
		{Key: HeaderAudience, Value: []byte(audienceExternal)},
		{Key: HeaderContext, Value: []byte(eventContextDomain)},
	}
}

// headerCarrier adapts record headers to propagation.TextMapCarrier.
type headerCarrier struct {
	record *kgo.Record
}

func (c headerCarrier) Get(key string) string {
	for _, h := range c.record.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c headerCarrier) Set(key, value string) {
	for i, h := range c.record.Headers {
		if h.Key == key {
			c.record.Headers[i].Value = []byte(value)
			return
		}
	}
	c.record.Headers = append(c.record.Headers, kgo.RecordHeader{Key: key, Value: []byte(value)})
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, len(c.record.Headers))
	for i, h := range c.record.Headers {
		keys[i] = h.Key
	}
	return keys
}
