package metrics

import (
	"sync/atomic"
)

// Metrics tracks operational metrics.
type Metrics struct {
	WebhooksReceived  uint64 `json:"webhooks_received"`
	WebhooksProcessed uint64 `json:"webhooks_processed"`
	SignatureFailures uint64 `json:"signature_failures"`
	FilesFetched      uint64 `json:"files_fetched"`
	FetchFailures     uint64 `json:"fetch_failures"`
}

var global = &Metrics{}

// WebhookReceived increments the count of webhooks received.
func WebhookReceived() { atomic.AddUint64(&global.WebhooksReceived, 1) }

// WebhookProcessed increments the count of webhooks fully processed.
func WebhookProcessed() { atomic.AddUint64(&global.WebhooksProcessed, 1) }

// SignatureFailure increments the count of rejected signatures.
func SignatureFailure() { atomic.AddUint64(&global.SignatureFailures, 1) }

// FileFetched increments the count of files downloaded.
func FileFetched() { atomic.AddUint64(&global.FilesFetched, 1) }

// FetchFailure increments the count of failed file downloads.
func FetchFailure() { atomic.AddUint64(&global.FetchFailures, 1) }

// Get returns a snapshot of the current metrics.
func Get() Metrics {
	return Metrics{
		WebhooksReceived:  atomic.LoadUint64(&global.WebhooksReceived),
		WebhooksProcessed: atomic.LoadUint64(&global.WebhooksProcessed),
		SignatureFailures: atomic.LoadUint64(&global.SignatureFailures),
		FilesFetched:      atomic.LoadUint64(&global.FilesFetched),
		FetchFailures:     atomic.LoadUint64(&global.FetchFailures),
	}
}

// Reset resets all metrics to zero (useful for testing).
func Reset() {
	atomic.StoreUint64(&global.WebhooksReceived, 0)
	atomic.StoreUint64(&global.WebhooksProcessed, 0)
	atomic.StoreUint64(&global.SignatureFailures, 0)
	atomic.StoreUint64(&global.FilesFetched, 0)
	atomic.StoreUint64(&global.FetchFailures, 0)
}
