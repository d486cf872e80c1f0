// Package inbox turns fetched relay pages into delivered chat messages and
// keeps chat and contact state current.
package inbox

import (
	"errors"
	"log/slog"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/Layr-Labs/stampmsg/internal/keys"
	"github.com/Layr-Labs/stampmsg/internal/payload"
	"github.com/Layr-Labs/stampmsg/internal/relay"
)

// Delivered is one readable inbound message.
type Delivered struct {
	From      string
	SenderPub *secp256k1.PublicKey
	Timestamp int64
	Entries   payload.Entries
	Contents  []payload.Content
}

// Failure records a message that was skipped.
type Failure struct {
	Timestamp int64
	Reason    string
	Err       error
}

type Result struct {
	Delivered []Delivered
	Failures  []Failure

	// NextSince is the start time for the next fetch: one past the newest
	// timestamp seen, or the previous value when the page was empty.
	NextSince int64
}

// Ingestor opens relay messages addressed to one identity. A message that
// cannot be opened is skipped and reported; the rest of the page is still
// delivered.
type Ingestor struct {
	id      *keys.Identity
	logger  *slog.Logger
	metrics *Metrics
}

func NewIngestor(id *keys.Identity, logger *slog.Logger, metrics *Metrics) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Ingestor{id: id, logger: logger, metrics: metrics}
}

func (in *Ingestor) Ingest(page *relay.MessagePage, since int64) *Result {
	res := &Result{NextSince: since}
	if page == nil {
		return res
	}

	latest := int64(-1)
	for _, tm := range page.Messages {
		if tm == nil {
			continue
		}
		if tm.Timestamp > latest {
			latest = tm.Timestamp
		}

		d, err := in.open(tm)
		if err != nil {
			reason := failureReason(err)
			in.metrics.Failed.WithLabelValues(reason).Inc()
			in.logger.Warn("skipping unreadable message", "timestamp", tm.Timestamp, "reason", reason, "err", err)
			res.Failures = append(res.Failures, Failure{Timestamp: tm.Timestamp, Reason: reason, Err: err})
			continue
		}
		in.metrics.Ingested.Inc()
		res.Delivered = append(res.Delivered, *d)
	}
	if latest >= 0 && latest+1 > res.NextSince {
		res.NextSince = latest + 1
	}
	return res
}

func (in *Ingestor) open(tm *relay.TimedMessage) (*Delivered, error) {
	if tm.Message == nil {
		return nil, relay.ErrMalformedMessage
	}
	sender, err := tm.Message.Sender()
	if err != nil {
		return nil, err
	}
	from, err := keys.Address(sender, in.id.Network)
	if err != nil {
		return nil, err
	}
	entries, err := tm.Message.Open(in.id.Priv)
	if err != nil {
		return nil, err
	}
	contents, err := payload.Contents(entries)
	if err != nil {
		return nil, err
	}
	return &Delivered{
		From:      from,
		SenderPub: sender,
		Timestamp: tm.Timestamp,
		Entries:   entries,
		Contents:  contents,
	}, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, relay.ErrInvalidSignature):
		return ReasonSignature
	case errors.Is(err, payload.ErrDecryptionFailure):
		return ReasonDecrypt
	case errors.Is(err, payload.ErrUnsupportedScheme):
		return ReasonScheme
	case errors.Is(err, payload.ErrMalformedPayload), errors.Is(err, relay.ErrMalformedMessage):
		return ReasonMalformed
	case errors.Is(err, keys.ErrInvalidKey):
		return ReasonKey
	default:
		return ReasonOther
	}
}
