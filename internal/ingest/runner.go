package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"token-radar/internal/detect"
	"token-radar/internal/domain"
	"token-radar/internal/observability"
	"token-radar/internal/storage"
)

// Runner pumps one source through the detector registry and records
// every match as a mention.
type Runner struct {
	source    Source
	detectors []detect.Detector
	store     storage.MentionStore
}

// NewRunner creates a runner for one source.
func NewRunner(source Source, detectors []detect.Detector, store storage.MentionStore) *Runner {
	return &Runner{
		source:    source,
		detectors: detectors,
		store:     store,
	}
}

// Run consumes the source until its stream ends. Store failures are
// logged and counted; they never stop ingestion.
func (r *Runner) Run(ctx context.Context) error {
	messages, err := r.source.Messages(ctx)
	if err != nil {
		return fmt.Errorf("open source %s: %w", r.source.Name(), err)
	}
	logrus.Infof("Ingesting messages from %s", r.source.Name())

	for msg := range messages {
		r.process(ctx, msg)
	}

	logrus.Infof("Source %s drained", r.source.Name())
	return ctx.Err()
}

// process runs every detector over one message and stores the matches.
func (r *Runner) process(ctx context.Context, msg domain.ChatMessage) {
	observability.RecordMessageProcessed()

	observedAt := msg.ObservedAt
	if observedAt.IsZero() {
		observedAt = time.Now().UTC()
	}

	for _, detector := range r.detectors {
		for _, mention := range detector.Detect(msg.Text, msg.SourceID, msg.MessageID, observedAt) {
			wasNew, err := r.store.RecordMention(ctx, mention)
			if err != nil {
				observability.RecordStoreError()
				logrus.Errorf("Recording mention %s from source %d failed: %v",
					mention.Contract, mention.SourceID, err)
				continue
			}
			if !wasNew {
				observability.RecordDuplicateMention()
				logrus.Debugf("Duplicate mention of %s in message %d", mention.Contract, mention.MessageID)
				continue
			}
			observability.RecordMentionRecorded(string(mention.Chain))
			logrus.Infof("New mention of %s (%s) from source %d", mention.Contract, mention.Chain, mention.SourceID)
		}
	}
}
