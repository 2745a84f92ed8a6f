// Package dispatcher drains the part queue: it periodically claims unsent
// parts one at a time, each inside its own transaction, and hands them to the
// translation authority. Concurrent dispatchers never fight over a part
// because claiming locks the row and skips locked ones.
package dispatcher

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/etranslation/server/internal/common"
	"github.com/etranslation/server/internal/cryptox"
	"github.com/etranslation/server/internal/dbx"
	"github.com/etranslation/server/internal/logging"
	"github.com/etranslation/server/internal/server/envelope"
	"github.com/etranslation/server/internal/server/models"
	"github.com/etranslation/server/internal/server/repositories/repomanager"
)

// Sender delivers one decrypted part to the translation authority. A nil
// return means the authority accepted the submission; the translation itself
// arrives later through the callback endpoints.
type Sender interface {
	Send(ctx context.Context, request *models.TranslationRequest, part *models.TranslationRequestPart) error
}

type Dispatcher struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	envelope *envelope.Envelope
	sender   Sender
	logger   logging.Logger

	batchBudget     time.Duration
	failureCooldown time.Duration
	maxFailureCount int

	now func() time.Time
}

func New(db *sql.DB, repos repomanager.RepositoryManager, env *envelope.Envelope, sender Sender, logger logging.Logger,
	batchBudget, failureCooldown time.Duration, maxFailureCount int) *Dispatcher {
	return &Dispatcher{
		db:              db,
		repos:           repos,
		envelope:        env,
		sender:          sender,
		logger:          logger,
		batchBudget:     batchBudget,
		failureCooldown: failureCooldown,
		maxFailureCount: maxFailureCount,
		now:             time.Now,
	}
}

// RunBatch dispatches claimable parts until the queue is drained, the batch
// budget is spent, or the context is cancelled. Each part is processed in its
// own transaction, so one poisoned part never blocks the rest of the batch
// beyond its cooldown.
func (d *Dispatcher) RunBatch(ctx context.Context) error {
	deadline := d.now().Add(d.batchBudget)
	dispatched := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !d.now().Before(deadline) {
			d.logger.Info(ctx, "dispatch batch budget exhausted", "dispatched", dispatched)
			return nil
		}

		more, err := d.dispatchNext(ctx)
		if err != nil {
			d.logger.Error(ctx, "dispatch batch aborted", "error", err, "dispatched", dispatched)
			return err
		}
		if !more {
			if dispatched > 0 {
				d.logger.Info(ctx, "dispatch batch drained queue", "dispatched", dispatched)
			}
			return nil
		}
		dispatched++
	}
}

// dispatchNext claims and processes at most one part. It reports whether the
// caller should keep going: false means the queue has no claimable part left.
// Send failures are recorded on the part and do not abort the batch.
func (d *Dispatcher) dispatchNext(ctx context.Context) (more bool, err error) {
	err = dbx.WithTx(ctx, d.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		partsRepo := d.repos.Parts(tx)

		now := d.now()
		encryptedPart, err := partsRepo.ClaimNextUnsent(ctx, now.Add(-d.failureCooldown), d.maxFailureCount)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				more = false
				return nil
			}
			return err
		}

		part, err := d.envelope.DecryptPart(encryptedPart)
		if err != nil {
			// A part that cannot be decrypted would otherwise block the
			// queue head forever: claiming is oldest-first. Book a send
			// failure so the cooldown and failure ceiling fence it off.
			if errors.Is(err, cryptox.ErrDecryptionFailed) {
				failureCount := encryptedPart.SendFailureCount + 1
				d.logger.Error(ctx, "claimed part is unreadable",
					"partId", encryptedPart.ID, "failureCount", failureCount, "error", err)
				if err := partsRepo.MarkSendFailed(ctx, encryptedPart.ID, d.now(), failureCount); err != nil {
					return err
				}
				more = true
				return nil
			}
			return err
		}

		// Rows gone mid-claim or claimed with sent_at set should not
		// happen; treat them as queue anomalies, not work.
		if part.SentAt != nil {
			d.logger.Warn(ctx, "claimed part is already sent", "partId", part.ID)
			more = true
			return nil
		}

		encryptedRequest, err := d.repos.Requests(tx).Get(ctx, part.RequestID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				d.logger.Warn(ctx, "claimed part has no request", "partId", part.ID, "requestId", part.RequestID)
				more = false
				return nil
			}
			return err
		}
		request, err := d.envelope.DecryptRequest(encryptedRequest)
		if err != nil {
			return err
		}

		if sendErr := d.sender.Send(ctx, request, part); sendErr != nil {
			failureCount := part.SendFailureCount + 1
			d.logger.Warn(ctx, "part dispatch failed",
				"partId", part.ID, "requestId", part.RequestID,
				"failureCount", failureCount, "error", sendErr)
			if err := partsRepo.MarkSendFailed(ctx, part.ID, d.now(), failureCount); err != nil {
				return err
			}
			more = true
			return nil
		}

		if err := partsRepo.MarkSent(ctx, part.ID, d.now()); err != nil {
			return err
		}
		d.logger.Info(ctx, "part dispatched", "partId", part.ID, "requestId", part.RequestID)
		more = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return more, nil
}
