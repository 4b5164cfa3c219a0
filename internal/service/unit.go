package service

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/maxviazov/cricket-tournament-service/internal/repository"
	"github.com/rs/zerolog"
)

// maxConflictRetries bounds how often a unit of work is replayed after a stale version write.
const maxConflictRetries = 3

// unitOfWork runs a lifecycle operation inside one transaction and replays it when
// an optimistic version check fails. fn must re-read everything it writes.
type unitOfWork struct {
	tx  repository.TxManager
	log zerolog.Logger
}

func (u unitOfWork) run(ctx context.Context, op string, fn repository.TxFunc) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := u.tx.WithinTx(ctx, fn)
		if err == nil {
			return nil
		}
		if errors.Is(err, repository.ErrConflict) {
			u.log.Debug().Err(err).Str("op", op).Int("attempt", attempt).Msg("version conflict")
			return err
		}
		return backoff.Permanent(err)
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 10 * time.Millisecond
	eb.MaxInterval = 200 * time.Millisecond
	eb.MaxElapsedTime = 2 * time.Second

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(eb, maxConflictRetries), ctx))
	if err != nil && errors.Is(err, repository.ErrConflict) {
		u.log.Warn().Str("op", op).Int("attempts", attempt).Msg("giving up after version conflicts")
	}
	return err
}

// logFailure keeps rejected requests at debug and reserves error level for unexpected failures.
func logFailure(log zerolog.Logger, err error, msg, idKey string, id int64) {
	ev := log.Error()
	if errors.Is(err, ErrInvalidRequest) || errors.Is(err, ErrInvalidInput) || errors.Is(err, repository.ErrNotFound) {
		ev = log.Debug()
	}
	ev = ev.Err(err)
	if id > 0 {
		ev = ev.Int64(idKey, id)
	}
	ev.Msg(msg)
}
