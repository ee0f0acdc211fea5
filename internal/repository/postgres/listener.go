package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// listen acquires a dedicated connection, executes LISTEN on the given
// channel synchronously, and then starts a goroutine that runs refetch after
// every notification. LISTEN completes before listen returns, so callers can
// take their initial snapshot afterwards knowing no notification falls
// between the two. The returned release func stops the listener; it is safe
// to call once the parent context is already cancelled.
func (s *Store) listen(ctx context.Context, channel string, refetch func(context.Context) error, onError func(error)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
		conn.Release()
		cancel()
		return nil, err
	}

	done := make(chan struct{})

	go func() {
		defer close(done)
		defer conn.Release()

		for {
			if _, err := conn.Conn().WaitForNotification(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				s.reportListenError(channel, err, onError)
				return
			}

			if err := refetch(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				s.reportListenError(channel, err, onError)
				return
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}, nil
}

func (s *Store) reportListenError(channel string, err error, onError func(error)) {
	if errors.Is(err, pgx.ErrTxClosed) || errors.Is(err, context.Canceled) {
		return
	}
	log.Warn().Err(err).Str("channel", channel).Msg("Live query stopped")
	if onError != nil {
		onError(err)
	}
}
