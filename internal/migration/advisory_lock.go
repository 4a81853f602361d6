package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"
)

// migrateLockKey is shared by every billinghub process migrating the same database.
var migrateLockKey = func() int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("billinghub:migrate"))
	return int64(h.Sum64())
}()

const lockPollInterval = 500 * time.Millisecond

// advisoryLock pins the connection that took a postgres session lock; the
// lock can only be released from that session.
type advisoryLock struct {
	conn *sql.Conn
}

// acquireAdvisoryLock waits for the migrate lock until ctx is done.
func acquireAdvisoryLock(ctx context.Context, db *sql.DB) (*advisoryLock, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		var locked bool
		if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", migrateLockKey).Scan(&locked); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("acquire advisory lock: %w", err)
		}
		if locked {
			return &advisoryLock{conn: conn}, nil
		}

		select {
		case <-ctx.Done():
			_ = conn.Close()
			return nil, fmt.Errorf("another migration holds the advisory lock: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *advisoryLock) Release(ctx context.Context) error {
	defer l.conn.Close()

	var released bool
	if err := l.conn.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", migrateLockKey).Scan(&released); err != nil {
		return fmt.Errorf("release advisory lock: %w", err)
	}
	if !released {
		return errors.New("advisory lock was not held by this session")
	}
	return nil
}
