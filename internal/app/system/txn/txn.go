// internal/app/system/txn/txn.go

// Package txn runs multi-document write sequences inside a MongoDB
// transaction when the server supports one (replica set / mongos), and falls
// back to plain sequential writes on standalone servers.
//
// The workflows that cross collections (invitation acceptance, the group↔car
// link, cascades) call WithTransaction so the redundant links are atomic
// where the deployment allows it. On the fallback path the writes keep the
// original best-effort sequencing, and a mid-sequence failure leaves the
// completed steps committed.
package txn

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// WithTransaction executes fn transactionally when possible. fn must be safe
// to re-run: if the transaction machinery itself is unsupported, fn is
// executed once more outside a transaction (an aborted transaction persists
// nothing, so the rerun starts clean).
func WithTransaction(ctx context.Context, client *mongo.Client, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			logFallback(log, err)
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		logFallback(log, err)
		return fn(ctx)
	}
	return err
}

func logFallback(log *zap.Logger, err error) {
	if log != nil {
		log.Debug("transactions unavailable, using sequential writes", zap.Error(err))
	}
}

// Server error codes that indicate transactions are not available on this
// topology rather than that this particular transaction failed.
const (
	codeIllegalOperation     = 20
	codeCommandNotSupported  = 51
	codeOperationNotSupinTxn = 263
)

// IsNotSupported reports whether err means the server cannot run
// transactions at all (standalone mongod, old version), as opposed to a
// transient or logical transaction failure.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if ok := asCommandError(err, &cmdErr); ok {
		switch cmdErr.Code {
		case codeIllegalOperation, codeCommandNotSupported, codeOperationNotSupinTxn:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	both := func(a, b string) bool {
		return strings.Contains(msg, a) && strings.Contains(msg, b)
	}
	return both("transaction", "replica set") ||
		both("session", "not supported") ||
		both("transaction", "session") ||
		both("illegal operation", "transaction")
}

func asCommandError(err error, target *mongo.CommandError) bool {
	if ce, ok := err.(mongo.CommandError); ok {
		*target = ce
		return true
	}
	return false
}
