package services

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	pkgerrors "github.com/yungbote/worldkernel-backend/internal/pkg/errors"
)

var errDatastore = errors.New("datastore")

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// storeError classifies a datastore failure under one of the pkg/errors sentinels
// and keeps the original error in the chain.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pkgerrors.ErrNotFound) ||
		errors.Is(err, pkgerrors.ErrUnavailable) ||
		errors.Is(err, pkgerrors.ErrConflict) ||
		errors.Is(err, pkgerrors.ErrInvalidArgument) ||
		errors.Is(err, pkgerrors.ErrUnauthorized) ||
		errors.Is(err, pkgerrors.ErrForbidden) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, classify(err), err)
}

func classify(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.ErrNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || pgconn.Timeout(err) {
		return pkgerrors.ErrUnavailable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation:
			return pkgerrors.ErrConflict
		case pgErr.Code == pgForeignKeyViolation:
			return pkgerrors.ErrNotFound
		case pgErr.Code == pgCheckViolation:
			return pkgerrors.ErrInvalidArgument
		case len(pgErr.Code) >= 2 && (pgErr.Code[:2] == "08" || pgErr.Code[:2] == "57"):
			// connection exception / operator intervention
			return pkgerrors.ErrUnavailable
		}
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return pkgerrors.ErrUnavailable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return pkgerrors.ErrUnavailable
	}
	return errDatastore
}
