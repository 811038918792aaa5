package errors

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes we translate.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// ErrorInfo is the transport-neutral shape of a classified error.
type ErrorInfo struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
}

// FromStore classifies an error coming out of gorm into the catalog taxonomy.
// entity and id describe the record the operation targeted and are used when
// the store reports a missing row. Errors already in the taxonomy pass through.
func FromStore(err error, op, entity string, id uint) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrReferentialIntegrity) || errors.Is(err, ErrConnection) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewNotFound(entity, id)
	}

	if isConnectionError(err) {
		return &ConnectionError{Op: op, Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return &ReferentialIntegrityError{Entity: entity, ID: id, Referrer: pgErr.TableName}
		case pgUniqueViolation:
			return NewValidation(constraintField(pgErr.ConstraintName), "value already in use")
		}
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return &ReferentialIntegrityError{Entity: entity, ID: id}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return NewValidation("", "value already in use")
	}

	return fmt.Errorf("%s: %w", op, err)
}

func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, needle := range []string{
		"connection refused",
		"no such host",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"server closed the connection",
	} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}

// constraintField guesses the column from an index name like idx_products_code.
func constraintField(constraint string) string {
	if constraint == "" {
		return ""
	}
	parts := strings.Split(constraint, "_")
	return parts[len(parts)-1]
}

// ParseError maps a classified error onto an HTTP status, code and message.
// Unknown errors become a 500 without leaking internals.
func ParseError(err error) ErrorInfo {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		info := ErrorInfo{
			Status:  http.StatusBadRequest,
			Code:    ValidationInvalidInput,
			Message: validationErr.Error(),
		}
		if validationErr.Field != "" {
			info.Fields = map[string]string{validationErr.Field: validationErr.Message}
		}
		if strings.Contains(validationErr.Message, "already in use") {
			info.Code = ValidationDuplicate
		}
		return info
	}

	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return ErrorInfo{
			Status:  http.StatusNotFound,
			Code:    NotFoundCode(notFoundErr.Entity),
			Message: "record unavailable: " + notFoundErr.Error(),
		}
	}

	var integrityErr *ReferentialIntegrityError
	if errors.As(err, &integrityErr) {
		return ErrorInfo{
			Status:  http.StatusConflict,
			Code:    ResourceInUse,
			Message: integrityErr.Error(),
		}
	}

	if errors.Is(err, ErrConnection) {
		return ErrorInfo{
			Status:  http.StatusServiceUnavailable,
			Code:    InternalUnavailable,
			Message: "catalog store is unavailable, try again later",
		}
	}

	return ErrorInfo{
		Status:  http.StatusInternalServerError,
		Code:    InternalServerError,
		Message: "internal server error",
	}
}
