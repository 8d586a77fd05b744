package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Failure classes tell operators, and payment providers via the HTTP status,
// whether repeating the same input can succeed.
const (
	ClassTransient = "transient"
	ClassPermanent = "permanent"
)

// Class reports whether err is worth retrying. Untyped errors are treated as
// transient, matching CodeOf's Internal default.
func Class(err error) string {
	if err == nil || !IsRetryable(err) {
		return ClassPermanent
	}
	return ClassTransient
}

// ErrorDump is the log-only view of an error: its typed code, failure class,
// wrap chain and any Postgres diagnostics found along the chain.
type ErrorDump struct {
	Code  Code     `json:"code,omitempty"`
	Class string   `json:"class,omitempty"`
	Chain []string `json:"chain,omitempty"`
	PG    *PGDump  `json:"pg,omitempty"`
}

type PGDump struct {
	Code       string `json:"code,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"message,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{Code: CodeOf(err), Class: Class(err)}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgxErr):
		d.PG = &PGDump{
			Code:       pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}
	case errors.As(err, &pqErr):
		d.PG = &PGDump{
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}
	return d
}

// Fields flattens the dump into structured log fields.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error_code":    d.Code,
		"failure_class": d.Class,
		"error_chain":   d.Chain,
	}
	if d.PG != nil {
		fields["pg_code"] = d.PG.Code
		fields["pg_constraint"] = d.PG.Constraint
		fields["pg_table"] = d.PG.Table
		fields["pg_column"] = d.PG.Column
		fields["pg_detail"] = d.PG.Detail
		fields["pg_message"] = d.PG.Message
	}
	return fields
}
