// Package postgres implements the partitioned record store on PostgreSQL.
// Records are stored schema-less: metadata lives in dedicated columns for
// routing and indexing, the full document in a JSONB column. The composite
// primary key (farm_id, id) realizes partition-scoped addressing.
package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"farmledger/internal/fault"
	"farmledger/internal/metrics"
	"farmledger/internal/model"
	"farmledger/internal/repository"
)

// entity constrains P to a pointer to T that carries record metadata.
type entity[T any] interface {
	*T
	repository.Entity
}

// RecordStore is a PostgreSQL implementation of repository.RecordStore,
// instantiated once per record kind. It contains no business logic and
// performs no retries.
type RecordStore[T any, P entity[T]] struct {
	db   *sql.DB
	kind model.Kind
	met  *metrics.Metrics
	now  func() time.Time
}

// NewRecordStore creates a store bound to one record kind. met may be nil.
func NewRecordStore[T any, P entity[T]](db *sql.DB, kind model.Kind, met *metrics.Metrics) *RecordStore[T, P] {
	return &RecordStore[T, P]{db: db, kind: kind, met: met, now: time.Now}
}

var _ repository.RecordStore[*model.Expense] = (*RecordStore[model.Expense, *model.Expense])(nil)

// Create inserts a new record. An id collision within the partition is
// reported as fault.AlreadyExists rather than silently overwriting.
func (s *RecordStore[T, P]) Create(ctx context.Context, rec P, farmID string) (P, error) {
	var zero P
	m := rec.Metadata()
	if err := s.checkAddress(m.ID, farmID); err != nil {
		s.met.RecordOp("create", s.kind, err)
		return zero, err
	}
	if m.FarmID != farmID {
		err := fault.InvalidArgument("record farm id does not match partition key")
		s.met.RecordOp("create", s.kind, err)
		return zero, err
	}
	if m.Kind != s.kind {
		err := fault.InvalidArgument(fmt.Sprintf("record kind %q does not match store kind %q", m.Kind, s.kind))
		s.met.RecordOp("create", s.kind, err)
		return zero, err
	}

	doc, err := json.Marshal(rec)
	if err != nil {
		return zero, fmt.Errorf("marshal record: %w", err)
	}

	const q = `
		INSERT INTO records (farm_id, id, kind, created_at, updated_at, doc)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.ExecContext(ctx, q, farmID, m.ID, string(m.Kind), m.CreatedAt, m.UpdatedAt, doc)
	s.met.RecordOp("create", s.kind, err)
	if err != nil {
		return zero, translateErr("create record", err)
	}
	return rec, nil
}

// Get fetches a record by its composite (id, farmID) address.
func (s *RecordStore[T, P]) Get(ctx context.Context, id, farmID string) (P, error) {
	var zero P
	if err := s.checkAddress(id, farmID); err != nil {
		s.met.RecordOp("get", s.kind, err)
		return zero, err
	}

	const q = `
		SELECT doc FROM records
		WHERE farm_id = $1 AND id = $2 AND kind = $3
	`
	var doc []byte
	err := s.db.QueryRowContext(ctx, q, farmID, id, string(s.kind)).Scan(&doc)
	s.met.RecordOp("get", s.kind, err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, fault.NotFound(string(s.kind) + " record")
		}
		return zero, translateErr("get record", err)
	}

	var out T
	if err := json.Unmarshal(doc, &out); err != nil {
		return zero, fmt.Errorf("unmarshal record: %w", err)
	}
	return P(&out), nil
}

// Upsert replaces the full document, inserting it if absent. The caller
// supplies the complete desired state; no field-level merge happens. The
// record is stamped as updated before persisting.
func (s *RecordStore[T, P]) Upsert(ctx context.Context, rec P, farmID string) (P, error) {
	var zero P
	m := rec.Metadata()
	if err := s.checkAddress(m.ID, farmID); err != nil {
		s.met.RecordOp("upsert", s.kind, err)
		return zero, err
	}
	if m.FarmID != farmID {
		err := fault.InvalidArgument("record farm id does not match partition key")
		s.met.RecordOp("upsert", s.kind, err)
		return zero, err
	}
	if m.Kind != s.kind {
		err := fault.InvalidArgument(fmt.Sprintf("record kind %q does not match store kind %q", m.Kind, s.kind))
		s.met.RecordOp("upsert", s.kind, err)
		return zero, err
	}

	m.Touch(s.now())
	doc, err := json.Marshal(rec)
	if err != nil {
		return zero, fmt.Errorf("marshal record: %w", err)
	}

	const q = `
		INSERT INTO records (farm_id, id, kind, created_at, updated_at, doc)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (farm_id, id) DO UPDATE
		SET kind = EXCLUDED.kind, created_at = EXCLUDED.created_at,
		    updated_at = EXCLUDED.updated_at, doc = EXCLUDED.doc
	`
	_, err = s.db.ExecContext(ctx, q, farmID, m.ID, string(m.Kind), m.CreatedAt, m.UpdatedAt, doc)
	s.met.RecordOp("upsert", s.kind, err)
	if err != nil {
		return zero, translateErr("upsert record", err)
	}
	return rec, nil
}

// Delete removes a record. It does not return an error if the row does not
// exist; callers that need existence semantics check first.
func (s *RecordStore[T, P]) Delete(ctx context.Context, id, farmID string) error {
	if err := s.checkAddress(id, farmID); err != nil {
		s.met.RecordOp("delete", s.kind, err)
		return err
	}

	const q = `DELETE FROM records WHERE farm_id = $1 AND id = $2 AND kind = $3`
	res, err := s.db.ExecContext(ctx, q, farmID, id, string(s.kind))
	s.met.RecordOp("delete", s.kind, err)
	if err != nil {
		return translateErr("delete record", err)
	}
	// Zero rows affected is success: delete is idempotent at this layer.
	_, _ = res.RowsAffected()
	return nil
}

// Query streams records matching the filter. Rows are fetched lazily from
// the driver; closing the cursor early stops the scan.
func (s *RecordStore[T, P]) Query(ctx context.Context, f *repository.Filter) (repository.Cursor[P], error) {
	if f == nil {
		return nil, fault.InvalidArgument("filter is required")
	}
	if f.Kind() != s.kind {
		return nil, fault.InvalidArgument(fmt.Sprintf("filter kind %q does not match store kind %q", f.Kind(), s.kind))
	}

	where, args, err := compileFilter(f)
	if err != nil {
		s.met.RecordOp("query", s.kind, err)
		return nil, err
	}

	q := `SELECT doc FROM records WHERE ` + where
	if ordered, desc := f.Order(); ordered {
		if desc {
			q += ` ORDER BY doc->>'date' DESC`
		} else {
			q += ` ORDER BY doc->>'date' ASC`
		}
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	s.met.RecordOp("query", s.kind, err)
	if err != nil {
		return nil, translateErr("query records", err)
	}
	return &recordCursor[T, P]{rows: rows}, nil
}

func (s *RecordStore[T, P]) checkAddress(id, farmID string) error {
	if farmID == "" {
		return fault.InvalidArgument("farm id is required")
	}
	if id == "" {
		return fault.InvalidArgument("record id is required")
	}
	return nil
}

// recordCursor adapts sql.Rows to the forward-only cursor contract.
type recordCursor[T any, P entity[T]] struct {
	rows *sql.Rows
	cur  P
	err  error
}

func (c *recordCursor[T, P]) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}
	var doc []byte
	if err := c.rows.Scan(&doc); err != nil {
		c.err = err
		return false
	}
	var out T
	if err := json.Unmarshal(doc, &out); err != nil {
		c.err = fmt.Errorf("unmarshal record: %w", err)
		return false
	}
	c.cur = P(&out)
	return true
}

func (c *recordCursor[T, P]) Record() P { return c.cur }

func (c *recordCursor[T, P]) Err() error {
	if c.err != nil {
		return c.err
	}
	return translateNilable("scan records", c.rows.Err())
}

func (c *recordCursor[T, P]) Close() error { return c.rows.Close() }

// jsonExpr maps whitelisted filter fields to JSONB accessor expressions.
// Only expressions from this table ever reach query text; caller values are
// always bound as parameters.
var jsonExpr = map[repository.Field]string{
	repository.FieldDate:        `doc->>'date'`,
	repository.FieldSetDate:     `doc->>'setDate'`,
	repository.FieldCategory:    `doc->>'category'`,
	repository.FieldBuyer:       `doc->>'buyer'`,
	repository.FieldBatchID:     `doc->>'batchId'`,
	repository.FieldShedID:      `doc->>'shedId'`,
	repository.FieldFeedType:    `doc->>'feedType'`,
	repository.FieldPaymentMode: `doc->>'paymentMode'`,
}

// compileFilter renders a filter into a WHERE clause with positional bind
// parameters. The tenant and kind clauses always come first.
func compileFilter(f *repository.Filter) (string, []any, error) {
	if f.FarmID() == "" {
		return "", nil, fault.InvalidArgument("farm id is required")
	}
	if f.Kind() == "" {
		return "", nil, fault.InvalidArgument("record kind is required")
	}

	args := []any{f.FarmID(), string(f.Kind())}
	where := `farm_id = $1 AND kind = $2`
	for _, c := range f.Conds() {
		expr, ok := jsonExpr[c.Field]
		if !ok {
			return "", nil, fault.InvalidArgument(fmt.Sprintf("unknown filter field %q", c.Field))
		}
		args = append(args, c.Value)
		where += fmt.Sprintf(" AND %s %s $%d", expr, c.Op, len(args))
	}
	return where, args, nil
}

// translateErr maps driver failures onto the fault taxonomy. Unique
// violations become AlreadyExists; transient backend conditions become
// Unavailable so the caller may retry idempotent operations.
func translateErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // unique_violation
			return fault.AlreadyExists("record")
		}
		if transientPgCode(pgErr.Code) {
			return fault.Unavailable(op, err)
		}
	}
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return fault.Unavailable(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func translateNilable(op string, err error) error {
	if err == nil {
		return nil
	}
	return translateErr(op, err)
}

// transientPgCode reports SQLSTATEs worth retrying: connection exceptions
// (class 08), insufficient resources (class 53), cancelled or timed out
// statements, and serialization failures.
func transientPgCode(code string) bool {
	if len(code) >= 2 {
		switch code[:2] {
		case "08", "53":
			return true
		}
	}
	switch code {
	case "57014", // query_canceled
		"57P03", // cannot_connect_now
		"40001", // serialization_failure
		"40P01": // deadlock_detected
		return true
	}
	return false
}
