package repository

import "farmledger/internal/model"

// Field names a queryable document field. The set is closed: backends map
// each field to a storage expression, so a caller can never smuggle query
// syntax through a field name.
type Field string

const (
	FieldDate        Field = "date"
	FieldSetDate     Field = "setDate"
	FieldCategory    Field = "category"
	FieldBuyer       Field = "buyer"
	FieldBatchID     Field = "batchId"
	FieldShedID      Field = "shedId"
	FieldFeedType    Field = "feedType"
	FieldPaymentMode Field = "paymentMode"
)

// Op is a comparison operator within a predicate clause.
type Op string

const (
	OpEq  Op = "="
	OpGTE Op = ">="
	OpLTE Op = "<="
)

// Cond is one predicate clause. Values are always carried as data and bound
// as parameters by the backend, never interpolated into query text.
type Cond struct {
	Field Field
	Op    Op
	Value string
}

// Filter is an ordered conjunction of clauses scoped to one farm and one
// record kind. The tenant-equality and kind-equality clauses are fixed at
// construction and always compile first; cross-tenant or cross-kind
// predicates are impossible to express.
type Filter struct {
	farmID    string
	kind      model.Kind
	conds     []Cond
	orderDesc bool
	ordered   bool
}

// NewFilter starts a predicate for the given farm and kind.
func NewFilter(farmID string, kind model.Kind) *Filter {
	return &Filter{farmID: farmID, kind: kind}
}

// DateFrom appends a date >= clause. Empty values are ignored so an absent
// range bound produces no clause at all.
func (f *Filter) DateFrom(date string) *Filter {
	if date != "" {
		f.conds = append(f.conds, Cond{Field: FieldDate, Op: OpGTE, Value: date})
	}
	return f
}

// DateTo appends a date <= clause; empty values are ignored.
func (f *Filter) DateTo(date string) *Filter {
	if date != "" {
		f.conds = append(f.conds, Cond{Field: FieldDate, Op: OpLTE, Value: date})
	}
	return f
}

// Equals appends an equality clause on a whitelisted field; empty values
// are ignored.
func (f *Filter) Equals(field Field, value string) *Filter {
	if value != "" {
		f.conds = append(f.conds, Cond{Field: field, Op: OpEq, Value: value})
	}
	return f
}

// OrderByDate requests date ordering of the result. Without it the store
// guarantees no ordering.
func (f *Filter) OrderByDate(desc bool) *Filter {
	f.ordered = true
	f.orderDesc = desc
	return f
}

// FarmID returns the mandatory tenant clause value.
func (f *Filter) FarmID() string { return f.farmID }

// Kind returns the mandatory discriminator clause value.
func (f *Filter) Kind() model.Kind { return f.kind }

// Conds returns the optional clauses in append order.
func (f *Filter) Conds() []Cond { return f.conds }

// Order reports whether date ordering was requested and its direction.
func (f *Filter) Order() (ordered, desc bool) { return f.ordered, f.orderDesc }
