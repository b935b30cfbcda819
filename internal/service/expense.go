package service

import (
	"context"
	"path"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"farmledger/internal/fault"
	"farmledger/internal/model"
	"farmledger/internal/repository"
)

// ExpenseInput carries the caller-editable fields of an expense. Metadata
// (id, farm, kind, timestamps) is never taken from input.
type ExpenseInput struct {
	Date        string
	Category    string
	Vendor      string
	Amount      decimal.Decimal
	PaymentMode string
	Notes       string
}

func (in ExpenseInput) validate() error {
	if in.Date == "" {
		return fault.InvalidArgument("date is required")
	}
	if err := validateDate(in.Date); err != nil {
		return err
	}
	if in.Category == "" {
		return fault.InvalidArgument("category is required")
	}
	if in.Amount.IsNegative() {
		return fault.InvalidArgument("amount must not be negative")
	}
	return nil
}

func (in ExpenseInput) apply(e *model.Expense) {
	e.Date = in.Date
	e.Category = in.Category
	e.Vendor = in.Vendor
	e.Amount = in.Amount
	e.PaymentMode = in.PaymentMode
	e.Notes = in.Notes
}

// ExpenseView is an expense decorated with signed receipt URLs, one per
// attachment reference and in the same order.
type ExpenseView struct {
	Expense     *model.Expense `json:"expense"`
	ReceiptURLs []string       `json:"receiptUrls"`
}

// ExpenseService orchestrates expense records and their receipt attachments
// so that the stored reference list and the object store never disagree.
type ExpenseService struct {
	records     repository.RecordStore[*model.Expense]
	attachments *Reconciler
	signer      *Issuer
	log         *zap.Logger
}

func NewExpenseService(records repository.RecordStore[*model.Expense], attachments *Reconciler, signer *Issuer, log *zap.Logger) *ExpenseService {
	return &ExpenseService{
		records:     records,
		attachments: attachments,
		signer:      signer,
		log:         log.Named("expense"),
	}
}

// Create stores a new expense with its receipt files. Receipts are uploaded
// first; if the record insert then fails, the uploads are rolled back so no
// orphaned objects remain.
func (s *ExpenseService) Create(ctx context.Context, farmID string, in ExpenseInput, receipts []File) (*ExpenseView, error) {
	if farmID == "" {
		return nil, fault.InvalidArgument("farm id is required")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	refs, err := s.attachments.OnCreate(ctx, expenseFolder(farmID), receipts)
	if err != nil {
		s.discard(ctx, refs)
		return nil, err
	}

	e := model.NewExpense(farmID)
	in.apply(e)
	e.AttachmentRefs = refs

	created, err := s.records.Create(ctx, e, farmID)
	if err != nil {
		s.discard(ctx, refs)
		return nil, err
	}
	return s.view(ctx, created)
}

// Get returns one expense with freshly signed receipt URLs.
func (s *ExpenseService) Get(ctx context.Context, id, farmID string) (*ExpenseView, error) {
	e, err := s.records.Get(ctx, id, farmID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, e)
}

// List returns a farm's expenses, oldest first, optionally bounded by date
// range and category.
func (s *ExpenseService) List(ctx context.Context, farmID, from, to, category string) ([]*ExpenseView, error) {
	if farmID == "" {
		return nil, fault.InvalidArgument("farm id is required")
	}
	if err := validateDateBounds(from, to); err != nil {
		return nil, err
	}

	f := repository.NewFilter(farmID, model.KindExpense).
		DateFrom(from).
		DateTo(to).
		Equals(repository.FieldCategory, category).
		OrderByDate(false)

	cur, err := s.records.Query(ctx, f)
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	views := make([]*ExpenseView, 0)
	for cur.Next() {
		v, err := s.view(ctx, cur.Record())
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return views, nil
}

// Update replaces an expense's editable fields and reconciles its receipt
// set: existing references missing from keepRefs are deleted, addFiles are
// uploaded. The write is last-write-wins on the whole document.
func (s *ExpenseService) Update(ctx context.Context, id, farmID string, in ExpenseInput, keepRefs []string, addFiles []File) (*ExpenseView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	e, err := s.records.Get(ctx, id, farmID)
	if err != nil {
		return nil, err
	}

	refs, err := s.attachments.OnUpdate(ctx, e.AttachmentRefs, keepRefs, addFiles, expenseFolder(farmID))
	if err != nil {
		return nil, err
	}

	in.apply(e)
	e.AttachmentRefs = refs

	saved, err := s.records.Upsert(ctx, e, farmID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, saved)
}

// Delete removes an expense and its receipts. Receipt deletion runs first
// and a failure blocks the record delete, so a stored expense never points
// at objects that were silently dropped. Deleting an absent expense is a
// no-op.
func (s *ExpenseService) Delete(ctx context.Context, id, farmID string) error {
	e, err := s.records.Get(ctx, id, farmID)
	if fault.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.attachments.OnDelete(ctx, e.AttachmentRefs); err != nil {
		return err
	}
	return s.records.Delete(ctx, id, farmID)
}

func (s *ExpenseService) view(ctx context.Context, e *model.Expense) (*ExpenseView, error) {
	urls := make([]string, 0, len(e.AttachmentRefs))
	for _, ref := range e.AttachmentRefs {
		u, err := s.signer.Resolve(ctx, ref)
		if err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return &ExpenseView{Expense: e, ReceiptURLs: urls}, nil
}

// discard rolls back uploads after a failed create. Best effort: the record
// was never stored, so a leaked object is only wasted space, not a dangling
// reference.
func (s *ExpenseService) discard(ctx context.Context, refs []string) {
	if len(refs) == 0 {
		return
	}
	if err := s.attachments.OnDelete(ctx, refs); err != nil {
		s.log.Warn("rollback of uploaded receipts failed", zap.Error(err))
	}
}

func expenseFolder(farmID string) string {
	return path.Join("expenses", farmID)
}

func validateDate(date string) error {
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return fault.InvalidArgument("malformed date " + date + ", want yyyy-MM-dd")
	}
	return nil
}

func validateDateBounds(from, to string) error {
	if from != "" {
		if err := validateDate(from); err != nil {
			return err
		}
	}
	if to != "" {
		if err := validateDate(to); err != nil {
			return err
		}
	}
	return nil
}
