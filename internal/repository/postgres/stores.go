package postgres

import (
	"database/sql"

	"farmledger/internal/metrics"
	"farmledger/internal/model"
	"farmledger/internal/repository"
)

// Stores bundles one record store per kind, all sharing the same connection
// pool. Construct it once at startup and inject the members where needed.
type Stores struct {
	Eggs     repository.RecordStore[*model.EggCollection]
	Feed     repository.RecordStore[*model.FeedUsage]
	Meds     repository.RecordStore[*model.MedRecord]
	Sales    repository.RecordStore[*model.Sale]
	Hatches  repository.RecordStore[*model.HatchBatch]
	Expenses repository.RecordStore[*model.Expense]
	Reports  repository.ReportStore
}

func NewStores(db *sql.DB, met *metrics.Metrics) *Stores {
	return &Stores{
		Eggs:     NewRecordStore[model.EggCollection, *model.EggCollection](db, model.KindEgg, met),
		Feed:     NewRecordStore[model.FeedUsage, *model.FeedUsage](db, model.KindFeed, met),
		Meds:     NewRecordStore[model.MedRecord, *model.MedRecord](db, model.KindMed, met),
		Sales:    NewRecordStore[model.Sale, *model.Sale](db, model.KindSale, met),
		Hatches:  NewRecordStore[model.HatchBatch, *model.HatchBatch](db, model.KindHatch, met),
		Expenses: NewRecordStore[model.Expense, *model.Expense](db, model.KindExpense, met),
		Reports:  NewReportsPostgres(db),
	}
}
