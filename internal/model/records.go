package model

import "github.com/shopspring/decimal"

// Dates are stored as yyyy-MM-dd strings so lexicographic comparison in the
// store matches chronological order.
const DateLayout = "2006-01-02"

// EggCollection records one day's egg count for a shed.
type EggCollection struct {
	Meta
	ShedID        string   `json:"shedId"`
	Date          string   `json:"date"`
	EggsCollected int      `json:"eggsCollected"`
	BrokenEggs    int      `json:"brokenEggs"`
	Notes         string   `json:"notes,omitempty"`
	LocationName  string   `json:"locationName,omitempty"`
	Lat           *float64 `json:"lat,omitempty"`
	Lng           *float64 `json:"lng,omitempty"`
}

func NewEggCollection(farmID string) *EggCollection {
	return &EggCollection{Meta: newMeta(KindEgg, farmID)}
}

// FeedUsage records feed consumed on a date. CostPerKg may be zero when the
// cost is unknown; cost reports treat it as zero contribution.
type FeedUsage struct {
	Meta
	ShedID     string          `json:"shedId"`
	Date       string          `json:"date"`
	FeedType   string          `json:"feedType"`
	QuantityKg decimal.Decimal `json:"quantityKg"`
	CostPerKg  decimal.Decimal `json:"costPerKg"`
	Notes      string          `json:"notes,omitempty"`
}

func NewFeedUsage(farmID string) *FeedUsage {
	return &FeedUsage{Meta: newMeta(KindFeed, farmID)}
}

// MedRecord records a medicine or vaccine administration.
type MedRecord struct {
	Meta
	ShedID       string          `json:"shedId"`
	Date         string          `json:"date"`
	Name         string          `json:"name"`
	Type         string          `json:"type"` // "Medicine" or "Vaccine"
	DosePerBird  decimal.Decimal `json:"dosePerBird"`
	BirdsTreated int             `json:"birdsTreated"`
	TotalCost    decimal.Decimal `json:"totalCost"`
	Notes        string          `json:"notes,omitempty"`
}

func NewMedRecord(farmID string) *MedRecord {
	return &MedRecord{Meta: newMeta(KindMed, farmID), Type: "Medicine"}
}

// SaleCategory classifies what was sold.
type SaleCategory string

const (
	SaleEggs   SaleCategory = "eggs"
	SaleChicks SaleCategory = "chicks"
	SaleOther  SaleCategory = "other"
)

// Sale records a sale of eggs, chicks, or other produce.
type Sale struct {
	Meta
	Category     SaleCategory    `json:"category"`
	ItemOrBreed  string          `json:"itemOrBreed,omitempty"`
	Buyer        string          `json:"buyer,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Date         string          `json:"date"`
	PaymentMode  string          `json:"paymentMode,omitempty"`
	ChickAgeDays int             `json:"chickAgeDays,omitempty"`
	Notes        string          `json:"notes,omitempty"`
}

func NewSale(farmID string) *Sale {
	return &Sale{Meta: newMeta(KindSale, farmID)}
}

// HatchBatch records an incubation batch from set to hatch.
type HatchBatch struct {
	Meta
	BatchID        string `json:"batchId"`
	Breed          string `json:"breed,omitempty"`
	IncubatorType  string `json:"incubatorType,omitempty"`
	SetDate        string `json:"setDate"`
	EggsSet        int    `json:"eggsSet"`
	Infertile      int    `json:"infertile,omitempty"`
	EarlyMortality int    `json:"earlyMortality,omitempty"`
	LateMortality  int    `json:"lateMortality,omitempty"`
	Hatched        int    `json:"hatched,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

func NewHatchBatch(farmID string) *HatchBatch {
	return &HatchBatch{Meta: newMeta(KindHatch, farmID)}
}

// Expense records an operational expense. It is the only kind that carries
// attachments: AttachmentRefs holds canonical object-store references in
// display order. References never embed an access token; signed URLs are
// generated fresh on every read.
type Expense struct {
	Meta
	Date           string          `json:"date"`
	Category       string          `json:"category"` // Feed/Medicine/Labor/...
	Vendor         string          `json:"vendor,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentMode    string          `json:"paymentMode,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	AttachmentRefs []string        `json:"attachmentRefs,omitempty"`
}

func NewExpense(farmID string) *Expense {
	return &Expense{Meta: newMeta(KindExpense, farmID)}
}
