package models

import "github.com/shopspring/decimal"

// QueueItem points at one ledger record that still needs a label.
type QueueItem struct {
	Index     int
	Activity  string
	Direction Direction
	Amount    decimal.Decimal
}

// NewQueueItem builds the queue entry for the record at index.
func NewQueueItem(index int, record TransactionRecord) QueueItem {
	return QueueItem{
		Index:     index,
		Activity:  record.Activity,
		Direction: record.Direction(),
		Amount:    record.Amount(),
	}
}

// BuildQueue returns one item per unclassified record, in ledger order.
func BuildQueue(records []TransactionRecord) []QueueItem {
	var items []QueueItem
	for i, record := range records {
		if record.IsUnclassified() {
			items = append(items, NewQueueItem(i, record))
		}
	}
	return items
}
