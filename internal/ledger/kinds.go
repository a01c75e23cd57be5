package ledger

import "assettrack-backend/internal/models"

// kindSpec describes how availability is represented for one stock kind.
// Stored kinds keep an available counter on the stock row and mutate it with
// conditional updates; derived kinds recompute availability from open
// assignments under a row lock; the singleton kind (assets) uses the status
// column as its one-unit counter.
type kindSpec struct {
	table     string
	derived   bool
	singleton bool
}

var kinds = map[models.StockKind]kindSpec{
	models.StockAccessory: {table: "accessories"},
	models.StockComponent: {table: "components"},
	models.StockAccount:   {table: "accounts"},
	models.StockLicense:   {table: "licenses", derived: true},
	models.StockAsset:     {table: "assets", singleton: true},
}
