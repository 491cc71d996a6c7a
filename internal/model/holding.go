package model

// Holding is one recorded purchase of an instrument. PurchaseDate is
// kept as the text it was written with, so reading a row back yields
// the stored value verbatim. Every field is comparable: two holdings
// are equal iff all five fields match.
type Holding struct {
	OwnerID      int64   `gorm:"column:owner_id"`
	Ticker       string  `gorm:"column:stock_id"`
	Quantity     int64   `gorm:"column:quantity"`
	UnitPrice    float64 `gorm:"column:unit_price"`
	PurchaseDate string  `gorm:"column:purchase_date"`
}

func (Holding) TableName() string { return "holdings" }
