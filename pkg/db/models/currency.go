package models

// Currency maps an uppercase ISO-4217 code to its ledger id.
type Currency struct {
	ID   int16  `gorm:"column:currency_id;primaryKey"`
	Code string `gorm:"column:currency_code;type:char(3);not null;unique"`
	Name string `gorm:"column:name;not null"`
}
