package models

import "time"

// Product is a catalog entry. Price is in paise so arithmetic stays
// exact; the UI owns formatting.
type Product struct {
	ProductID string    `json:"productid" bson:"productid"`
	Name      string    `json:"name" bson:"name"`
	Category  string    `json:"category" bson:"category"` // e.g. "fruits", "dairy", "staples"
	Price     int64     `json:"price" bson:"price"`       // unit price in paise
	Stock     int       `json:"stock" bson:"stock"`
	Unit      string    `json:"unit,omitempty" bson:"unit,omitempty"` // e.g. "kg", "pack"
	ImagePath string    `json:"image" bson:"image"`
	ThumbPath string    `json:"thumb,omitempty" bson:"thumb,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
