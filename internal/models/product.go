package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conditions lists the accepted values for Product.Condition.
var Conditions = []string{"new", "like new", "good", "fair", "poor"}

const (
	StatusActive   = "active"
	StatusSold     = "sold"
	StatusInactive = "inactive"
)

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Category    string             `bson:"category" json:"category"`
	Condition   string             `bson:"condition" json:"condition"`
	Images      []string           `bson:"images" json:"images"`
	Seller      primitive.ObjectID `bson:"seller" json:"-"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProductView is a product with its seller populated.
type ProductView struct {
	Product
	Seller any `json:"seller"`
}

// NewProductView embeds the seller summary, falling back to the bare id when
// the seller no longer exists.
func NewProductView(p Product, seller *User) ProductView {
	v := ProductView{Product: p, Seller: p.Seller}
	if seller != nil {
		v.Seller = seller.Seller()
	}
	return v
}

// ProductSummary is the part of a product embedded in chat responses.
type ProductSummary struct {
	ID     primitive.ObjectID `json:"_id"`
	Title  string             `json:"title"`
	Price  float64            `json:"price"`
	Images []string           `json:"images"`
}

func (p *Product) Summary() *ProductSummary {
	return &ProductSummary{ID: p.ID, Title: p.Title, Price: p.Price, Images: p.Images}
}
