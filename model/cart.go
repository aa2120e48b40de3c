package model

import "github.com/goliatone/go-storefront-cache/document"

// CartItem is a product line in a user's cart sub-collection.
type CartItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"imageUrl"`
}

// Subtotal is price times quantity.
func (c CartItem) Subtotal() float64 {
	return c.Price * float64(c.Quantity)
}

// CartItemCodec converts cart item documents.
var CartItemCodec document.Codec[CartItem] = document.CodecFuncs[CartItem]{
	DecodeFn: DecodeCartItem,
	EncodeFn: EncodeCartItem,
}

func DecodeCartItem(id string, f document.Fields) CartItem {
	c := CartItem{
		ProductID: document.String(f, "productId"),
		Name:      document.String(f, "name"),
		Price:     document.Float(f, "price"),
		Quantity:  document.Int(f, "quantity"),
		ImageURL:  document.String(f, "imageUrl"),
	}
	if c.ProductID == "" {
		c.ProductID = id
	}
	return c
}

func EncodeCartItem(c CartItem) document.Fields {
	return document.Fields{
		"productId": c.ProductID,
		"name":      c.Name,
		"price":     c.Price,
		"quantity":  c.Quantity,
		"imageUrl":  c.ImageURL,
	}
}
