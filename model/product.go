package model

import (
	"slices"

	"github.com/goliatone/go-storefront-cache/document"
)

// Product is a catalog item.
type Product struct {
	ProductID      string      `json:"productId"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Price          float64     `json:"price"`
	Category       string      `json:"category"`
	Dimensions     *Dimensions `json:"dimensions,omitempty"`
	ImageURLs      []string    `json:"imageUrls"`
	ArModels       []ArModel   `json:"arModels"`
	AvailableStock int         `json:"availableStock"`
	Tags           []string    `json:"tags"`
}

// Dimensions describes the physical size of a product.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
	Unit   string  `json:"unit"`
}

// ArModel points to a 3D asset used for augmented reality previews.
type ArModel struct {
	URL    string `json:"url"`
	Format string `json:"format"`
}

// Clone returns a deep copy so the cache and the caller never share slices.
func (p Product) Clone() Product {
	out := p
	if p.Dimensions != nil {
		d := *p.Dimensions
		out.Dimensions = &d
	}
	out.ImageURLs = slices.Clone(p.ImageURLs)
	out.ArModels = slices.Clone(p.ArModels)
	out.Tags = slices.Clone(p.Tags)
	return out
}

// ProductCodec converts product documents.
var ProductCodec document.Codec[Product] = document.CodecFuncs[Product]{
	DecodeFn: DecodeProduct,
	EncodeFn: EncodeProduct,
}

// DecodeProduct builds a Product from a document. The document id is used
// when the body has no productId field.
func DecodeProduct(id string, f document.Fields) Product {
	p := Product{
		ProductID:      document.String(f, "productId"),
		Name:           document.String(f, "name"),
		Description:    document.String(f, "description"),
		Price:          document.Float(f, "price"),
		Category:       document.String(f, "category"),
		Dimensions:     DecodeDimensions(document.Map(f, "dimensions")),
		ImageURLs:      document.Strings(f, "imageUrls"),
		ArModels:       []ArModel{},
		AvailableStock: document.Int(f, "availableStock"),
		Tags:           document.Strings(f, "tags"),
	}
	if p.ProductID == "" {
		p.ProductID = id
	}
	for _, m := range document.Maps(f, "arModels") {
		p.ArModels = append(p.ArModels, DecodeArModel(m))
	}
	return p
}

// EncodeProduct writes every declared field. Dimensions are omitted when nil.
func EncodeProduct(p Product) document.Fields {
	models := make([]any, 0, len(p.ArModels))
	for _, m := range p.ArModels {
		models = append(models, EncodeArModel(m))
	}
	f := document.Fields{
		"productId":      p.ProductID,
		"name":           p.Name,
		"description":    p.Description,
		"price":          p.Price,
		"category":       p.Category,
		"imageUrls":      nonNil(p.ImageURLs),
		"arModels":       models,
		"availableStock": p.AvailableStock,
		"tags":           nonNil(p.Tags),
	}
	if p.Dimensions != nil {
		f["dimensions"] = EncodeDimensions(*p.Dimensions)
	}
	return f
}

// DecodeDimensions returns nil for a nil document.
func DecodeDimensions(f document.Fields) *Dimensions {
	if f == nil {
		return nil
	}
	return &Dimensions{
		Width:  document.Float(f, "width"),
		Height: document.Float(f, "height"),
		Depth:  document.Float(f, "depth"),
		Unit:   document.String(f, "unit"),
	}
}

func EncodeDimensions(d Dimensions) document.Fields {
	return document.Fields{
		"width":  d.Width,
		"height": d.Height,
		"depth":  d.Depth,
		"unit":   d.Unit,
	}
}

func DecodeArModel(f document.Fields) ArModel {
	return ArModel{
		URL:    document.String(f, "url"),
		Format: document.String(f, "format"),
	}
}

func EncodeArModel(m ArModel) document.Fields {
	return document.Fields{
		"url":    m.URL,
		"format": m.Format,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
