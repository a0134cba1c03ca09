package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LineKind discriminates the CartLine variants.
type LineKind string

const (
	LineCustomDesign LineKind = "custom_design"
	LineApparel      LineKind = "apparel"
	LineBulk         LineKind = "bulk"
)

func (k LineKind) Valid() bool {
	return k == LineCustomDesign || k == LineApparel || k == LineBulk
}

const DefaultLineTitle = "Custom Product"

// CartLine is one item awaiting checkout. Exactly one of Design, Apparel or
// Bulk is expected to be set, matching Kind; nothing enforces it.
type CartLine struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"userId"`
	Kind      LineKind           `bson:"kind" json:"kind"`
	ProductID string             `bson:"product_id,omitempty" json:"productId,omitempty"`
	Title     string             `bson:"title" json:"title"`
	ImageURL  string             `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	Options   []string           `bson:"options,omitempty" json:"options,omitempty"`
	Quantity  int                `bson:"quantity,omitempty" json:"quantity,omitempty"`
	Notes     string             `bson:"order_notes,omitempty" json:"orderNotes,omitempty"`

	ProductTotal float64 `bson:"product_total,omitempty" json:"productTotal,omitempty"`
	ImprintTotal float64 `bson:"imprint_total,omitempty" json:"imprintTotal,omitempty"`
	OptionsTotal float64 `bson:"options_total,omitempty" json:"optionsTotal,omitempty"`
	Total        float64 `bson:"total,omitempty" json:"total,omitempty"`

	Design  *DesignDetails  `bson:"design,omitempty" json:"design,omitempty"`
	Apparel *ApparelDetails `bson:"apparel,omitempty" json:"apparel,omitempty"`
	Bulk    *BulkDetails    `bson:"bulk,omitempty" json:"bulk,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// DesignDetails belong to an uploaded custom sticker design.
type DesignDetails struct {
	StickerImageURLs []string `bson:"sticker_image_urls,omitempty" json:"stickerImageUrls,omitempty"`
	StickerNames     []string `bson:"sticker_names,omitempty" json:"stickerNames,omitempty"`
	StickerLocations []string `bson:"sticker_locations,omitempty" json:"stickerLocations,omitempty"`
}

// ApparelDetails belong to a catalog garment with imprints.
type ApparelDetails struct {
	Size             string         `bson:"size,omitempty" json:"size,omitempty"`
	SizeAndQuantity  map[string]int `bson:"size_and_quantity,omitempty" json:"sizeAndQuantity,omitempty"`
	ColorsName       string         `bson:"colors_name,omitempty" json:"colorsName,omitempty"`
	ColorsCode       string         `bson:"colors_code,omitempty" json:"colorsCode,omitempty"`
	ImprintFiles     []string       `bson:"imprint_files,omitempty" json:"imprintFiles,omitempty"`
	ImprintLocations []string       `bson:"imprint_locations,omitempty" json:"imprintLocations,omitempty"`
}

// BulkDetails belong to blank stock sold by size.
type BulkDetails struct {
	SizeAndQuantity map[string]int `bson:"size_and_quantity,omitempty" json:"sizeAndQuantity,omitempty"`
	ColorsName      string         `bson:"colors_name,omitempty" json:"colorsName,omitempty"`
	ColorsCode      string         `bson:"colors_code,omitempty" json:"colorsCode,omitempty"`
}

// Snapshot copies the line into an OrderItem. Slices and maps are cloned so
// later edits to the line never reach the order.
func (l CartLine) Snapshot() OrderItem {
	item := OrderItem{
		Kind:       l.Kind,
		ProductID:  l.ProductID,
		Title:      l.Title,
		ImageURL:   l.ImageURL,
		Options:    cloneStrings(l.Options),
		Quantity:   l.Quantity,
		UnitPrice:  UnitPrice(l.Total, l.Quantity),
		TotalPrice: Money(l.Total),
		OrderNotes: l.Notes,
	}
	if item.Title == "" {
		item.Title = DefaultLineTitle
	}

	switch {
	case l.Apparel != nil:
		item.Size = l.Apparel.Size
		item.SizeAndQuantity = cloneSizes(l.Apparel.SizeAndQuantity)
		item.ColorsName = l.Apparel.ColorsName
		item.ColorsCode = l.Apparel.ColorsCode
		item.ImprintFiles = cloneStrings(l.Apparel.ImprintFiles)
		item.ImprintLocations = cloneStrings(l.Apparel.ImprintLocations)
	case l.Bulk != nil:
		item.SizeAndQuantity = cloneSizes(l.Bulk.SizeAndQuantity)
		item.ColorsName = l.Bulk.ColorsName
		item.ColorsCode = l.Bulk.ColorsCode
	case l.Design != nil:
		item.ImprintFiles = cloneStrings(l.Design.StickerImageURLs)
		item.ImprintLocations = cloneStrings(l.Design.StickerLocations)
		item.StickerNames = cloneStrings(l.Design.StickerNames)
	}
	return item
}

// LineFromItem turns an ordered item back into a cart line for reordering.
// Items stored without a kind are classified by the fields they carry.
func LineFromItem(userID string, item OrderItem) CartLine {
	line := CartLine{
		UserID:    userID,
		Kind:      item.Kind,
		ProductID: item.ProductID,
		Title:     item.Title,
		ImageURL:  item.ImageURL,
		Options:   cloneStrings(item.Options),
		Quantity:  item.Quantity,
		Notes:     item.OrderNotes,
		Total:     item.TotalPrice,
	}
	if !line.Kind.Valid() {
		line.Kind = LineCustomDesign
		if item.Size != "" || len(item.SizeAndQuantity) > 0 || item.ColorsName != "" || item.ColorsCode != "" {
			line.Kind = LineApparel
		}
	}

	switch line.Kind {
	case LineApparel:
		line.Apparel = &ApparelDetails{
			Size:             item.Size,
			SizeAndQuantity:  cloneSizes(item.SizeAndQuantity),
			ColorsName:       item.ColorsName,
			ColorsCode:       item.ColorsCode,
			ImprintFiles:     cloneStrings(item.ImprintFiles),
			ImprintLocations: cloneStrings(item.ImprintLocations),
		}
	case LineBulk:
		line.Bulk = &BulkDetails{
			SizeAndQuantity: cloneSizes(item.SizeAndQuantity),
			ColorsName:      item.ColorsName,
			ColorsCode:      item.ColorsCode,
		}
	default:
		if len(item.ImprintFiles) > 0 || len(item.ImprintLocations) > 0 || len(item.StickerNames) > 0 {
			line.Design = &DesignDetails{
				StickerImageURLs: cloneStrings(item.ImprintFiles),
				StickerNames:     cloneStrings(item.StickerNames),
				StickerLocations: cloneStrings(item.ImprintLocations),
			}
		}
	}
	return line
}

// MapURLs applies fn to every asset URL on the line.
func (l *CartLine) MapURLs(fn func(string) string) {
	if l.ImageURL != "" {
		l.ImageURL = fn(l.ImageURL)
	}
	if l.Design != nil {
		l.Design.StickerImageURLs = mapStrings(l.Design.StickerImageURLs, fn)
	}
	if l.Apparel != nil {
		l.Apparel.ImprintFiles = mapStrings(l.Apparel.ImprintFiles, fn)
	}
}

// SumSizes adds up a size breakdown, ignoring negative entries.
func SumSizes(sizes map[string]int) int {
	n := 0
	for _, q := range sizes {
		if q > 0 {
			n += q
		}
	}
	return n
}

func mapStrings(in []string, fn func(string) string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = fn(s)
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneSizes(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
