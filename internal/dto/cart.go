package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"print-order-service/internal/model"
)

// CartItem is the flat wire shape of a cart line, shared by the cart
// endpoints and the checkout body.
type CartItem struct {
	ID               string         `json:"id,omitempty"`
	Kind             model.LineKind `json:"kind,omitempty"`
	ProductID        string         `json:"productId,omitempty"`
	Title            string         `json:"title"`
	ImageURL         string         `json:"imageUrl,omitempty"`
	Options          []string       `json:"options,omitempty"`
	Quantity         int            `json:"quantity"`
	OrderNotes       string         `json:"orderNotes,omitempty"`
	Size             string         `json:"size,omitempty"`
	SizeAndQuantity  map[string]int `json:"sizeAndQuantity,omitempty"`
	ColorsName       string         `json:"colorsName,omitempty"`
	ColorsCode       string         `json:"colorsCode,omitempty"`
	ImprintFiles     []string       `json:"imprintFiles,omitempty"`
	ImprintLocations []string       `json:"imprintLocations,omitempty"`
	StickerImageURLs []string       `json:"stickerImageUrls,omitempty"`
	StickerNames     []string       `json:"stickerNames,omitempty"`
	ProductTotal     float64        `json:"productTotal,omitempty"`
	ImprintTotal     float64        `json:"imprintTotal,omitempty"`
	OptionsTotal     float64        `json:"optionsTotal,omitempty"`
	Total            float64        `json:"total"`
	CreatedAt        *time.Time     `json:"createdAt,omitempty"`
}

// FromLine flattens a stored line.
func FromLine(l model.CartLine) CartItem {
	it := CartItem{
		Kind:         l.Kind,
		ProductID:    l.ProductID,
		Title:        l.Title,
		ImageURL:     l.ImageURL,
		Options:      l.Options,
		Quantity:     l.Quantity,
		OrderNotes:   l.Notes,
		ProductTotal: l.ProductTotal,
		ImprintTotal: l.ImprintTotal,
		OptionsTotal: l.OptionsTotal,
		Total:        l.Total,
	}
	if !l.ID.IsZero() {
		it.ID = l.ID.Hex()
	}
	if !l.CreatedAt.IsZero() {
		created := l.CreatedAt
		it.CreatedAt = &created
	}
	if d := l.Design; d != nil {
		it.StickerImageURLs = d.StickerImageURLs
		it.StickerNames = d.StickerNames
		it.ImprintLocations = d.StickerLocations
	}
	if a := l.Apparel; a != nil {
		it.Size = a.Size
		it.SizeAndQuantity = a.SizeAndQuantity
		it.ColorsName = a.ColorsName
		it.ColorsCode = a.ColorsCode
		it.ImprintFiles = a.ImprintFiles
		it.ImprintLocations = a.ImprintLocations
	}
	if b := l.Bulk; b != nil {
		it.SizeAndQuantity = b.SizeAndQuantity
		it.ColorsName = b.ColorsName
		it.ColorsCode = b.ColorsCode
	}
	return it
}

func FromLines(lines []model.CartLine) []CartItem {
	out := make([]CartItem, len(lines))
	for i, l := range lines {
		out[i] = FromLine(l)
	}
	return out
}

// ToLine rebuilds the variant structure. An explicit kind wins; otherwise a
// size, size breakdown or color makes it apparel and anything else is a
// custom design.
func (it CartItem) ToLine() model.CartLine {
	l := model.CartLine{
		Kind:         it.Kind,
		ProductID:    it.ProductID,
		Title:        it.Title,
		ImageURL:     it.ImageURL,
		Options:      it.Options,
		Quantity:     it.Quantity,
		Notes:        it.OrderNotes,
		ProductTotal: it.ProductTotal,
		ImprintTotal: it.ImprintTotal,
		OptionsTotal: it.OptionsTotal,
		Total:        it.Total,
	}
	if id, err := primitive.ObjectIDFromHex(it.ID); err == nil {
		l.ID = id
	}
	if it.CreatedAt != nil {
		l.CreatedAt = *it.CreatedAt
	}

	if !l.Kind.Valid() {
		switch {
		case it.Size != "" || len(it.SizeAndQuantity) > 0 || it.ColorsName != "" || it.ColorsCode != "":
			l.Kind = model.LineApparel
		default:
			l.Kind = model.LineCustomDesign
		}
	}

	switch l.Kind {
	case model.LineApparel:
		l.Apparel = &model.ApparelDetails{
			Size:             it.Size,
			SizeAndQuantity:  it.SizeAndQuantity,
			ColorsName:       it.ColorsName,
			ColorsCode:       it.ColorsCode,
			ImprintFiles:     it.ImprintFiles,
			ImprintLocations: it.ImprintLocations,
		}
	case model.LineBulk:
		l.Bulk = &model.BulkDetails{
			SizeAndQuantity: it.SizeAndQuantity,
			ColorsName:      it.ColorsName,
			ColorsCode:      it.ColorsCode,
		}
	default:
		files := it.StickerImageURLs
		if len(files) == 0 {
			files = it.ImprintFiles
		}
		if len(files) > 0 || len(it.StickerNames) > 0 || len(it.ImprintLocations) > 0 {
			l.Design = &model.DesignDetails{
				StickerImageURLs: files,
				StickerNames:     it.StickerNames,
				StickerLocations: it.ImprintLocations,
			}
		}
	}
	return l
}

// ParseCartForm reads an add-to-cart form. sizes and options may be JSON
// encoded; imprintLocations and stickerNames may repeat. Quantity is the sum
// of the size breakdown when one is present. The line total is grandTotal,
// else total, else the sum of the component totals.
func ParseCartForm(form url.Values) (CartItem, error) {
	it := CartItem{
		Kind:       model.LineKind(form.Get("kind")),
		ProductID:  form.Get("productId"),
		Title:      form.Get("title"),
		OrderNotes: form.Get("orderNotes"),
		Size:       form.Get("size"),
		ColorsName: form.Get("colorsName"),
		ColorsCode: form.Get("colorsCode"),
	}
	if it.ColorsCode == "" {
		it.ColorsCode = form.Get("color")
	}

	if raw := form.Get("sizes"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &it.SizeAndQuantity); err != nil {
			return it, fmt.Errorf("sizes: %w", err)
		}
	}
	if raw := form.Get("options"); raw != "" {
		opts, err := parseOptions(raw)
		if err != nil {
			return it, fmt.Errorf("options: %w", err)
		}
		it.Options = opts
	}
	it.ImprintLocations = nonEmpty(form["imprintLocations"])
	it.StickerNames = nonEmpty(form["stickerNames"])

	if n := model.SumSizes(it.SizeAndQuantity); n > 0 {
		it.Quantity = n
	} else if q := form.Get("quantity"); q != "" {
		n, err := strconv.Atoi(strings.TrimSpace(q))
		if err != nil {
			return it, fmt.Errorf("quantity: %w", err)
		}
		it.Quantity = n
	}

	var err error
	if it.ProductTotal, err = parseAmount(form.Get("productTotal")); err != nil {
		return it, fmt.Errorf("productTotal: %w", err)
	}
	if it.ImprintTotal, err = parseAmount(form.Get("imprintTotal")); err != nil {
		return it, fmt.Errorf("imprintTotal: %w", err)
	}
	if it.OptionsTotal, err = parseAmount(form.Get("optionsTotal")); err != nil {
		return it, fmt.Errorf("optionsTotal: %w", err)
	}

	switch {
	case form.Get("grandTotal") != "":
		it.Total, err = parseAmount(form.Get("grandTotal"))
	case form.Get("total") != "":
		it.Total, err = parseAmount(form.Get("total"))
	default:
		it.Total = model.Money(it.ProductTotal + it.ImprintTotal + it.OptionsTotal)
	}
	if err != nil {
		return it, fmt.Errorf("total: %w", err)
	}
	return it, nil
}

// parseOptions accepts a JSON array or a single plain value.
func parseOptions(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "[") {
		return []string{raw}, nil
	}
	var opts []string
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

var errBadAmount = errors.New("must be a finite, non-negative amount")

func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%q %w", s, errBadAmount)
	}
	return v, nil
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
