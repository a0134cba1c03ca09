package dto

import (
	"encoding/json"
	"fmt"
	"net/url"

	"print-order-service/internal/model"
)

// ParseProductForm reads a multipart product form. The structured fields
// arrive JSON encoded.
func ParseProductForm(form url.Values) (model.ApparelProduct, error) {
	p := model.ApparelProduct{
		Title:        form.Get("title"),
		Description:  form.Get("description"),
		ProductImage: form.Get("productImage"),
	}
	fields := []struct {
		key string
		dst any
	}{
		{"details", &p.Details},
		{"finishingMeasurementTable", &p.MeasurementTable},
		{"colorSwatches", &p.ColorSwatches},
		{"prices", &p.Prices},
	}
	for _, f := range fields {
		raw := form.Get(f.key)
		if raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(raw), f.dst); err != nil {
			return p, fmt.Errorf("%s: %w", f.key, err)
		}
	}
	return p, nil
}
