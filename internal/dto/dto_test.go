package dto

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"print-order-service/internal/model"
)

func TestParseCartFormApparel(t *testing.T) {
	form := url.Values{
		"title":            {"Tee"},
		"sizes":            {`{"S":2,"M":3}`},
		"color":            {"#ff0000"},
		"colorsName":       {"Red"},
		"imprintLocations": {"front", " ", "back"},
		"options":          {`["rush"]`},
		"productTotal":     {"20"},
		"imprintTotal":     {"5.5"},
		"quantity":         {"99"},
	}

	it, err := ParseCartForm(form)
	require.NoError(t, err)

	assert.Equal(t, 5, it.Quantity)
	assert.Equal(t, "#ff0000", it.ColorsCode)
	assert.Equal(t, []string{"front", "back"}, it.ImprintLocations)
	assert.Equal(t, []string{"rush"}, it.Options)
	assert.Equal(t, 25.5, it.Total)

	line := it.ToLine()
	assert.Equal(t, model.LineApparel, line.Kind)
	require.NotNil(t, line.Apparel)
	assert.Equal(t, map[string]int{"S": 2, "M": 3}, line.Apparel.SizeAndQuantity)
}

func TestParseCartFormTotals(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		want float64
	}{
		{"grand total wins", url.Values{"grandTotal": {"12"}, "total": {"10"}, "productTotal": {"1"}}, 12},
		{"total next", url.Values{"total": {"10"}, "productTotal": {"1"}}, 10},
		{"component sum", url.Values{"productTotal": {"1.10"}, "imprintTotal": {"2.20"}, "optionsTotal": {"0.30"}}, 3.6},
		{"nothing", url.Values{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, err := ParseCartForm(tt.form)
			require.NoError(t, err)
			assert.Equal(t, tt.want, it.Total)
		})
	}
}

func TestParseCartFormRejectsGarbage(t *testing.T) {
	tests := []struct {
		name  string
		form  url.Values
		field string
	}{
		{name: "sizes not json", form: url.Values{"sizes": {"{not json"}}, field: "sizes"},
		{name: "quantity not a number", form: url.Values{"quantity": {"lots"}}, field: "quantity"},
		{name: "total NaN", form: url.Values{"total": {"NaN"}}, field: "total"},
		{name: "grand total infinite", form: url.Values{"grandTotal": {"+Inf"}}, field: "total"},
		{name: "negative product total", form: url.Values{"productTotal": {"-5"}}, field: "productTotal"},
		{name: "imprint total -Inf", form: url.Values{"imprintTotal": {"-Inf"}}, field: "imprintTotal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCartForm(tt.form)
			assert.ErrorContains(t, err, tt.field)
		})
	}
}

func TestCartItemRoundTripsDesignLine(t *testing.T) {
	line := model.CartLine{
		ID:       primitive.NewObjectID(),
		Kind:     model.LineCustomDesign,
		Title:    "Stickers",
		Quantity: 10,
		Total:    50,
		Design: &model.DesignDetails{
			StickerImageURLs: []string{"/uploads/a.png"},
			StickerNames:     []string{"a"},
			StickerLocations: []string{"left chest"},
		},
	}

	got := FromLine(line).ToLine()
	assert.Equal(t, line.ID, got.ID)
	assert.Equal(t, line.Design, got.Design)
	assert.Nil(t, got.Apparel)
}

func TestCheckoutRequestToService(t *testing.T) {
	req := CheckoutRequest{
		PaymentData:  &PaymentData{CardNumber: "4111111111111111", ExpirationDate: "12/30", CVV: "123"},
		ShippingInfo: &ShippingInfo{Method: "standard"},
		CartItems:    []CartItem{{Title: "Sticker", Quantity: 2, Total: 10, ImprintFiles: []string{"/uploads/x.png"}}},
	}

	out := req.ToService()
	require.NotNil(t, out.Payment)
	assert.Equal(t, "123", out.Payment.CVV)
	assert.Equal(t, "standard", out.Shipping.Method)
	assert.Nil(t, out.Customer)
	assert.Nil(t, out.Pricing)
	require.Len(t, out.CartItems, 1)
	assert.Equal(t, []string{"/uploads/x.png"}, out.CartItems[0].Design.StickerImageURLs)
}

func TestParseProductForm(t *testing.T) {
	p, err := ParseProductForm(url.Values{
		"title":         {"Heavy Tee"},
		"details":       {`["100% cotton"]`},
		"colorSwatches": {`[{"name":"Black","hex":"#000"}]`},
		"prices":        {`[{"size":"M","price":12.5}]`},
	})
	require.NoError(t, err)
	assert.Equal(t, "Heavy Tee", p.Title)
	assert.Equal(t, []string{"100% cotton"}, p.Details)
	assert.Equal(t, "Black", p.ColorSwatches[0].Name)
	assert.Equal(t, 12.5, p.Prices[0].Price)

	_, err = ParseProductForm(url.Values{"prices": {"nope"}})
	assert.ErrorContains(t, err, "prices")
}
