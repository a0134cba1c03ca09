package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReorderKeepsLineKind(t *testing.T) {
	tests := []struct {
		name string
		line CartLine
	}{
		{
			name: "bulk",
			line: CartLine{
				Kind:     LineBulk,
				Title:    "Blank tees",
				Quantity: 12,
				Total:    96,
				Bulk:     &BulkDetails{SizeAndQuantity: map[string]int{"M": 6, "L": 6}, ColorsName: "Black"},
			},
		},
		{
			name: "apparel",
			line: CartLine{
				Kind:     LineApparel,
				Title:    "Tee",
				Quantity: 1,
				Total:    20,
				Apparel:  &ApparelDetails{Size: "M", ImprintFiles: []string{"/uploads/front.png"}},
			},
		},
		{
			name: "custom design",
			line: CartLine{
				Kind:     LineCustomDesign,
				Title:    "Stickers",
				Quantity: 50,
				Total:    40,
				Design: &DesignDetails{
					StickerImageURLs: []string{"/uploads/logo.png"},
					StickerNames:     []string{"logo"},
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := tt.line.Snapshot()
			assert.Equal(t, tt.line.Kind, item.Kind)

			back := LineFromItem("u1", item)
			assert.Equal(t, tt.line.Kind, back.Kind)
			assert.Equal(t, tt.line.Bulk, back.Bulk)
			assert.Equal(t, tt.line.Apparel, back.Apparel)
			assert.Equal(t, tt.line.Design, back.Design)
		})
	}
}

func TestSnapshotKeepsStickerNames(t *testing.T) {
	line := CartLine{
		Kind:  LineCustomDesign,
		Title: "Stickers",
		Design: &DesignDetails{
			StickerImageURLs: []string{"/uploads/a.png", "/uploads/b.png"},
			StickerNames:     []string{"a", "b"},
		},
	}
	item := line.Snapshot()
	require.Equal(t, []string{"a", "b"}, item.StickerNames)

	line.Design.StickerNames[0] = "changed"
	assert.Equal(t, "a", item.StickerNames[0])
}

func TestLineFromItemWithoutKindIsClassifiedByFields(t *testing.T) {
	line := LineFromItem("u1", OrderItem{Title: "Tee", Size: "L", Quantity: 1, TotalPrice: 20})
	assert.Equal(t, LineApparel, line.Kind)
	require.NotNil(t, line.Apparel)
	assert.Equal(t, "L", line.Apparel.Size)
}
