package model

import "go.mongodb.org/mongo-driver/bson/primitive"

type ColorSwatch struct {
	Name  string `bson:"name" json:"name"`
	Hex   string `bson:"hex" json:"hex"`
	Image string `bson:"image" json:"image"`
}

type SizePrice struct {
	Size  string  `bson:"size" json:"size"`
	Price float64 `bson:"price" json:"price"`
}

// ApparelProduct is a catalog garment.
type ApparelProduct struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title            string             `bson:"title" json:"title"`
	ProductImage     string             `bson:"product_image" json:"productImage"`
	Description      string             `bson:"description" json:"description"`
	Details          []string           `bson:"details" json:"details"`
	MeasurementTable [][]string         `bson:"measurement_table" json:"finishingMeasurementTable"`
	ColorSwatches    []ColorSwatch      `bson:"color_swatches" json:"colorSwatches"`
	Prices           []SizePrice        `bson:"prices" json:"prices"`
}
