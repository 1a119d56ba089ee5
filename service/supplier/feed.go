package supplier

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const (
	// FeedColumns is the positional width of a supplier feed line.
	FeedColumns = 28
	// FeedDelimiter separates feed columns.
	FeedDelimiter = ";"
)

// feedSchema names the consumed feed columns by position. Unnamed positions are ignored.
var feedSchema = [FeedColumns]string{
	0:  "article_number",
	1:  "ean",
	2:  "stock",
	3:  "purchase_price",
	5:  "brand",
	6:  "model",
	8:  "width",
	9:  "height",
	10: "diameter",
	11: "load_index",
	12: "speed_index",
	13: "season",
	14: "vehicle_type",
	16: "label_fuel_efficiency",
	17: "label_wet_grip",
	18: "label_noise",
	19: "label_noise_class",
	24: "item_type",
	25: "item_subtype",
	27: "eprel_url",
}

// feedRow is one feed line decoded by name. Values are trimmed, untyped text.
type feedRow struct {
	ArticleNumber       string `mapstructure:"article_number"`
	EAN                 string `mapstructure:"ean"`
	Stock               string `mapstructure:"stock"`
	PurchasePrice       string `mapstructure:"purchase_price"`
	Brand               string `mapstructure:"brand"`
	Model               string `mapstructure:"model"`
	Width               string `mapstructure:"width"`
	Height              string `mapstructure:"height"`
	Diameter            string `mapstructure:"diameter"`
	LoadIndex           string `mapstructure:"load_index"`
	SpeedIndex          string `mapstructure:"speed_index"`
	Season              string `mapstructure:"season"`
	VehicleType         string `mapstructure:"vehicle_type"`
	LabelFuelEfficiency string `mapstructure:"label_fuel_efficiency"`
	LabelWetGrip        string `mapstructure:"label_wet_grip"`
	LabelNoise          string `mapstructure:"label_noise"`
	LabelNoiseClass     string `mapstructure:"label_noise_class"`
	ItemType            string `mapstructure:"item_type"`
	ItemSubtype         string `mapstructure:"item_subtype"`
	EprelURL            string `mapstructure:"eprel_url"`
}

func init() {
	// every feedRow field must be fed by a schema column and vice versa
	cols := make([]string, FeedColumns)
	for i := range cols {
		cols[i] = "x"
	}
	var md mapstructure.Metadata
	if _, err := decodeFeedRow(cols, &md); err != nil {
		panic("supplier: feed schema: " + err.Error())
	}
	if len(md.Unset) > 0 {
		panic("supplier: feed schema leaves fields unset: " + strings.Join(md.Unset, ", "))
	}
}

// decodeFeedRow maps positional columns onto a feedRow. cols must hold at least FeedColumns values.
func decodeFeedRow(cols []string, md *mapstructure.Metadata) (feedRow, error) {
	var row feedRow
	if len(cols) < FeedColumns {
		return row, fmt.Errorf("expected %d columns, got %d", FeedColumns, len(cols))
	}
	named := make(map[string]interface{}, len(feedSchema))
	for i, name := range feedSchema {
		if name != "" {
			named[name] = strings.TrimSpace(cols[i])
		}
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Metadata:    md,
		Result:      &row,
	})
	if err != nil {
		return row, err
	}
	if err := dec.Decode(named); err != nil {
		return row, err
	}
	return row, nil
}
