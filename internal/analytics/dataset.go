package analytics

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Dataset is chart-ready data: one label per point and one or more series of
// values aligned with the labels. Field names follow the chart library the
// web client renders with.
type Dataset struct {
	Labels []string `json:"labels"`
	Series []Series `json:"datasets"`
}

// Series is one line or bar group of a Dataset. Colors are CSS rgba()
// strings; a single entry applies to every point.
type Series struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BackgroundColor Colors    `json:"backgroundColor,omitempty"`
	BorderColor     Colors    `json:"borderColor,omitempty"`
}

// Colors is a list of CSS colors. It decodes from either a single string or
// an array, the two shapes the chart library accepts, and always encodes as
// an array.
type Colors []string

func (c *Colors) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*c = Colors{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("colors: want a string or an array of strings: %w", err)
	}
	*c = many
	return nil
}

var errNoLabels = errors.New("dataset has no labels")

// Check reports whether d can be charted: at least one label, at least one
// series, and every series has exactly one value per label.
func (d Dataset) Check() error {
	if len(d.Labels) == 0 {
		return errNoLabels
	}
	if len(d.Series) == 0 {
		return errors.New("dataset has no series")
	}
	for i, s := range d.Series {
		if len(s.Data) != len(d.Labels) {
			return fmt.Errorf("series %d has %d values for %d labels", i, len(s.Data), len(d.Labels))
		}
	}
	return nil
}

type color struct{ r, g, b int }

func (c color) alpha(a float64) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", c.r, c.g, c.b, a)
}

func fills(cs []color, a float64) Colors {
	out := make(Colors, len(cs))
	for i, c := range cs {
		out[i] = c.alpha(a)
	}
	return out
}

var (
	palette = []color{
		{255, 99, 132}, {54, 162, 235}, {255, 206, 86},
		{75, 192, 192}, {153, 102, 255}, {255, 159, 64},
	}
	affinityPalette = []color{
		{34, 197, 94}, {59, 130, 246}, {245, 158, 11},
		{156, 163, 175}, {239, 68, 68},
	}
	blue   = color{59, 130, 246}
	purple = color{147, 51, 234}
)
