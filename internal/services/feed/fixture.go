package feed

import (
	"fmt"
	"os"
	"time"

	"github.com/tidwall/gjson"

	"VolumeScope/internal/domain/models"
)

// LoadFixture reads demo candles from a JSON file. Two layouts are
// accepted: the kline-array form [[ts,o,h,l,c,v],...] and an object form
// [{"t":...,"o":...,...},...]. Timestamps may be unix seconds or millis.
func LoadFixture(path string) ([]models.Candle, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	root := gjson.ParseBytes(b)
	if !root.IsArray() {
		return nil, fmt.Errorf("fixture %s: top-level array expected", path)
	}

	var out []models.Candle
	for i, row := range root.Array() {
		var c models.Candle
		if row.IsArray() {
			cols := row.Array()
			if len(cols) < 6 {
				return nil, fmt.Errorf("fixture %s row %d: want 6 columns, got %d", path, i, len(cols))
			}
			c = models.Candle{
				Timestamp: parseUnix(cols[0].Int()),
				Open:      cols[1].Float(),
				High:      cols[2].Float(),
				Low:       cols[3].Float(),
				Close:     cols[4].Float(),
				Volume:    cols[5].Float(),
			}
		} else {
			c = models.Candle{
				Timestamp: parseUnix(row.Get("t").Int()),
				Open:      row.Get("o").Float(),
				High:      row.Get("h").Float(),
				Low:       row.Get("l").Float(),
				Close:     row.Get("c").Float(),
				Volume:    row.Get("v").Float(),
			}
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("fixture %s row %d: %w", path, i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func parseUnix(ts int64) time.Time {
	if ts > 1e11 { // millis
		return time.UnixMilli(ts).UTC()
	}
	return time.Unix(ts, 0).UTC()
}
