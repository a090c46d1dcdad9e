package booking

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const day = 24 * time.Hour

const dateLayout = "2006-01-02"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals share any instant.
// Back-to-back stays (one ends when the next starts) do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Nights is the stay length in days, rounded up.
func Nights(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	n := int(d / day)
	if d%day != 0 {
		n++
	}
	return n
}

// TotalPrice is nights × pricePerNight, rounded to cents.
func TotalPrice(nights int, pricePerNight float64) float64 {
	return math.Round(float64(nights)*pricePerNight*100) / 100
}

// NewReference builds a human-readable reference: "BK", the creation time in
// unix milliseconds and five uppercase alphanumerics.
func NewReference(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:5]
	return "BK" + strconv.FormatInt(now.UnixMilli(), 10) + suffix
}

// ParseDate accepts a calendar date (midnight UTC) or a full RFC3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t.UTC(), nil
}
