package freshness

import (
	"fmt"
	"math"
	"time"

	"github.com/dukerupert/larder/internal/model"
)

// Bucket is the freshness classification of an item.
type Bucket string

const (
	BucketExpired      Bucket = "expired"
	BucketExpiringSoon Bucket = "expiring_soon"
	BucketNormal       Bucket = "normal"
)

// Items within this many days of expiry count as expiring soon.
const soonThresholdDays = 3

// Status pairs a bucket with its display text. It is derived from the
// expiry date and the current time on every read and must never be stored
// on the item.
type Status struct {
	Bucket      Bucket `json:"bucket"`
	DisplayText string `json:"display_text"`
}

// Classify maps an expiry date to a freshness status relative to now.
// The expiry's time-of-day is ignored; now is used as-is, so an item
// expiring tomorrow still reads "in 1 day" late tonight.
func Classify(expiry model.Date, now time.Time) Status {
	days := DaysUntil(expiry, now)

	switch {
	case days < 0:
		return Status{
			Bucket:      BucketExpired,
			DisplayText: fmt.Sprintf("Expired %d %s ago", -days, plural(-days)),
		}
	case days == 0:
		return Status{Bucket: BucketExpiringSoon, DisplayText: "Expires today"}
	case days <= soonThresholdDays:
		return Status{
			Bucket:      BucketExpiringSoon,
			DisplayText: fmt.Sprintf("Expires in %d %s", days, plural(days)),
		}
	default:
		return Status{
			Bucket:      BucketNormal,
			DisplayText: "Expires " + expiry.Format("1/2/2006"),
		}
	}
}

// DaysUntil returns ceil((expiry - now) / 24h) with expiry pinned to
// midnight.
func DaysUntil(expiry model.Date, now time.Time) int {
	diff := expiry.Time.Sub(now.In(expiry.Location()))
	return int(math.Ceil(diff.Hours() / 24))
}

func plural(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}
