package tool

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
)

type etaBucket struct {
	prefixes []string
	region   string
	min, max int
}

// Checked in order; the first matching prefix wins.
var etaBuckets = []etaBucket{
	{prefixes: []string{"560", "600", "400"}, region: "metro", min: 2, max: 3},
	{prefixes: []string{"1", "2", "3"}, region: "east", min: 2, max: 4},
	{prefixes: []string{"9", "8"}, region: "west", min: 3, max: 5},
}

var defaultETABucket = etaBucket{region: "standard", min: 3, max: 5}

// ETA always returns a range. Unknown or malformed codes get the standard one.
func ETA(zipCode string) contractx.ShippingEstimate {
	zip := strings.TrimSpace(zipCode)

	bucket := defaultETABucket
	if isDigits(zip) {
	lookup:
		for _, b := range etaBuckets {
			for _, prefix := range b.prefixes {
				if strings.HasPrefix(zip, prefix) {
					bucket = b
					break lookup
				}
			}
		}
	}

	return contractx.ShippingEstimate{
		Zip:          zip,
		Region:       bucket.region,
		MinDays:      bucket.min,
		MaxDays:      bucket.max,
		ShippingNote: fmt.Sprintf("Standard shipping to %s: %d-%d business days", zip, bucket.min, bucket.max),
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
