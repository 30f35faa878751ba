// Package finalcsv writes the filtered, projected metadata table consumed by
// downstream plotting: a header row "timestamp,latitude,longitude" followed by
// one row per surviving photo, in input order.
package finalcsv
