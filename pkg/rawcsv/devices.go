package rawcsv

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/quidome/photomap-go/pkg/photo"
)

// DeviceCount is a distinct device model and how many rows carry it.
type DeviceCount struct {
	Model string `json:"model"`
	Count int    `json:"count"`
}

// Inventory lists the distinct non-empty device models in records, in order
// of first appearance.
func Inventory(records []photo.Record) []DeviceCount {
	seen := orderedmap.NewOrderedMap[string, int]()
	for _, r := range records {
		if r.DeviceModel == "" {
			continue
		}
		n, _ := seen.Get(r.DeviceModel)
		seen.Set(r.DeviceModel, n+1)
	}

	devices := make([]DeviceCount, 0, seen.Len())
	for el := seen.Front(); el != nil; el = el.Next() {
		devices = append(devices, DeviceCount{Model: el.Key, Count: el.Value})
	}
	return devices
}
