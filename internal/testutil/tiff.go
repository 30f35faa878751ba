// Package testutil builds fixtures shared by tests across packages.
package testutil

import (
	"bytes"
	"encoding/binary"
	"math"
)

// TIFF tag data types.
const (
	typeByte     uint16 = 1
	typeASCII    uint16 = 2
	typeLong     uint16 = 4
	typeRational uint16 = 5
)

// Photo describes the EXIF content of a generated fixture. Zero values are
// left out of the file.
type Photo struct {
	Model            string
	DateTimeOriginal string // "2006:01:02 15:04:05"

	HasGPS    bool
	Latitude  float64 // signed decimal degrees
	Longitude float64

	HasAltitude bool
	Altitude    float64 // negative is below sea level

	HasSpeed bool
	Speed    float64
	SpeedRef string // "K", "M" or "N"
}

type entry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

// TIFF encodes p as a little-endian TIFF stream with IFD0, an EXIF sub-IFD
// and a GPS sub-IFD, which is enough for EXIF decoders to read it like a
// camera file.
func TIFF(p Photo) []byte {
	var exifIFD, gpsIFD []entry

	if p.DateTimeOriginal != "" {
		exifIFD = append(exifIFD, ascii(0x9003, p.DateTimeOriginal))
	}

	if p.HasGPS {
		gpsIFD = append(gpsIFD,
			ascii(0x0001, hemisphere(p.Latitude, "N", "S")),
			degrees(0x0002, p.Latitude),
			ascii(0x0003, hemisphere(p.Longitude, "E", "W")),
			degrees(0x0004, p.Longitude),
		)
	}
	if p.HasAltitude {
		ref := byte(0)
		if p.Altitude < 0 {
			ref = 1
		}
		gpsIFD = append(gpsIFD,
			entry{tag: 0x0005, typ: typeByte, count: 1, data: []byte{ref}},
			rational(0x0006, math.Abs(p.Altitude)),
		)
	}
	if p.HasSpeed {
		gpsIFD = append(gpsIFD,
			ascii(0x000C, p.SpeedRef),
			rational(0x000D, p.Speed),
		)
	}

	var ifd0 []entry
	if p.Model != "" {
		ifd0 = append(ifd0, ascii(0x0110, p.Model))
	}
	if len(exifIFD) > 0 {
		ifd0 = append(ifd0, long(0x8769, 0))
	}
	if len(gpsIFD) > 0 {
		ifd0 = append(ifd0, long(0x8825, 0))
	}

	const headerSize = 8
	ifd0Start := uint32(headerSize)
	exifStart := ifd0Start + size(ifd0)
	gpsStart := exifStart + size(exifIFD)

	for i := range ifd0 {
		switch ifd0[i].tag {
		case 0x8769:
			ifd0[i] = long(0x8769, exifStart)
		case 0x8825:
			ifd0[i] = long(0x8825, gpsStart)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("II")
	_ = binary.Write(&buf, binary.LittleEndian, uint16(42))
	_ = binary.Write(&buf, binary.LittleEndian, ifd0Start)
	buf.Write(encode(ifd0, ifd0Start))
	if len(exifIFD) > 0 {
		buf.Write(encode(exifIFD, exifStart))
	}
	if len(gpsIFD) > 0 {
		buf.Write(encode(gpsIFD, gpsStart))
	}
	return buf.Bytes()
}

func size(entries []entry) uint32 {
	if len(entries) == 0 {
		return 0
	}
	n := uint32(2 + 12*len(entries) + 4)
	for _, e := range entries {
		if len(e.data) > 4 {
			n += uint32(len(e.data))
		}
	}
	return n
}

func encode(entries []entry, start uint32) []byte {
	le := binary.LittleEndian
	var buf bytes.Buffer
	var tail []byte

	extra := start + uint32(2+12*len(entries)+4)
	_ = binary.Write(&buf, le, uint16(len(entries)))
	for _, e := range entries {
		_ = binary.Write(&buf, le, e.tag)
		_ = binary.Write(&buf, le, e.typ)
		_ = binary.Write(&buf, le, e.count)
		if len(e.data) <= 4 {
			v := make([]byte, 4)
			copy(v, e.data)
			buf.Write(v)
			continue
		}
		_ = binary.Write(&buf, le, extra+uint32(len(tail)))
		tail = append(tail, e.data...)
	}
	_ = binary.Write(&buf, le, uint32(0))
	buf.Write(tail)
	return buf.Bytes()
}

func ascii(tag uint16, s string) entry {
	data := append([]byte(s), 0)
	count := uint32(len(data))
	if len(data)%2 == 1 {
		data = append(data, 0)
	}
	return entry{tag: tag, typ: typeASCII, count: count, data: data}
}

func long(tag uint16, v uint32) entry {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, v)
	return entry{tag: tag, typ: typeLong, count: 1, data: data}
}

func rational(tag uint16, v float64) entry {
	return entry{tag: tag, typ: typeRational, count: 1, data: rat(v)}
}

// degrees encodes |v| as degrees, minutes and seconds rationals.
func degrees(tag uint16, v float64) entry {
	v = math.Abs(v)
	d := math.Floor(v)
	m := math.Floor((v - d) * 60)
	s := ((v-d)*60 - m) * 60

	var data []byte
	data = append(data, rat(d)...)
	data = append(data, rat(m)...)
	data = append(data, rat(s)...)
	return entry{tag: tag, typ: typeRational, count: 3, data: data}
}

func rat(v float64) []byte {
	const den = 10000
	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data[0:4], uint32(math.Round(v*den)))
	binary.LittleEndian.PutUint32(data[4:8], den)
	return data
}

func hemisphere(v float64, pos, neg string) string {
	if v < 0 {
		return neg
	}
	return pos
}
