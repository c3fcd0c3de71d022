// Package capture resolves the authoritative timestamp of a photo from its
// embedded EXIF metadata. Resolution is best-effort: any failure (no EXIF
// block, missing tag, malformed value) means "no capture time" and the
// caller falls back to the filesystem modification time.
package capture

import (
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// exifDateTimeLayout is the format mandated by the EXIF standard for the
// DateTime tag.
const exifDateTimeLayout = "2006:01:02 15:04:05"

// Resolve reads the EXIF DateTime tag of the image at path. It never
// returns an error: ok is false when the timestamp is absent or unusable.
func Resolve(path string) (time.Time, bool) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, false
	}

	tag, err := x.Get(exif.DateTime)
	if err != nil {
		return time.Time{}, false
	}

	value, err := tag.StringVal()
	if err != nil {
		return time.Time{}, false
	}

	return ParseDateTime(value)
}

// ParseDateTime parses an EXIF DateTime value ("YYYY:MM:DD HH:MM:SS") in
// local time. ok is false for any other shape.
func ParseDateTime(value string) (time.Time, bool) {
	ts, err := time.ParseInLocation(exifDateTimeLayout, value, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
