package fraud

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

const (
	missingMetadataScore = 15
	dateMismatchScore    = 10
	editedImageScore     = 5

	// captureToleranceDays is how far the photo may be taken from the
	// claimed incident before it counts as a mismatch
	captureToleranceDays = 7

	exifDateLayout = "2006:01:02 15:04:05"
)

// knownEditors are matched case-insensitively as substrings of the EXIF
// Software tag
var knownEditors = []string{"photoshop", "gimp", "affinity", "lightroom"}

// PhotoMetadata is the capture information embedded in a claim photo
type PhotoMetadata struct {
	HasMetadata bool
	CapturedAt  time.Time
	CameraMake  string
	CameraModel string
	HasGPS      bool
	Software    string
}

// MetadataAnalyzer scores photo metadata fraud signals
type MetadataAnalyzer struct{}

// NewMetadataAnalyzer creates a metadata analyzer
func NewMetadataAnalyzer() *MetadataAnalyzer {
	return &MetadataAnalyzer{}
}

// Analyze extracts EXIF from image and scores it against the claimed
// incident time. It never fails; unreadable metadata counts as missing
func (a *MetadataAnalyzer) Analyze(image []byte, claimedIncident time.Time) SignalResult {
	return a.Evaluate(ExtractMetadata(image), claimedIncident)
}

// Evaluate scores already extracted metadata
func (a *MetadataAnalyzer) Evaluate(meta PhotoMetadata, claimedIncident time.Time) SignalResult {
	flags := []string{}
	score := 0

	if !meta.HasMetadata {
		flags = append(flags, "Metadata stripped or missing")
		score += missingMetadataScore
	}

	if !meta.CapturedAt.IsZero() && !claimedIncident.IsZero() {
		diff := wholeDaysBetween(claimedIncident, meta.CapturedAt)
		if diff < 0 {
			diff = -diff
		}
		if diff > captureToleranceDays {
			flags = append(flags, fmt.Sprintf("Photo taken %d days from claim date", diff))
			score += dateMismatchScore
		}
	}

	if meta.Software != "" && isKnownEditor(meta.Software) {
		flags = append(flags, "Image edited with photo software")
		score += editedImageScore
	}

	return SignalResult{
		IsSuspicious: score > 10,
		Flags:        flags,
		Score:        min(score, MetadataScoreCap),
	}
}

// ExtractMetadata reads the EXIF block of image. Any decoding problem yields
// a PhotoMetadata with HasMetadata false
func ExtractMetadata(image []byte) (meta PhotoMetadata) {
	defer func() {
		if r := recover(); r != nil {
			meta = PhotoMetadata{}
		}
	}()

	if len(image) == 0 {
		return PhotoMetadata{}
	}

	x, err := exif.Decode(bytes.NewReader(image))
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		return PhotoMetadata{}
	}

	counter := &tagCounter{}
	_ = x.Walk(counter)
	if counter.count == 0 {
		return PhotoMetadata{}
	}

	meta.HasMetadata = true
	meta.CameraMake = stringTag(x, exif.Make)
	meta.CameraModel = stringTag(x, exif.Model)
	meta.Software = stringTag(x, exif.Software)

	if raw := stringTag(x, exif.DateTimeOriginal); raw != "" {
		if captured, err := time.ParseInLocation(exifDateLayout, raw, time.UTC); err == nil {
			meta.CapturedAt = captured
		}
	}

	if _, err := x.Get(exif.GPSInfoIFDPointer); err == nil {
		meta.HasGPS = true
	}

	return meta
}

func isKnownEditor(software string) bool {
	software = strings.ToLower(software)
	for _, editor := range knownEditors {
		if strings.Contains(software, editor) {
			return true
		}
	}
	return false
}

func stringTag(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	value, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.Trim(value, "\x00"))
}

type tagCounter struct {
	count int
}

func (c *tagCounter) Walk(_ exif.FieldName, _ *tiff.Tag) error {
	c.count++
	return nil
}
