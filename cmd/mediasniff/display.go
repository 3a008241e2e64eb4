package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/simonhull/mediasniff"
)

var titleCaser = cases.Title(language.Und)

func natureLabel(n mediasniff.Nature) string {
	if n == "" {
		return "-"
	}
	return titleCaser.String(string(n))
}

func formatLabel(f mediasniff.Format) string {
	if f == "" {
		return "unrecognized"
	}
	return strings.ToUpper(string(f))
}

func sizeLabel(n int64) string {
	if n < 0 {
		return "-"
	}
	return humanize.IBytes(uint64(n))
}

func durationLabel(r *mediasniff.Result) string {
	if r == nil {
		return "-"
	}
	d, ok := r.Duration()
	if !ok {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}

// detailLabel summarizes the nature-specific fields of r.
func detailLabel(r *mediasniff.Result) string {
	if r == nil {
		return "-"
	}
	var parts []string
	if r.WidthPx > 0 || r.HeightPx > 0 {
		parts = append(parts, fmt.Sprintf("%dx%d", r.WidthPx, r.HeightPx))
	}
	if r.HasTransparency {
		parts = append(parts, "alpha")
	}
	if r.NumAudioChannels > 0 {
		parts = append(parts, fmt.Sprintf("%dch", r.NumAudioChannels))
	}
	if r.AudioSampleRateHz > 0 {
		parts = append(parts, humanize.SIWithDigits(float64(r.AudioSampleRateHz), 1, "Hz"))
	}
	if r.BitsPerSample > 0 {
		parts = append(parts, fmt.Sprintf("%d-bit", r.BitsPerSample))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}
