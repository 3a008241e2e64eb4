package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/simonhull/mediasniff/internal/types"
)

// Entry is one cataloged file.
type Entry struct {
	Path      string        `json:"path"`
	Size      int64         `json:"size"`
	ModTime   time.Time     `json:"mod_time"`
	RunID     string        `json:"run_id"`
	ScannedAt time.Time     `json:"scanned_at"`
	Result    *types.Result `json:"result,omitempty"`
}

// Recognized reports whether a decoder matched the file.
func (e Entry) Recognized() bool {
	return e.Result != nil
}

// Record stores one file under the run, replacing any earlier row for the
// same path. A nil result records an unrecognized file.
func (r *Run) Record(ctx context.Context, path string, size int64, modTime time.Time, result *types.Result) error {
	var (
		nature, format, intrinsics sql.NullString
		duration                   sql.NullFloat64
		res                        types.Result
	)
	if result != nil {
		res = *result
		nature = sql.NullString{String: string(res.Nature), Valid: true}
		format = sql.NullString{String: string(res.Format), Valid: true}
		if res.MediaDurationSeconds != nil {
			duration = sql.NullFloat64{Float64: *res.MediaDurationSeconds, Valid: true}
		}
		if len(res.Intrinsics) > 0 {
			data, err := json.Marshal(res.Intrinsics)
			if err != nil {
				return fmt.Errorf("encode intrinsics for %s: %w", path, err)
			}
			intrinsics = sql.NullString{String: string(data), Valid: true}
		}
	}

	err := r.store.exec(ctx,
		`INSERT INTO files (path, run_id, size, mod_time, scanned_at, nature, format,
			width_px, height_px, has_transparency, audio_channels, sample_rate_hz,
			bits_per_sample, duration_seconds, intrinsics)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
			run_id = excluded.run_id, size = excluded.size, mod_time = excluded.mod_time,
			scanned_at = excluded.scanned_at, nature = excluded.nature, format = excluded.format,
			width_px = excluded.width_px, height_px = excluded.height_px,
			has_transparency = excluded.has_transparency, audio_channels = excluded.audio_channels,
			sample_rate_hz = excluded.sample_rate_hz, bits_per_sample = excluded.bits_per_sample,
			duration_seconds = excluded.duration_seconds, intrinsics = excluded.intrinsics`,
		path, r.id, size, formatTime(modTime), formatTime(time.Now()), nature, format,
		res.WidthPx, res.HeightPx, res.HasTransparency, res.NumAudioChannels,
		res.AudioSampleRateHz, res.BitsPerSample, duration, intrinsics,
	)
	if err != nil {
		return fmt.Errorf("record %s: %w", path, err)
	}

	r.mu.Lock()
	r.files++
	if result != nil {
		r.recognized++
	}
	r.mu.Unlock()
	return nil
}

// RecordFailure counts a file the scan could not open.
func (r *Run) RecordFailure() {
	r.mu.Lock()
	r.failed++
	r.mu.Unlock()
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	Nature       types.Nature
	Format       types.Format
	RunID        string
	Unrecognized bool
	Limit        int
}

// List returns cataloged files ordered by path.
func (s *Store) List(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if f.Nature != "" {
		where = append(where, "nature = ?")
		args = append(args, string(f.Nature))
	}
	if f.Format != "" {
		where = append(where, "format = ?")
		args = append(args, string(f.Format))
	}
	if f.RunID != "" {
		where = append(where, "run_id = ?")
		args = append(args, f.RunID)
	}
	if f.Unrecognized {
		where = append(where, "format IS NULL")
	}

	query := `SELECT path, run_id, size, mod_time, scanned_at, nature, format,
		width_px, height_px, has_transparency, audio_channels, sample_rate_hz,
		bits_per_sample, duration_seconds, intrinsics FROM files`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY path"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// CountByFormat returns how many files of each format a run recorded.
// Unrecognized files count under the empty format.
func (s *Store) CountByFormat(ctx context.Context, runID string) (map[types.Format]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT COALESCE(format, ''), COUNT(1) FROM files WHERE run_id = ? GROUP BY format", runID)
	if err != nil {
		return nil, fmt.Errorf("count files: %w", err)
	}
	defer rows.Close()

	counts := make(map[types.Format]int)
	for rows.Next() {
		var (
			format string
			n      int
		)
		if err := rows.Scan(&format, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[types.Format(format)] = n
	}
	return counts, rows.Err()
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		entry              Entry
		modTime, scannedAt string
		nature, format     sql.NullString
		intrinsics         sql.NullString
		duration           sql.NullFloat64
		res                types.Result
	)
	err := rows.Scan(&entry.Path, &entry.RunID, &entry.Size, &modTime, &scannedAt,
		&nature, &format, &res.WidthPx, &res.HeightPx, &res.HasTransparency,
		&res.NumAudioChannels, &res.AudioSampleRateHz, &res.BitsPerSample,
		&duration, &intrinsics)
	if err != nil {
		return Entry{}, fmt.Errorf("scan file: %w", err)
	}
	entry.ModTime = parseTime(modTime)
	entry.ScannedAt = parseTime(scannedAt)

	if !format.Valid {
		return entry, nil
	}
	res.Nature = types.Nature(nature.String)
	res.Format = types.Format(format.String)
	if duration.Valid {
		res.SetDuration(duration.Float64)
	}
	if intrinsics.Valid {
		if err := json.Unmarshal([]byte(intrinsics.String), &res.Intrinsics); err != nil {
			return Entry{}, fmt.Errorf("decode intrinsics for %s: %w", entry.Path, err)
		}
		restoreIntegers(res.Intrinsics)
	}
	entry.Result = &res
	return entry, nil
}

// restoreIntegers turns whole JSON numbers back into int64 so Intrinsics.Int
// answers the same before and after storage.
func restoreIntegers(in types.Intrinsics) {
	for k, v := range in {
		if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			in[k] = int64(f)
		}
	}
}
