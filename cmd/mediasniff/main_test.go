package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/simonhull/mediasniff/internal/binary"
	"github.com/simonhull/mediasniff/internal/binary/binarytest"
)

type cliEnv struct {
	dir        string
	configPath string
}

func setupCLITestEnv(t *testing.T) cliEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	content := "[catalog]\npath = " + `"` + filepath.ToSlash(filepath.Join(dir, "catalog.db")) + `"` + "\n\n[logging]\nlevel = \"warn\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return cliEnv{dir: dir, configPath: configPath}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q in output:\n%s", needle, haystack)
	}
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func flacFixture() []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("fLaC")
	buf.Write([]byte{0x80, 0x00, 0x00, 0x22})
	buf.Write(binary.NewBitWriter(binary.MSBFirst).
		WriteBits(4096, 16).
		WriteBits(4096, 16).
		WriteBits(0, 24).
		WriteBits(0, 24).
		WriteBits(48000, 20).
		WriteBits(0, 3).
		WriteBits(23, 5).
		WriteBits(96000, 36).
		Bytes())
	buf.Write(make([]byte, 16))
	return buf.Bytes()
}

func riffChunk(id string, body []byte) []byte {
	buf := &bytes.Buffer{}
	sw := binarytest.NewWriter(buf)
	sw.String(id)
	binarytest.Put[uint32](sw, binary.LittleEndian, uint32(len(body)))
	sw.Bytes(body)
	if len(body)%2 == 1 {
		sw.Bytes([]byte{0})
	}
	return buf.Bytes()
}

func webpFixture() []byte {
	body := []byte{0x2f}
	body = append(body, binary.NewBitWriter(binary.LSBFirst).
		WriteBits(639, 14).
		WriteBits(479, 14).
		WriteBits(0, 4).
		Bytes()...)
	body = append(body, make([]byte, 7)...)

	chunks := append(riffChunk("VP8L", body), riffChunk("EXIF", []byte("Exif\x00"))...)
	buf := &bytes.Buffer{}
	sw := binarytest.NewWriter(buf)
	sw.String("RIFF")
	binarytest.Put[uint32](sw, binary.LittleEndian, uint32(4+len(chunks)))
	sw.String("WEBP")
	sw.Bytes(chunks)
	return buf.Bytes()
}

func atom(typ string, children ...[]byte) []byte {
	body := bytes.Join(children, nil)
	buf := &bytes.Buffer{}
	sw := binarytest.NewWriter(buf)
	binarytest.Put[uint32](sw, binary.BigEndian, uint32(8+len(body)))
	sw.String(typ)
	sw.Bytes(body)
	return buf.Bytes()
}

func m4aFixture() []byte {
	ftyp := atom("ftyp", []byte("M4A \x00\x00\x00\x00M4A isom"))
	return append(ftyp, atom("moov", atom("udta"))...)
}

func TestParseCommand_JSON(t *testing.T) {
	env := setupCLITestEnv(t)
	flac := writeFile(t, env.dir, "a.flac", flacFixture())
	junk := writeFile(t, env.dir, "b.bin", make([]byte, 100))

	out, _, err := runCLI(t, []string{"parse", "--json", "--explain", flac, junk}, env.configPath)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var got []parseOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results", len(got))
	}
	if got[0].Result == nil || got[0].Result.Format != "flac" || got[0].Result.AudioSampleRateHz != 48000 {
		t.Errorf("unexpected flac result: %+v", got[0].Result)
	}
	if got[1].Result != nil {
		t.Errorf("expected unrecognized junk, got %+v", got[1].Result)
	}
	if len(got[1].Attempts) != 11 {
		t.Errorf("expected every decoder tried for junk, got %d attempts", len(got[1].Attempts))
	}
}

func TestParseCommand_JSONImageFields(t *testing.T) {
	env := setupCLITestEnv(t)
	webp := writeFile(t, env.dir, "pic.webp", webpFixture())

	out, _, err := runCLI(t, []string{"parse", "--json", webp}, env.configPath)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	requireContains(t, out, `"width_px": 640`)
	requireContains(t, out, `"height_px": 480`)
	requireContains(t, out, `"has_transparency": `)
}

func TestParseCommand_Table(t *testing.T) {
	env := setupCLITestEnv(t)
	webp := writeFile(t, env.dir, "pic.webp", webpFixture())

	out, _, err := runCLI(t, []string{"parse", webp}, env.configPath)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	requireContains(t, out, "WEBP")
	requireContains(t, out, "Image")
	requireContains(t, out, "640x480")
}

func TestParseCommand_Formats(t *testing.T) {
	env := setupCLITestEnv(t)
	flac := writeFile(t, env.dir, "a.flac", flacFixture())

	out, _, err := runCLI(t, []string{"parse", "--json", "--formats", "webp,mp3", flac}, env.configPath)
	if err != nil {
		t.Fatal(err)
	}
	var got []parseOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if got[0].Result != nil {
		t.Errorf("expected flac to be skipped, got %+v", got[0].Result)
	}

	if _, _, err := runCLI(t, []string{"parse", "--formats", "gif", flac}, env.configPath); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestParseCommand_MissingFile(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"parse", filepath.Join(env.dir, "absent.flac")}, env.configPath); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFormatsCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"formats", "--json"}, env.configPath)
	if err != nil {
		t.Fatal(err)
	}
	var got []formatOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	want := []string{"flac", "webp", "wav", "aiff", "ogg", "opus", "m4a", "m4b", "mp4", "mov", "mp3"}
	if len(got) != len(want) {
		t.Fatalf("got %d formats", len(got))
	}
	for i, f := range got {
		if string(f.Format) != want[i] || f.Order != i+1 {
			t.Errorf("formats[%d] = %+v, want %s", i, f, want[i])
		}
	}
}

func TestScanAndCatalogCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	media := filepath.Join(env.dir, "media")
	writeFile(t, media, "a.flac", flacFixture())
	writeFile(t, media, "pics/b.webp", webpFixture())
	writeFile(t, media, "c.m4a", m4aFixture())
	writeFile(t, media, "notes.txt", []byte("hello"))

	out, _, err := runCLI(t, []string{"scan", "--json", media}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	var summary scanSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if summary.Files != 4 || summary.Recognized != 3 || summary.RunID == "" {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.ByFormat["flac"] != 1 || summary.ByFormat["webp"] != 1 || summary.ByFormat["m4a"] != 1 {
		t.Errorf("by format = %v", summary.ByFormat)
	}

	out, _, err = runCLI(t, []string{"catalog", "list", "--format", "webp"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog list: %v", err)
	}
	requireContains(t, out, "b.webp")
	if strings.Contains(out, "a.flac") {
		t.Errorf("format filter leaked other files:\n%s", out)
	}

	out, _, err = runCLI(t, []string{"catalog", "list", "--unrecognized", "--json"}, env.configPath)
	if err != nil {
		t.Fatal(err)
	}
	requireContains(t, out, "notes.txt")

	out, _, err = runCLI(t, []string{"catalog", "runs"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog runs: %v", err)
	}
	requireContains(t, out, summary.RunID)

	if _, _, err := runCLI(t, []string{"catalog", "list", "--nature", "smell"}, env.configPath); err == nil {
		t.Error("expected error for unknown nature")
	}
}

func TestScanCommand_NoCatalog(t *testing.T) {
	env := setupCLITestEnv(t)
	media := filepath.Join(env.dir, "media")
	writeFile(t, media, "a.flac", flacFixture())

	out, _, err := runCLI(t, []string{"scan", "--no-catalog", media}, env.configPath)
	if err != nil {
		t.Fatal(err)
	}
	requireContains(t, out, "Scanned 1 files")
	if _, err := os.Stat(filepath.Join(env.dir, "catalog.db")); !os.IsNotExist(err) {
		t.Errorf("expected no catalog database, stat err = %v", err)
	}
}

func TestChunksCommand(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name  string
		data  []byte
		wants []string
	}{
		{"riff", webpFixture(), []string{"RIFF WEBP container", "VP8L (size: 12, offset: 12)", "EXIF"}},
		{"isobmff", m4aFixture(), []string{"ISO-BMFF container", "ftyp", "moov", "  udta"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.name, tt.data)
			out, _, err := runCLI(t, []string{"chunks", path}, "")
			if err != nil {
				t.Fatalf("chunks: %v", err)
			}
			for _, want := range tt.wants {
				requireContains(t, out, want)
			}
		})
	}

	path := writeFile(t, dir, "zeros", []byte{0, 0, 0, 0, 0, 0, 0, 0})
	if _, _, err := runCLI(t, []string{"chunks", path}, ""); err == nil {
		t.Error("expected error for unsupported container")
	}
}

func TestConfigCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	target := filepath.Join(env.dir, "new", "config.toml")
	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Error("expected error when config exists")
	}

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[catalog]")
	requireContains(t, out, "catalog.db")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"version"}, "")
	if err != nil {
		t.Fatal(err)
	}
	requireContains(t, out, "mediasniff ")
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, []string{"formats"}, path); err == nil {
		t.Error("expected config validation error")
	}
}
