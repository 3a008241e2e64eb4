// Package mediasniff identifies the format of a byte stream and extracts
// shallow structural metadata without decoding any payload.
//
// # Quick Start
//
// Sniffing a file on disk:
//
//	file, err := mediasniff.ParseFile("clip.webp")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if !file.Recognized() {
//		fmt.Println("unrecognized")
//		return
//	}
//	fmt.Println(file.Result) // "webp image 400x300 alpha"
//
// Any random-access stream works, not only files:
//
//	result, ok := mediasniff.Parse(bytes.NewReader(data))
//
// # Supported Formats
//
//   - Audio: FLAC, WAV, AIFF/AIFF-C, Ogg Vorbis, Ogg Opus, MP3, M4A, M4B
//   - Image: WebP (lossy, lossless and extended)
//   - Video: MP4, QuickTime MOV
//
// # How Dispatch Works
//
// A Registry holds decoders in a fixed order. Parse offers the stream to
// each decoder in turn, every time from offset 0 through a fresh bounded
// reader, and returns the first valid Result. A decoder that does not see
// its signature, finds the stream truncated, or reads an invalid field
// simply declines; none of these are errors. When two decoders would both
// accept a stream, the one registered first wins.
//
// The default order is flac, webp, wav, aiff, ogg, opus, m4a, m4b, mp4,
// mov, mp3. Custom registries are built with NewRegistry or, for custom
// decoders, with the internal registry builder.
//
// # Results
//
// A Result carries the nature (audio, image, video), the format tag and the
// fields that nature requires: pixel dimensions and transparency for images,
// channels, sample rate and duration for audio. Everything format-specific,
// such as FLAC block sizes or the MP4 major brand, lives in Intrinsics.
// MediaDurationSeconds is nil when the duration cannot be determined.
//
// # Batch Parsing
//
//	files, err := mediasniff.ParseMany(ctx, paths,
//	    mediasniff.WithConcurrency(8),
//	    mediasniff.WithMaxBytes(1<<20),
//	)
//
// Use WithExplain to keep the per-decoder attempt trail on each File.
package mediasniff
