package binary

import (
	"fmt"
	"io"
	"os"
)

// Source is a random-access byte stream of known length.
// *bytes.Reader and *io.SectionReader satisfy it.
type Source interface {
	io.ReaderAt
	Size() int64
}

// FileSource adapts an open file into a Source sized at the time of the call.
func FileSource(f *os.File) (Source, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", f.Name(), err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: is a directory", f.Name())
	}
	return io.NewSectionReader(f, 0, info.Size()), nil
}
