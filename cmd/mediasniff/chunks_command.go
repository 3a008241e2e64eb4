package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-audio/riff"
	"github.com/spf13/cobra"

	"github.com/simonhull/mediasniff/internal/binary"
	"github.com/simonhull/mediasniff/internal/mp4"
)

// chunkNode is one entry of a structural dump.
type chunkNode struct {
	Depth  int    `json:"depth"`
	ID     string `json:"id"`
	Offset int64  `json:"offset"`
	Size   int64  `json:"size"`
	// ListType is the form type of a RIFF LIST chunk.
	ListType string `json:"list_type,omitempty"`
}

func newChunksCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:         "chunks FILE",
		Short:       "Dump the RIFF chunk list or MP4 atom tree of a file",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}
			defer f.Close()

			container, nodes, err := dumpStructure(f)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, map[string]any{"container": container, "chunks": nodes})
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s container\n", container)
			for _, n := range nodes {
				line := fmt.Sprintf("%s%s (size: %d, offset: %d)", strings.Repeat("  ", n.Depth), n.ID, n.Size, n.Offset)
				if n.ListType != "" {
					line += " " + n.ListType
				}
				fmt.Fprintln(w, line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of an indented tree")
	return cmd
}

// dumpStructure sniffs the container family from the first bytes and walks it.
func dumpStructure(f *os.File) (string, []chunkNode, error) {
	src, err := binary.FileSource(f)
	if err != nil {
		return "", nil, err
	}

	head := make([]byte, 12)
	n, err := src.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", nil, fmt.Errorf("read header: %w", err)
	}
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, []byte("RIFF")) && len(head) == 12:
		nodes, err := dumpRIFF(io.NewSectionReader(src, 0, src.Size()))
		return "RIFF " + strings.TrimSpace(string(head[8:12])), nodes, err
	case len(head) >= 8 && isAtomType(head[4:8]):
		nodes, err := dumpAtoms(binary.NewSafeReader(src, src.Size(), f.Name()))
		return "ISO-BMFF", nodes, err
	default:
		return "", nil, errors.New("unsupported container: expected RIFF or ISO-BMFF")
	}
}

func isAtomType(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}

func dumpAtoms(sr *binary.SafeReader) ([]chunkNode, error) {
	var nodes []chunkNode
	err := mp4.Walk(sr, func(a *mp4.Atom, depth int) error {
		nodes = append(nodes, chunkNode{Depth: depth, ID: a.Type, Offset: a.Offset, Size: int64(a.Size)})
		return nil
	})
	return nodes, err
}

func dumpRIFF(section *io.SectionReader) ([]chunkNode, error) {
	p := riff.New(section)
	if err := p.ParseHeaders(); err != nil {
		return nil, fmt.Errorf("parse RIFF headers: %w", err)
	}

	var nodes []chunkNode
	for {
		offset, _ := section.Seek(0, io.SeekCurrent)
		ch, err := p.NextChunk()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nodes, nil
			}
			return nodes, err
		}

		node := chunkNode{ID: string(ch.ID[:]), Offset: offset, Size: int64(ch.Size)}
		consumed := int64(0)
		if node.ID == "LIST" && ch.Size >= 4 {
			listType := make([]byte, 4)
			if _, err := io.ReadFull(ch, listType); err != nil {
				return nodes, fmt.Errorf("read LIST type: %w", err)
			}
			node.ListType = string(listType)
			consumed = 4
		}
		nodes = append(nodes, node)

		skip := int64(ch.Size) - consumed
		if ch.Size%2 == 1 {
			skip++
		}
		if _, err := section.Seek(skip, io.SeekCurrent); err != nil {
			return nodes, err
		}
	}
}
