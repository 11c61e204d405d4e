// Package fasta reads and writes FASTA files, transparently handling
// gzip-compressed input such as sequence-repository downloads and
// assembler output.
package fasta

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Record is one FASTA sequence.
type Record struct {
	// ID is the first whitespace-delimited word of the header.
	ID string

	// Desc is the remainder of the header, empty if none.
	Desc string

	Seq string
}

type multiReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiReadCloser) Close() error {
	var err error
	for _, c := range m.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Open opens a sequence file for reading, detecting gzip by magic
// number (1F 8B) or a .gz suffix.
func Open(path string) (io.ReadCloser, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var sig [2]byte
	n, _ := fh.Read(sig[:])
	if _, err := fh.Seek(0, io.SeekStart); err != nil {
		_ = fh.Close()
		return nil, err
	}
	if (n == 2 && sig[0] == 0x1f && sig[1] == 0x8b) || strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			_ = fh.Close()
			return nil, err
		}
		return &multiReadCloser{Reader: gr, closers: []io.Closer{gr, fh}}, nil
	}
	return fh, nil
}

// Read parses every record of a FASTA file.
func Read(path string) ([]Record, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	recs, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// Parse reads FASTA records from a reader. Sequence lines are joined
// with internal whitespace removed; bases are kept as written so
// coordinates stay meaningful.
func Parse(r io.Reader) ([]Record, error) {
	var (
		recs []Record
		cur  *Record
		seq  strings.Builder
	)
	flush := func() {
		if cur != nil {
			cur.Seq = seq.String()
			recs = append(recs, *cur)
			seq.Reset()
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.HasPrefix(line, ">") {
			flush()
			header := strings.TrimSpace(line[1:])
			id, desc := header, ""
			if i := strings.IndexAny(header, " \t"); i >= 0 {
				id, desc = header[:i], strings.TrimSpace(header[i+1:])
			}
			cur = &Record{ID: id, Desc: desc}
			continue
		}
		if cur == nil {
			if strings.TrimSpace(line) == "" {
				continue
			}
			return nil, fmt.Errorf("sequence data before the first header")
		}
		seq.WriteString(strings.Join(strings.Fields(line), ""))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return recs, nil
}

const lineWidth = 60

// Write renders records in FASTA format, wrapping sequence lines.
func Write(w io.Writer, recs []Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range recs {
		header := rec.ID
		if rec.Desc != "" {
			header += " " + rec.Desc
		}
		if _, err := fmt.Fprintf(bw, ">%s\n", header); err != nil {
			return err
		}
		for i := 0; i < len(rec.Seq); i += lineWidth {
			end := i + lineWidth
			if end > len(rec.Seq) {
				end = len(rec.Seq)
			}
			if _, err := fmt.Fprintf(bw, "%s\n", rec.Seq[i:end]); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// WriteFile writes records to a new FASTA file.
func WriteFile(path string, recs []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, recs); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Longest returns the record with the longest sequence, preferring
// the earlier record on ties. ok is false for an empty slice.
func Longest(recs []Record) (longest Record, ok bool) {
	for i, rec := range recs {
		if i == 0 || len(rec.Seq) > len(longest.Seq) {
			longest = rec
			ok = true
		}
	}
	return longest, ok
}
