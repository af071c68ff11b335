// Package transcript reads channel logs written by the channel logger.
package transcript

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// chunkSize is how much of the file is read per step when scanning backwards.
const chunkSize = 64 << 10

// ArchiveExt is appended to the log name of a compressed, rotated transcript.
const ArchiveExt = ".zst"

// ErrNoTranscript is returned when no log exists for the channel.
var ErrNoTranscript = errors.New("no transcript for channel")

// the channel logger replaces these with "__" when naming files
var badChars = regexp.MustCompile(`[\\/?%*:|"<>. ]`)

// FileName returns the log file name for channel, e.g. "#Casual.Talk" maps
// to "casual__talk.log".
func FileName(channel string) string {
	name := strings.TrimLeft(channel, "#")
	name = badChars.ReplaceAllString(name, "__")
	return strings.ToLower(name) + ".log"
}

// FileSource reads <Dir>/<channel>.log. When the plain log is missing it
// falls back to a zstd archive of the same name.
type FileSource struct {
	Dir string
}

// NewFileSource returns a FileSource rooted at dir.
func NewFileSource(dir string) *FileSource { return &FileSource{Dir: dir} }

// Path returns the plain log path for channel.
func (s *FileSource) Path(channel string) string {
	return filepath.Join(s.Dir, FileName(channel))
}

// ReadTail returns the last n lines of the channel's log, oldest first, like
// tail -n. A trailing newline does not produce an empty last line.
func (s *FileSource) ReadTail(ctx context.Context, channel string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	path := s.Path(channel)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s.readArchive(ctx, path+ArchiveExt, channel, n)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	buf, err := readBackwards(ctx, f, info.Size(), n)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lastLines(buf, n), nil
}

// readBackwards reads chunks from the end of r until more than n newlines
// have been seen or the start is reached.
func readBackwards(ctx context.Context, r io.ReaderAt, size int64, n int) ([]byte, error) {
	var (
		buf      []byte
		newlines int
	)
	for off := size; off > 0 && newlines <= n; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		step := min(int64(chunkSize), off)
		off -= step
		chunk := make([]byte, step)
		if _, err := r.ReadAt(chunk, off); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		newlines += bytes.Count(chunk, []byte{'\n'})
		buf = append(chunk, buf...)
	}
	return buf, nil
}

func (s *FileSource) readArchive(ctx context.Context, path, channel string, n int) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoTranscript, channel)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return lastLines(data, n), nil
}

func lastLines(buf []byte, n int) []string {
	text := strings.TrimSuffix(string(buf), "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
