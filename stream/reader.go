package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

var errLineTooLong = errors.New("line too long")

// Reader reads debug records from an io.Reader.
type Reader struct {
	r         *bufio.Reader
	prefix    *regexp.Regexp
	maxRecord int
	line      int   // lines consumed
	offset    int64 // bytes consumed
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithPrefix strips a log prefix from the first line of each record.
// The expression must match at the start of the line; lines outside a
// record that it does not match are skipped.
func WithPrefix(re *regexp.Regexp) ReaderOption {
	return func(r *Reader) {
		r.prefix = re
	}
}

// WithMaxRecord sets the maximum record size (default: 1 MiB).
func WithMaxRecord(max int) ReaderOption {
	return func(r *Reader) {
		r.maxRecord = max
	}
}

// NewReader creates a new record reader.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	reader := &Reader{
		r:         bufio.NewReader(r),
		maxRecord: DefaultMaxRecord,
	}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// Next reads and returns the next record.
// Returns io.EOF when no more records are available.
//
// A record still open at the end of input is returned as is; decoding it
// reports the unterminated collection. After a *ParseError the reader
// resumes at the following line.
func (r *Reader) Next() (*Record, error) {
	var (
		rec   *Record
		text  strings.Builder
		state scanState
	)

	for {
		start := r.offset
		line, err := r.readLine(r.maxRecord - text.Len())
		switch {
		case err == io.EOF:
			if rec == nil {
				return nil, io.EOF
			}
			rec.Text = text.String()
			return rec, nil
		case errors.Is(err, errLineTooLong):
			first := r.line
			if rec != nil {
				first = rec.Line
			}
			return nil, &ParseError{Reason: fmt.Sprintf("record exceeds %d bytes", r.maxRecord), Line: first}
		case err != nil:
			return nil, fmt.Errorf("read line %d: %w", r.line+1, err)
		}

		if rec == nil {
			body, ok := r.stripPrefix(line)
			if !ok || strings.TrimSpace(body) == "" {
				continue
			}
			prefix := line[:len(line)-len(body)]
			rec = &Record{
				Line:   r.line,
				Column: utf8.RuneCountInString(prefix) + 1,
				Offset: start + int64(len(prefix)),
			}
			line = body
		} else {
			text.WriteByte('\n')
		}

		if col := state.scan(line); col >= 0 {
			return nil, &ParseError{
				Reason: fmt.Sprintf("unbalanced %q at column %d", line[col], col+1),
				Line:   r.line,
			}
		}
		text.WriteString(line)
		if state.balanced() {
			rec.Text = text.String()
			return rec, nil
		}
	}
}

// ReadAll reads all records until EOF.
func (r *Reader) ReadAll() ([]*Record, error) {
	var records []*Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

func (r *Reader) stripPrefix(line string) (string, bool) {
	if r.prefix == nil {
		return line, true
	}
	loc := r.prefix.FindStringIndex(line)
	if loc == nil || loc[0] != 0 {
		return "", false
	}
	return line[loc[1]:], true
}

// readLine reads one line without its terminator. A line longer than
// limit is consumed and discarded.
func (r *Reader) readLine(limit int) (string, error) {
	var (
		buf     []byte
		read    int
		tooLong bool
	)
	for {
		chunk, err := r.r.ReadSlice('\n')
		read += len(chunk)
		r.offset += int64(len(chunk))

		body := chunk
		if n := len(body); n > 0 && body[n-1] == '\n' {
			body = body[:n-1]
		}
		if !tooLong {
			if len(buf)+len(body) > limit {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, body...)
			}
		}

		switch {
		case err == bufio.ErrBufferFull:
			continue
		case err == io.EOF:
			if read == 0 {
				return "", io.EOF
			}
		case err != nil:
			return "", err
		}

		r.line++
		if tooLong {
			return "", errLineTooLong
		}
		return strings.TrimSuffix(string(buf), "\r"), nil
	}
}
