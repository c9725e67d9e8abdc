package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"runtime"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"golang.org/x/sync/errgroup"

	"github.com/Neumenon/dbgfmt/dbgfmt"
	"github.com/Neumenon/dbgfmt/stream"
)

type outputFormat int

const (
	formatDebug outputFormat = iota
	formatPretty
	formatJSON
	formatYAML
)

func parseFormat(s string) (outputFormat, error) {
	switch s {
	case "debug":
		return formatDebug, nil
	case "pretty":
		return formatPretty, nil
	case "json":
		return formatJSON, nil
	case "yaml":
		return formatYAML, nil
	default:
		return 0, fmt.Errorf("unknown format %q (want debug, pretty, json or yaml)", s)
	}
}

type options struct {
	format    outputFormat
	indent    string
	query     string
	color     bool
	prefix    *regexp.Regexp
	dedupe    bool
	maxRecord int
	check     bool
	tokens    bool
}

// run decodes every file and reports whether all records decoded. Several
// files are decoded concurrently; their output is written in argument
// order. The error is non-nil only for I/O failures.
func run(opts *options, files []string, stdin io.Reader, stdout, stderr io.Writer) (bool, error) {
	if len(files) == 1 {
		return processFile(context.Background(), opts, files[0], stdin, stdout, stderr)
	}

	type result struct {
		out  bytes.Buffer
		diag bytes.Buffer
		ok   bool
	}
	results := make([]result, len(files))

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range files {
		i, name := i, name
		g.Go(func() error {
			res := &results[i]
			ok, err := processFile(ctx, opts, name, stdin, &res.out, &res.diag)
			res.ok = ok
			return err
		})
	}
	err := g.Wait()

	ok := true
	for i := range results {
		stdout.Write(results[i].out.Bytes())
		stderr.Write(results[i].diag.Bytes())
		ok = ok && results[i].ok
	}
	return ok, err
}

// processor handles the records of one input.
type processor struct {
	opts  *options
	name  string
	out   io.Writer
	diag  io.Writer
	seen  map[string]bool
	count int
}

func processFile(ctx context.Context, opts *options, name string, stdin io.Reader, out, diag io.Writer) (bool, error) {
	in, err := openInput(name, stdin)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", name, err)
	}
	defer in.Close()

	display := name
	if name == "-" {
		display = "<stdin>"
	}
	p := &processor{opts: opts, name: display, out: out, diag: diag}
	if opts.dedupe {
		p.seen = make(map[string]bool)
	}

	r := stream.NewReader(in,
		stream.WithPrefix(opts.prefix),
		stream.WithMaxRecord(opts.maxRecord),
	)
	ok := true
	for {
		if err := ctx.Err(); err != nil {
			return ok, err
		}
		rec, err := r.Next()
		if err == io.EOF {
			return ok, nil
		}
		var pe *stream.ParseError
		if errors.As(err, &pe) {
			fmt.Fprintf(diag, "%s:%d: %s\n", display, pe.Line, pe.Reason)
			ok = false
			continue
		}
		if err != nil {
			return ok, fmt.Errorf("%s: %w", display, err)
		}
		if !p.record(rec) {
			ok = false
		}
	}
}

func (p *processor) record(rec *stream.Record) bool {
	if p.seen != nil {
		fp := stream.Fingerprint(rec.Text)
		if p.seen[fp] {
			return true
		}
		p.seen[fp] = true
	}
	if p.opts.tokens {
		return p.printTokens(rec)
	}

	v, err := dbgfmt.Parse(rec.Text)
	if err != nil {
		p.report(rec, err)
		return false
	}
	if p.opts.check {
		return true
	}

	out, err := p.render(v)
	if err != nil {
		fmt.Fprintf(p.diag, "%s:%d: %v\n", p.name, rec.Line, err)
		return false
	}
	if out == nil {
		return true
	}
	if p.opts.format == formatYAML && p.count > 0 {
		io.WriteString(p.out, "---\n")
	}
	p.count++
	p.out.Write(out)
	if len(out) == 0 || out[len(out)-1] != '\n' {
		io.WriteString(p.out, "\n")
	}
	return true
}

// render returns the output for one value, or nil when a query selects
// nothing.
func (p *processor) render(v *dbgfmt.Value) ([]byte, error) {
	switch p.opts.format {
	case formatPretty:
		return []byte(dbgfmt.Format(v, dbgfmt.FormatOptions{Pretty: true, Indent: p.opts.indent})), nil
	case formatJSON:
		js, err := dbgfmt.ToJSON(v)
		if err != nil {
			return nil, err
		}
		if p.opts.query != "" {
			res := gjson.GetBytes(js, p.opts.query)
			if !res.Exists() {
				return nil, nil
			}
			js = []byte(res.Raw)
		}
		js = pretty.Pretty(js)
		if p.opts.color {
			js = pretty.Color(js, nil)
		}
		return js, nil
	case formatYAML:
		return dbgfmt.ToYAML(v)
	default:
		return []byte(v.String()), nil
	}
}

func (p *processor) printTokens(rec *stream.Record) bool {
	tokens, err := dbgfmt.NewLexer(rec.Text).Tokenize()
	for _, tok := range tokens {
		line, col := p.position(rec, tok.Pos)
		switch tok.Type {
		case dbgfmt.TokenInt, dbgfmt.TokenFloat, dbgfmt.TokenString, dbgfmt.TokenChar, dbgfmt.TokenIdent:
			fmt.Fprintf(p.out, "%d:%d\t%s\t%s\n", line, col, tok.Type, tok.Value)
		default:
			fmt.Fprintf(p.out, "%d:%d\t%s\n", line, col, tok.Type)
		}
	}
	if err != nil {
		p.report(rec, err)
		return false
	}
	return true
}

// report prints a decode error against its position in the input file.
func (p *processor) report(rec *stream.Record, err error) {
	var e *dbgfmt.Error
	if !errors.As(err, &e) {
		fmt.Fprintf(p.diag, "%s:%d: %v\n", p.name, rec.Line, err)
		return
	}
	line, col := p.position(rec, e.Pos)
	fmt.Fprintf(p.diag, "%s:%d:%d: %s\n", p.name, line, col, e.Message())
}

// position maps a position within a record to the input file.
func (p *processor) position(rec *stream.Record, pos dbgfmt.Position) (int, int) {
	col := pos.Column
	if pos.Line == 1 {
		col += rec.Column - 1
	}
	return rec.Line + pos.Line - 1, col
}
