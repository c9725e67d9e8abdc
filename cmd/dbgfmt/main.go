// dbgfmt - Rust Debug output decoder CLI
//
// Usage:
//
//	dbgfmt parse [options] [file...]   Decode renderings and print them
//	dbgfmt check [--tokens] [file...]  Validate renderings
//	dbgfmt fmt [options] [file...]     Same as parse --format pretty
//	dbgfmt version                     Print version info
//
// If no file is given, or a file is "-", reads from stdin. Gzip and zstd
// input is decompressed transparently.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const version = "0.3.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "parse", "fmt", "check":
		opts, files, err := parseArgs(cmd, os.Args[2:])
		if err != nil {
			fmt.Fprintf(os.Stderr, "dbgfmt %s: %v\n", cmd, err)
			os.Exit(2)
		}
		ok, err := run(opts, files, os.Stdin, os.Stdout, os.Stderr)
		if err != nil {
			fatal("%v", err)
		}
		if !ok {
			os.Exit(1)
		}
	case "version", "-v", "--version":
		fmt.Printf("dbgfmt %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `dbgfmt - decode Rust Debug output

Usage:
  dbgfmt parse [options] [file...]   Decode renderings and print them
  dbgfmt check [--tokens] [file...]  Validate renderings, print nothing on success
  dbgfmt fmt [options] [file...]     Same as parse --format pretty
  dbgfmt version                     Print version info

Options:
  --format=F          Output format: debug, pretty, json, yaml (default: debug)
  --indent=S          Indent for pretty output (default: 4 spaces)
  --query=PATH        Select part of the JSON output (gjson path syntax)
  --color             Colorize JSON output
  --prefix=REGEX      Strip a log prefix from each record; other lines are skipped
  --dedupe            Print each distinct rendering once per file
  --max-record=N      Maximum record size in bytes (default: 1048576)
  --config=FILE       TOML config file (default: $XDG_CONFIG_HOME/dbgfmt/config.toml)
  --tokens            check: print the token stream of each record

If no file is given, reads from stdin. Files ending in .gz or .zst, or
starting with a gzip or zstd header, are decompressed.

Examples:
  echo 'Point { x: 1, y: 2 }' | dbgfmt fmt
  # Output:
  # Point {
  #     x: 1,
  #     y: 2,
  # }

  dbgfmt parse --format=json --query=x app.log
  dbgfmt parse --prefix='^\S+ \[\w+\] ' --dedupe service.log.zst
  dbgfmt check --tokens dump.txt
`)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "dbgfmt: "+format+"\n", args...)
	os.Exit(1)
}

// parseArgs merges the config file with the command line. Flags accept
// both "--name=value" and "--name value".
func parseArgs(cmd string, args []string) (*options, []string, error) {
	configPath := ""
	for i, arg := range args {
		switch {
		case strings.HasPrefix(arg, "--config="):
			configPath = strings.TrimPrefix(arg, "--config=")
		case arg == "--config" && i+1 < len(args):
			configPath = args[i+1]
		}
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	opts, err := cfg.options()
	if err != nil {
		return nil, nil, err
	}
	opts.check = cmd == "check"
	if cmd == "fmt" {
		opts.format = formatPretty
	}

	var (
		files      []string
		stdinSeen  bool
		formatFlag string
		queryFlag  bool
	)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := strings.Cut(arg, "=")

		// takeValue returns the flag's argument, consuming the next arg when
		// it was not given inline.
		takeValue := func() (string, error) {
			if hasValue {
				return value, nil
			}
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s requires a value", name)
			}
			i++
			return args[i], nil
		}

		switch name {
		case "--format":
			v, err := takeValue()
			if err != nil {
				return nil, nil, err
			}
			formatFlag = v
		case "--indent":
			v, err := takeValue()
			if err != nil {
				return nil, nil, err
			}
			opts.indent = v
		case "--query":
			v, err := takeValue()
			if err != nil {
				return nil, nil, err
			}
			opts.query = v
			queryFlag = true
		case "--prefix":
			v, err := takeValue()
			if err != nil {
				return nil, nil, err
			}
			if opts.prefix, err = compilePrefix(v); err != nil {
				return nil, nil, err
			}
		case "--max-record":
			v, err := takeValue()
			if err != nil {
				return nil, nil, err
			}
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return nil, nil, fmt.Errorf("invalid --max-record %q", v)
			}
			opts.maxRecord = n
		case "--config":
			if _, err := takeValue(); err != nil {
				return nil, nil, err
			}
		case "--color":
			opts.color = true
		case "--dedupe":
			opts.dedupe = true
		case "--tokens":
			opts.tokens = true
		default:
			if strings.HasPrefix(arg, "-") && arg != "-" {
				return nil, nil, fmt.Errorf("unknown option %s", arg)
			}
			if arg == "-" && stdinSeen {
				return nil, nil, fmt.Errorf("standard input named more than once")
			}
			stdinSeen = stdinSeen || arg == "-"
			files = append(files, arg)
		}
	}

	if formatFlag != "" {
		f, err := parseFormat(formatFlag)
		if err != nil {
			return nil, nil, err
		}
		opts.format = f
	}
	if queryFlag {
		if formatFlag == "" && cmd == "parse" {
			opts.format = formatJSON
		}
		if opts.format != formatJSON {
			return nil, nil, fmt.Errorf("--query requires --format json")
		}
	}
	if len(files) == 0 {
		files = []string{"-"}
	}
	return opts, files, nil
}
