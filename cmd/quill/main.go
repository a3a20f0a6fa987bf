// Package main is the quill document tool: it loads an HTML rich-text
// document and prints it as plain text or re-exported markup.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/quillkit/quill/internal/config"
	"github.com/quillkit/quill/internal/engine"
	"github.com/quillkit/quill/internal/html"
)

// Version information (set via ldflags during build).
var version = "dev"

func main() {
	os.Exit(run())
}

type options struct {
	configPath  string
	export      bool
	showVersion bool
	input       string
}

func run() int {
	opts := parseFlags()

	if opts.showVersion {
		fmt.Printf("quill %s\n", version)
		return 0
	}

	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.LoadFile(opts.configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		cfg = loaded
	}

	edOpts := []engine.Option{
		engine.WithUndoDepth(cfg.Editor.UndoLevels),
		engine.WithUndoBudget(cfg.Memory.UndoBudget),
	}
	if !cfg.Editor.RichText {
		edOpts = append(edOpts, engine.WithPlainText())
	}
	ed := engine.New(edOpts...)

	in, closeIn, err := openInput(opts.input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeIn()

	// Loading is a bulk edit; it must not enter the history.
	err = ed.Silent(func() error {
		_, err := html.Import(ed.Document(), in)
		return err
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if opts.export {
		if err := html.Export(os.Stdout, ed.Document()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}
	fmt.Print(ed.Text())
	return 0
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to TOML config file")
	flag.BoolVar(&opts.export, "export", false, "re-export the document as HTML")
	flag.BoolVar(&opts.showVersion, "version", false, "print version and exit")
	flag.Parse()
	opts.input = flag.Arg(0)
	return opts
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open document: %w", err)
	}
	return f, func() { f.Close() }, nil
}
