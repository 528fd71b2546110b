// Package main provides the CLI entrypoint for keymap-parser.
//
// keymap-parser turns ZMK devicetree keymap files into the YAML keymap
// representation consumed by drawing tools:
//   - Runs the C preprocessor over the keymap source
//   - Resolves behavior bindings into display legends
//   - Emits layers and combos as YAML, with parse warnings on stderr
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/caksoylar/keymap-drawer/config"
	"github.com/caksoylar/keymap-drawer/keymap"
	"github.com/caksoylar/keymap-drawer/parse"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("keymap-parser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("c", "", "config YAML file")
	outputPath := fs.String("o", "", "output file (default stdout)")
	basePath := fs.String("b", "", "base keymap YAML to preserve hand-edited legends from")
	columns := fs.Int("columns", 0, "wrap layer rows at this many keys in the output")
	layerNames := fs.String("layer-names", "", "comma-separated layer name overrides")
	includeDirs := fs.String("I", "", "colon-separated include search directories")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: keymap-parser [flags] <keymap file or ->\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()

		return fmt.Errorf("expected exactly one keymap file argument")
	}

	cfg := config.Default()

	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		cfg = loaded
	}

	name, src, err := readInput(fs.Arg(0))
	if err != nil {
		return err
	}

	opts := []parse.Option{
		parse.WithIncludeDirs(filepath.Dir(name)),
	}

	if *includeDirs != "" {
		opts = append(opts, parse.WithIncludeDirs(filepath.SplitList(*includeDirs)...))
	}

	if *layerNames != "" {
		opts = append(opts, parse.WithLayerNames(strings.Split(*layerNames, ",")...))
	}

	if *basePath != "" {
		base, err := loadBase(*basePath)
		if err != nil {
			return fmt.Errorf("load base keymap: %w", err)
		}

		opts = append(opts, parse.WithBaseKeymap(base))
	}

	data, diags, err := parse.New(&cfg.Parse, opts...).Parse(name, src)

	for _, diag := range diags {
		fmt.Fprintln(stderr, diag.String())
	}

	if err != nil {
		return err
	}

	out := stdout

	if *outputPath != "" {
		f, createErr := os.Create(*outputPath)
		if createErr != nil {
			return createErr
		}
		defer f.Close()

		out = f
	}

	return writeYAML(out, data.Dump(*columns))
}

func readInput(arg string) (name string, src []byte, err error) {
	if arg == "-" {
		src, err = io.ReadAll(os.Stdin)

		return "stdin", src, err
	}

	src, err = os.ReadFile(arg)

	return arg, src, err
}

func loadBase(path string) (*keymap.KeymapData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	base := &keymap.KeymapData{}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, err
	}

	return base, nil
}

func writeYAML(out io.Writer, node *yaml.Node) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)

	if err := enc.Encode(node); err != nil {
		return err
	}

	return enc.Close()
}
