// Command dyaml is the host layer over the restricted-form core: it converts,
// normalizes, validates and diffs documents on disk. Exit codes: 0 success,
// 1 validation failure or differences found, 2 usage or unreadable input,
// 3 malformed input document, 4 malformed schema document.
package main

import (
	"flag"
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	dyaml "github.com/exergy-connect/RestrictedYAML"
	"github.com/exergy-connect/RestrictedYAML/schema"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "normalize":
		normalizeCmd(os.Args[2:])
	case "validate":
		validateCmd(os.Args[2:])
	case "convert":
		convertCmd(os.Args[2:])
	case "diff":
		diffCmd(os.Args[2:])
	case "check-drift":
		checkDriftCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `dyaml CLI

Usage:
  dyaml normalize [-no-comments] [-crc32] [-o out] file
  dyaml validate [-json] file...
  dyaml convert [-json-input] [-no-comments] [-crc32] [-o out] file
  dyaml diff [-ignore-human] [-json] file1 file2
  dyaml check-drift [-baseline file] [-human-only] [-schema file] file`)
}

func normalizeCmd(args []string) {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	noComments := fs.Bool("no-comments", false, "strip $human$ fields instead of preserving comments")
	addCRC := fs.Bool("crc32", false, "stamp CRC32 markers on $human$ fields")
	out := fs.String("o", "", "output file (default stdout)")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	data := mustRead(fs.Arg(0))
	text, err := dyaml.Normalize(data, dyaml.SynthOptions{Preserve: !*noComments, StampChecksum: *addCRC})
	if err != nil {
		fatalf(3, "normalize: %v", err)
	}
	writeOut(*out, text+"\n")
}

func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "emit diagnostics as JSON")
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(2)
	}
	allValid := true
	for _, name := range fs.Args() {
		res := dyaml.Validate(mustRead(name))
		if !res.Valid {
			allValid = false
		}
		if *asJSON {
			printJSON(res)
			continue
		}
		if res.Valid {
			fmt.Printf("%s: valid\n", name)
		} else {
			fmt.Printf("%s: invalid\n", name)
		}
		for _, is := range res.Errors {
			fmt.Printf("  error line %d: %s\n", is.Line, is.Message)
		}
		for _, is := range res.Warnings {
			fmt.Printf("  warning line %d: %s\n", is.Line, is.Message)
		}
	}
	if !allValid {
		os.Exit(1)
	}
}

func convertCmd(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	jsonInput := fs.Bool("json-input", false, "treat input as JSON instead of YAML")
	noComments := fs.Bool("no-comments", false, "strip $human$ fields instead of preserving comments")
	addCRC := fs.Bool("crc32", false, "stamp CRC32 markers on $human$ fields")
	out := fs.String("o", "", "output file (default stdout)")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	data := mustRead(fs.Arg(0))
	opt := dyaml.SynthOptions{Preserve: !*noComments, StampChecksum: *addCRC}

	var text string
	if *jsonInput {
		v, err := dyaml.FromJSON(data)
		if err != nil {
			fatalf(3, "convert: %v", err)
		}
		text = dyaml.Encode(dyaml.Synthesize(v, nil, opt))
	} else {
		var err error
		text, err = dyaml.Normalize(data, opt)
		if err != nil {
			fatalf(3, "convert: %v", err)
		}
	}
	writeOut(*out, text+"\n")
}

func diffCmd(args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	ignoreHuman := fs.Bool("ignore-human", false, "ignore changes to $human$ fields")
	asJSON := fs.Bool("json", false, "emit differences as JSON")
	_ = fs.Parse(args)
	if fs.NArg() != 2 {
		fs.Usage()
		os.Exit(2)
	}
	a := mustParse(fs.Arg(0))
	b := mustParse(fs.Arg(1))
	changes := dyaml.Diff(a, b, dyaml.DiffOptions{IgnoreAnnotations: *ignoreHuman})
	if *asJSON {
		printJSON(changes)
	} else {
		for _, c := range changes {
			switch c.Kind {
			case dyaml.Added:
				fmt.Printf("+ %s: %v\n", c.Path, c.New)
			case dyaml.Removed:
				fmt.Printf("- %s: %v\n", c.Path, c.Old)
			default:
				fmt.Printf("~ %s: %v -> %v\n", c.Path, c.Old, c.New)
			}
		}
	}
	if len(changes) > 0 {
		os.Exit(1)
	}
}

func checkDriftCmd(args []string) {
	fs := flag.NewFlagSet("check-drift", flag.ExitOnError)
	baseline := fs.String("baseline", "", "baseline file to compare against")
	humanOnly := fs.Bool("human-only", false, "only report $human$ field changes")
	schemaFile := fs.String("schema", "", "schema with x-encoding directives to check")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	v := mustParse(fs.Arg(0))

	failed := false
	if *schemaFile != "" {
		s, err := schema.Load(mustRead(*schemaFile))
		if err != nil {
			fatalf(4, "check-drift: %v", err)
		}
		if iss := schema.Check(v, s); len(iss) > 0 {
			failed = true
			for _, is := range iss {
				fmt.Printf("encoding %s: %s\n", is.Path, is.Message)
			}
		}
	}
	if *baseline != "" {
		base := mustParse(*baseline)
		changes := dyaml.Diff(base, v, dyaml.DiffOptions{})
		for _, c := range changes {
			if *humanOnly && !c.Annotation {
				continue
			}
			failed = true
			if c.Annotation {
				fmt.Printf("drift %s ($human$): %v -> %v\n", c.Path, c.Old, c.New)
			} else {
				fmt.Printf("drift %s: %v -> %v\n", c.Path, c.Old, c.New)
			}
		}
	}
	if failed {
		os.Exit(1)
	}
	fmt.Println("no drift detected")
}

func mustRead(name string) []byte {
	data, err := os.ReadFile(name)
	if err != nil {
		fatalf(2, "%v", err)
	}
	return data
}

func mustParse(name string) any {
	v, _, err := dyaml.Parse(mustRead(name))
	if err != nil {
		fatalf(3, "%s: %v", name, err)
	}
	return v
}

func writeOut(name, text string) {
	if name == "" {
		fmt.Print(text)
		return
	}
	if err := os.WriteFile(name, []byte(text), 0o644); err != nil {
		fatalf(2, "%v", err)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fatalf(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(code)
}
