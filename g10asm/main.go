// Command g10asm assembles a single G10 source file into a relocatable
// object file: preprocess, parse, generate code, write.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/lookbusy1344/g10toolchain/codegen"
	"github.com/lookbusy1344/g10toolchain/config"
	"github.com/lookbusy1344/g10toolchain/diag"
	"github.com/lookbusy1344/g10toolchain/parser"
	"github.com/lookbusy1344/g10toolchain/preprocessor"
)

// Version information, overridable at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		outputPath  = flag.String("o", "", "Output object file path (default: <source>.o)")
		includeDirs = flag.String("I", "", "Comma-separated list of additional include directories")
		stopAfter   = flag.String("stop-after", "", "Stop after a phase and print its result: preprocess, parse")
		configPath  = flag.String("config", "", "Path to a TOML config file (default: platform config dir)")
		maxRecur    = flag.Int("max-recursion-depth", 0, "Override the preprocessor's max macro recursion depth")
		maxInclude  = flag.Int("max-include-depth", 0, "Override the preprocessor's max nested include depth")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("g10asm %s (%s)\n", Version, Commit)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: g10asm [flags] <source.asm>")
		os.Exit(2)
	}
	sourcePath := flag.Arg(0)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "g10asm: %s\n", err)
		os.Exit(1)
	}
	if *includeDirs != "" {
		cfg.Assembler.IncludeDirs = append(cfg.Assembler.IncludeDirs, strings.Split(*includeDirs, ",")...)
	}
	if *maxRecur > 0 {
		cfg.Assembler.MaxRecursionDepth = *maxRecur
	}
	if *maxInclude > 0 {
		cfg.Assembler.MaxIncludeDepth = *maxInclude
	}
	if *stopAfter != "" {
		cfg.Assembler.StopAfter = *stopAfter
	}

	if *outputPath == "" {
		*outputPath = defaultOutputPath(sourcePath)
	}

	errs := &diag.List{}
	ok := assemble(sourcePath, *outputPath, cfg, errs)
	for _, e := range errs.Errors {
		fmt.Fprintln(os.Stderr, e.Error())
	}
	if !ok {
		os.Exit(1)
	}
}

func defaultOutputPath(sourcePath string) string {
	if i := strings.LastIndexByte(sourcePath, '.'); i > strings.LastIndexByte(sourcePath, '/') {
		return sourcePath[:i] + ".o"
	}
	return sourcePath + ".o"
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

// assemble runs the preprocess/parse/codegen pipeline and writes the
// resulting object file. It returns false (with diagnostics already
// appended to errs) if any phase failed; no partial output is written on
// failure.
func assemble(sourcePath, outputPath string, cfg *config.Config, errs *diag.List) bool {
	ppCfg := preprocessor.Config{
		MaxRecursionDepth: cfg.Assembler.MaxRecursionDepth,
		MaxIncludeDepth:   cfg.Assembler.MaxIncludeDepth,
		IncludeDirs:       cfg.Assembler.IncludeDirs,
	}
	pp := preprocessor.New(ppCfg, nil, errs)
	tokens := pp.ProcessFile(sourcePath)
	if errs.HasErrors() {
		return false
	}
	if cfg.Assembler.StopAfter == "preprocess" {
		for !tokens.AtEOF() {
			fmt.Print(tokens.Consume().Lexeme, " ")
		}
		fmt.Println()
		return true
	}

	p := parser.New(tokens, errs)
	mod := p.Parse()
	if errs.HasErrors() {
		return false
	}
	if cfg.Assembler.StopAfter == "parse" {
		fmt.Printf("%d statements parsed\n", len(mod.Statements))
		return true
	}

	obj := codegen.Generate(mod, errs)
	if errs.HasErrors() || obj == nil {
		return false
	}

	buf, err := obj.Write()
	if err != nil {
		fmt.Fprintf(os.Stderr, "g10asm: %s\n", err)
		return false
	}

	if err := os.WriteFile(outputPath, buf, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "g10asm: %s\n", err)
		return false
	}
	return true
}
