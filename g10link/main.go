// Command g10link links one or more G10 object files into a single
// flashable program image: read, resolve, merge, write.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lookbusy1344/g10toolchain/config"
	"github.com/lookbusy1344/g10toolchain/diag"
	"github.com/lookbusy1344/g10toolchain/link"
	"github.com/lookbusy1344/g10toolchain/object"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		outputPath  = flag.String("o", "", "Output program image path")
		configPath  = flag.String("config", "", "Path to a TOML config file (default: platform config dir)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("g10link %s (%s)\n", Version, Commit)
		os.Exit(0)
	}

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: g10link [flags] <object.o> [object2.o ...]")
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "g10link: %s\n", err)
		os.Exit(1)
	}
	if *outputPath == "" {
		*outputPath = cfg.Linker.DefaultOutput
	}

	errs := &diag.List{}
	ok := runLink(flag.Args(), *outputPath, errs)
	for _, e := range errs.Errors {
		fmt.Fprintln(os.Stderr, e.Error())
	}
	if !ok {
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

// runLink reads every object file, links them into a program image, and
// writes the result. It returns false (with diagnostics already appended
// to errs) if any phase failed; no partial output is written on failure.
func runLink(objectPaths []string, outputPath string, errs *diag.List) bool {
	objects := make([]*object.Object, 0, len(objectPaths))
	for _, path := range objectPaths {
		buf, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "g10link: %s\n", err)
			return false
		}
		obj, err := object.Read(buf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "g10link: %s: %s\n", path, err)
			return false
		}
		objects = append(objects, obj)
	}

	linker := link.New(objects, errs)
	prog := linker.Link()
	if errs.HasErrors() || prog == nil {
		return false
	}

	buf, err := prog.Write()
	if err != nil {
		fmt.Fprintf(os.Stderr, "g10link: %s\n", err)
		return false
	}

	if err := os.WriteFile(outputPath, buf, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "g10link: %s\n", err)
		return false
	}
	return true
}
