package preprocessor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lookbusy1344/g10toolchain/lexer"
	"github.com/lookbusy1344/g10toolchain/token"
)

// handleInclude implements `.include "path"`: the file is resolved
// relative to the including file's directory and then against each
// configured include directory, loaded through the shared lexer cache
// (so a second include of the same file reuses its token slice), and
// walked inline so its expansion lands at the inclusion point.
func (p *Preprocessor) handleInclude(s *lexer.Stream, pos token.Position) {
	line := readLine(s)
	if !p.cond.active() {
		return
	}
	if len(line) == 0 || line[0].Kind != token.StringLiteral {
		p.errf(pos, ".include requires a quoted path")
		return
	}

	abs, err := p.resolveInclude(line[0].Lexeme)
	if err != nil {
		p.errf(pos, "%s", err)
		return
	}
	if p.onceFiles[abs] {
		return
	}
	if p.includeDepth >= p.cfg.MaxIncludeDepth {
		p.errf(pos, "include depth exceeded max_include_depth (%d)", p.cfg.MaxIncludeDepth)
		return
	}

	stream, lexErrs, err := p.cache.LoadFromFile(abs)
	if err != nil {
		p.errf(pos, "%s", err)
		return
	}
	p.absorb(lexErrs)

	p.includeDepth++
	p.fileStack = append(p.fileStack, abs)
	p.walk(stream)
	p.fileStack = p.fileStack[:len(p.fileStack)-1]
	p.includeDepth--
}

func (p *Preprocessor) resolveInclude(rel string) (string, error) {
	if filepath.IsAbs(rel) {
		if _, err := os.Stat(rel); err == nil {
			return filepath.Clean(rel), nil
		}
		return "", fmt.Errorf("include file %q not found", rel)
	}

	if len(p.fileStack) > 0 {
		dir := filepath.Dir(p.fileStack[len(p.fileStack)-1])
		if abs, ok := statAbs(filepath.Join(dir, rel)); ok {
			return abs, nil
		}
	}
	for _, dir := range p.cfg.IncludeDirs {
		if abs, ok := statAbs(filepath.Join(dir, rel)); ok {
			return abs, nil
		}
	}
	return "", fmt.Errorf("include file %q not found", rel)
}

func statAbs(candidate string) (string, bool) {
	if _, err := os.Stat(candidate); err != nil {
		return "", false
	}
	abs, err := filepath.Abs(candidate)
	if err != nil {
		return "", false
	}
	return filepath.Clean(abs), true
}

// pragmaOnce marks the innermost currently-open file as included at
// most once; a later `.include` of the same path is silently skipped.
func (p *Preprocessor) pragmaOnce() {
	if len(p.fileStack) > 0 {
		p.onceFiles[p.fileStack[len(p.fileStack)-1]] = true
	}
}
