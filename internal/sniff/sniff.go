// Package sniff guesses the language of a code snippet from textual
// markers. Detection is a best-effort heuristic: an ordered list of rules
// is evaluated and the first one that matches wins.
package sniff

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"github.com/tidwall/gjson"
)

const matchTimeout = 50 * time.Millisecond

// MaxSniffBytes bounds the text the rules look at. Longer input is cut to
// this prefix so no pattern runs into matchTimeout; a complete JSON
// document is still recognized as a whole.
const MaxSniffBytes = 64 << 10

// Rule is one entry of the detection cascade. Detect reports the tag and
// whether the rule fired; most rules return a fixed tag, but a rule may
// narrow (javascript vs typescript, xml vs html).
type Rule struct {
	Name   string
	Detect func(code string) (Language, bool)
}

type matcher func(string) bool

func pattern(expr string, opts regexp2.RegexOptions) matcher {
	re := regexp2.MustCompile(expr, opts)
	re.MatchTimeout = matchTimeout
	return func(s string) bool {
		ok, err := re.MatchString(s)
		return err == nil && ok
	}
}

func re(expr string) matcher   { return pattern(expr, regexp2.None) }
func reI(expr string) matcher  { return pattern(expr, regexp2.IgnoreCase) }
func reM(expr string) matcher  { return pattern(expr, regexp2.Multiline) }
func reMI(expr string) matcher { return pattern(expr, regexp2.Multiline|regexp2.IgnoreCase) }

func anyOf(ms ...matcher) matcher {
	return func(s string) bool {
		for _, m := range ms {
			if m(s) {
				return true
			}
		}
		return false
	}
}

func allOf(ms ...matcher) matcher {
	return func(s string) bool {
		for _, m := range ms {
			if !m(s) {
				return false
			}
		}
		return true
	}
}

func not(m matcher) matcher {
	return func(s string) bool { return !m(s) }
}

func tagged(name string, lang Language, m matcher) Rule {
	return Rule{Name: name, Detect: func(s string) (Language, bool) {
		if m(s) {
			return lang, true
		}
		return "", false
	}}
}

// Markers that only occur in one family. The broad JavaScript and Python
// rules run early in the cascade and would otherwise swallow snippets that
// share keywords like "class" or "import" with them.
var (
	cInclude     = reM(`^\s*#include\b`)
	javaLike     = re(`\b(public|private|protected)\s+(static\s+)?(final\s+)?(class|interface|void|int|String|string|bool|boolean)\b|System\.(out|in)\.`)
	csharpMarker = reM(`^\s*using\s+System\b|Console\.(WriteLine|ReadLine|Write)\b|\bget\s*;\s*set\s*;`)
	pythonDef    = reM(`^\s*(def|elif)\s`)
	packageDecl  = reM(`^\s*package\s+[\w.]+`)
	rustFn       = re(`\bfn\s+\w+`)
	funcKeyword  = re(`\bfunc\s+[\w(]`)
	phpOpen      = re(`<\?php`)
	kotlinDecl   = reM(`^\s*(fun|val)\s+\w+`)
	rubyEnd      = reM(`^\s*end\s*$`)

	foreignToPython = anyOf(cInclude, javaLike, csharpMarker, packageDecl, rustFn, funcKeyword, phpOpen, kotlinDecl, rubyEnd)
	foreignToJS     = anyOf(foreignToPython, pythonDef)
)

var (
	jsGate = anyOf(
		re(`\b(function|const|let|var|class|import|export|require|module\.exports)\s`),
		re(`\b(console\.|document\.|window\.|process\.|global\.)\w+`),
		re(`=>\s*[{(]`),
		re(`\$\(`),
		re(`\bnew\s+\w+\s*\(`),
		// TypeScript-only declarations that carry none of the markers above.
		re(`\binterface\s+\w+(\s*<[^>]*>)?\s*\{[^}]*\w+\??\s*:\s*\w+`),
		re(`\btype\s+\w+(\s*<[^>]*>)?\s*=\s*[^=]`),
	)
	tsMarkers = anyOf(
		re(`\b(interface|type\s+\w+\s*=|enum\s+\w+|declare\s+|as\s+\w+)\b`),
		re(`<\w+>`),
		re(`:\s*(string|number|boolean|void|any|unknown|never)\b`),
	)
	jsonFramed = func(s string) bool {
		t := strings.TrimSpace(s)
		if len(t) < 2 {
			return false
		}
		return strings.ContainsRune("{[", rune(t[0])) && strings.ContainsRune("}]", rune(t[len(t)-1]))
	}
	xmlProlog   = re(`^\s*<\?xml`)
	htmlDoctype = reI(`<!DOCTYPE\s+html`)
)

// Rules is the ordered detection cascade.
var Rules = []Rule{
	{Name: "shebang", Detect: func(s string) (Language, bool) {
		first := strings.TrimSpace(s)
		if i := strings.IndexByte(first, '\n'); i >= 0 {
			first = strings.TrimSpace(first[:i])
		}
		switch {
		case strings.HasPrefix(first, "#!/usr/bin/env python"), strings.HasPrefix(first, "#!/usr/bin/python"):
			return Python, true
		case strings.HasPrefix(first, "#!/bin/bash"), strings.HasPrefix(first, "#!/bin/sh"):
			return Bash, true
		}
		return "", false
	}},
	{Name: "json", Detect: detectJSON},
	{Name: "markup-prolog", Detect: func(s string) (Language, bool) {
		switch {
		case htmlDoctype(s):
			return HTML, true
		case xmlProlog(s):
			return XML, true
		}
		return "", false
	}},
	tagged("html-tags", HTML, reI(`<(html|head|body|div|span|p|a|img|script|style|link|meta)\b[^>]*>`)),
	tagged("css", CSS, anyOf(
		reM(`^\s*@(import|media|keyframes|font-face|charset)\b`),
		re(`[.#][\w-]+\s*\{[^}]*[\w-]+\s*:\s*[^}]+\}`),
		reM(`^\s*(?!(default|case)\b)[\w-]+\s*:(?!:)\s*[^;{}\n]+;`),
	)),
	{Name: "javascript", Detect: func(s string) (Language, bool) {
		if !jsGate(s) || foreignToJS(s) {
			return "", false
		}
		if tsMarkers(s) {
			return TypeScript, true
		}
		return JavaScript, true
	}},
	tagged("python", Python, allOf(not(foreignToPython), anyOf(
		re(`\b(def|class|import|from|print\(|if\s+__name__|range\(|len\()\b`),
		reM(`^\s*#(?!\s*include)`),
		re(`\bself\.\w+`),
		re(`\b(True|False|None)\b`),
		re(`\bfor\s+\w+\s+in\s+`),
	))),
	tagged("java", Java, allOf(not(anyOf(cInclude, csharpMarker)), anyOf(
		re(`\b(public\s+class|private\s+|protected\s+|static\s+|final\s+)\w+`),
		re(`\b(String|int|boolean|void|double|float|long|char)\s+\w+`),
		re(`System\.(out|in)\.`),
		re(`\bpackage\s+[\w.]+;`),
		re(`\bnew\s+\w+\s*\[\s*\d*\s*\]`),
	))),
	tagged("cpp", Cpp, allOf(not(csharpMarker), anyOf(
		re(`#include\s*<[\w/]+>`),
		re(`std::|\b(cout|cin|endl)\b|\bnamespace\s+std\b`),
		re(`\b(class|struct)\s+\w+\s*\{`),
		re(`\btemplate\s*<`),
	))),
	tagged("c", C, allOf(not(csharpMarker), anyOf(
		re(`#include\s*<[\w./]+\.h>`),
		re(`\b(printf|scanf|malloc|free|NULL)\s*\(`),
		re(`\b(int|char|float|double|void)\s+\w+\s*\(`),
	))),
	tagged("csharp", CSharp, anyOf(
		re(`\b(using\s+System|namespace\s+\w+|public\s+class|private\s+|protected\s+)\b`),
		re(`\b(var|string|int|bool|double|decimal)\s+\w+\s*=`),
		re(`\[[\w.]+\]`),
		re(`\bget\s*;\s*set\s*;`),
	)),
	tagged("go", Go, anyOf(
		re(`\b(package\s+main|func\s+main|import\s+"[^"]+"|fmt\.(Print|Scan))\b`),
		re(`\bvar\s+\w+\s+\w+`),
		re(`\bgo\s+func\b`),
		re(`\bchan\s+\w+`),
	)),
	tagged("rust", Rust, anyOf(
		re(`\b(fn\s+main|use\s+std::|println!|let\s+(mut\s+)?\w+|struct\s+\w+)`),
		re(`\bmatch\s+\w+\s*\{`),
		re(`\bimpl\s+\w+`),
		re(`&(str|mut)\b`),
	)),
	tagged("php", PHP, anyOf(
		reM(`^\s*<\?php`),
		re(`\$\w+`),
		re(`\b(echo|print|var_dump|isset|empty)\s[^\n]*;`),
		allOf(re(`->`), not(re(`console\.log`))),
		allOf(re(`::`), not(re(`std::`))),
	)),
	tagged("ruby", Ruby, anyOf(
		re(`\b(def\s+\w+|puts\s+|require\s+['"]|class\s+\w+\s*<|attr_(reader|writer|accessor))`),
		re(`@\w+`),
		reM(`\bend\s*$`),
		re(`\bdo\s*\|`),
	)),
	tagged("swift", Swift, anyOf(
		re(`\b(import\s+\w+|func\s+\w+|var\s+\w+:|let\s+\w+:|class\s+\w+:|struct\s+\w+:)`),
		allOf(re(`\bguard\s+`), re(`\belse\s*\{`)),
	)),
	tagged("kotlin", Kotlin, anyOf(
		re(`\b(fun\s+\w+|val\s+\w+|var\s+\w+:|class\s+\w+\(|object\s+\w+)`),
		re(`\bwhen\s*\(`),
	)),
	tagged("sql", SQL, reI(`\b(SELECT|INSERT|UPDATE|DELETE|CREATE|DROP|ALTER|FROM|WHERE|JOIN)\b`)),
	tagged("yaml", YAML, allOf(
		re(`^\s*[\w-]+\s*:\s*[^{]`),
		not(re(`\{.*\}`)),
	)),
	tagged("shell", Bash, anyOf(
		reM(`^\s*#!/bin/(bash|sh)`),
		re(`\b(echo|cd|ls|grep|awk|sed|chmod|chown)\s`),
		allOf(re(`\$\{?\w+\}?`), not(re(`\bfunction\b`))),
	)),
}

func detectJSON(s string) (Language, bool) {
	if jsonFramed(s) && gjson.Valid(strings.TrimSpace(s)) {
		return JSON, true
	}
	return "", false
}

// head cuts code to at most MaxSniffBytes on a rune boundary.
func head(code string) string {
	if len(code) <= MaxSniffBytes {
		return code
	}
	n := MaxSniffBytes
	for n > 0 && !utf8.RuneStart(code[n]) {
		n--
	}
	return code[:n]
}

// Detect returns the language tag of code, or PlainText when the input is
// blank or no rule matches. It never fails.
func Detect(code string) Language {
	lang, _ := Explain(code)
	return lang
}

// Explain is Detect but also returns the name of the rule that fired, empty
// when none did.
func Explain(code string) (Language, string) {
	if strings.TrimSpace(code) == "" {
		return PlainText, ""
	}
	if len(code) > MaxSniffBytes {
		if lang, ok := detectJSON(code); ok {
			return lang, "json"
		}
		code = head(code)
	}
	for _, r := range Rules {
		if lang, ok := r.Detect(code); ok {
			return lang, r.Name
		}
	}
	return PlainText, ""
}
