package sniff

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		code string
		want Language
	}{
		{"empty", "", PlainText},
		{"whitespace only", "   \n\t  ", PlainText},
		{"python shebang", "#!/usr/bin/env python\nprint('hi')", Python},
		{"bash shebang", "#!/bin/bash\nset -e\n", Bash},
		{"json object", `{"name": "codesight", "tags": ["a"]}`, JSON},
		{"json array", "  [1, 2, 3]\n", JSON},
		{"invalid json falls through", `{"a": }`, PlainText},
		{"html doctype", "<!DOCTYPE html>\n<html></html>", HTML},
		{"lowercase doctype", "<!doctype html>\n<html></html>", HTML},
		{"xml prolog", "<?xml version=\"1.0\"?>\n<root/>", XML},
		{"html tags", `<div class="x">hi</div>`, HTML},
		{"css block", ".btn {\n  color: red;\n}", CSS},
		{"css at-rule", "@media screen {\n}", CSS},
		{"javascript", "function add(a, b) {\n  return a + b;\n}\nconsole.log(add(1, 2));", JavaScript},
		{"arrow function", "items.map(x => { return x * 2 })", JavaScript},
		{"typescript interface", "interface Foo { x: number }", TypeScript},
		{"typescript annotation", "const x: number = 5;", TypeScript},
		{"python", "def greet(name):\n    print(f\"Hello {name}\")\n\ngreet(\"x\")", Python},
		{"java", "public class Hello {\n    public static void main(String[] args) {\n        System.out.println(\"Hello\");\n    }\n}", Java},
		{"cpp", "#include <iostream>\n\nint main() {\n    std::cout << \"hi\" << std::endl;\n    return 0;\n}", Cpp},
		{"c", "#include <stdio.h>\n\nint main(void) {\n    printf(\"hi\\n\");\n    return 0;\n}", C},
		{"csharp", "using System;\n\nclass Program {\n    static void Main() {\n        Console.WriteLine(\"Hello\");\n    }\n}", CSharp},
		{"go", "package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"hi\")\n}", Go},
		{"rust", "fn main() {\n    let x = 5;\n    println!(\"{}\", x);\n}", Rust},
		{"php", "<?php\n$name = \"World\";\necho \"Hello, $name\";", PHP},
		{"ruby", "def greet(name)\n  puts \"Hello, #{name}\"\nend", Ruby},
		{"swift", "import Foundation\n\nfunc greet(name: String) {\n    print(\"Hello, \" + name)\n}", Swift},
		{"kotlin", "fun main() {\n    val name = \"Kotlin\"\n    println(\"Hello, \" + name)\n}", Kotlin},
		{"sql", "SELECT id, name FROM users WHERE id = 1;", SQL},
		{"yaml", "name: codesight\nversion: 1.0\n", YAML},
		{"shell", "echo \"hello\"\ncd /tmp\nls -la", Bash},
		{"prose", "hello there friend", PlainText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.code))
		})
	}
}

func TestDetectIsTotal(t *testing.T) {
	inputs := []string{
		"", "{", "}", "<", "#", "$", "::", "->", "\x00\x01", "ñandú", "```", "{{{{[[[[",
	}
	for _, in := range inputs {
		got := Detect(in)
		assert.True(t, got.Valid(), "Detect(%q) = %q", in, got)
	}
}

func TestExplainNamesRule(t *testing.T) {
	lang, rule := Explain("#!/bin/sh\necho hi")
	assert.Equal(t, Bash, lang)
	assert.Equal(t, "shebang", rule)

	lang, rule = Explain("just words")
	assert.Equal(t, PlainText, lang)
	assert.Empty(t, rule)
}

func TestRuleOrder(t *testing.T) {
	var names []string
	for _, r := range Rules {
		names = append(names, r.Name)
	}
	require.NotEmpty(t, names)
	assert.Equal(t, "shebang", names[0])
	assert.Equal(t, "shell", names[len(names)-1])

	idx := func(n string) int {
		for i, v := range names {
			if v == n {
				return i
			}
		}
		return -1
	}
	assert.Less(t, idx("json"), idx("css"))
	assert.Less(t, idx("javascript"), idx("python"))
	assert.Less(t, idx("cpp"), idx("c"))
	assert.Less(t, idx("sql"), idx("yaml"))
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "js", JavaScript.Extension())
	assert.Equal(t, "cs", CSharp.Extension())
	assert.Equal(t, "rb", Ruby.Extension())
	assert.Equal(t, "txt", PlainText.Extension())
	assert.Equal(t, "txt", Language("cobol").Extension())
}

func TestLexer(t *testing.T) {
	assert.Equal(t, "plaintext", PlainText.Lexer())
	assert.Equal(t, "c++", Cpp.Lexer())
	assert.Equal(t, "go", Go.Lexer())
}

func TestDetectLargeInput(t *testing.T) {
	css := strings.Repeat(".btn {\n  color: red;\n}\n", 10000)
	require.Greater(t, len(css), MaxSniffBytes)
	lang, rule := Explain(css)
	assert.Equal(t, CSS, lang)
	assert.Equal(t, "css", rule)

	doc := "[" + strings.Repeat("1,", 40000) + "1]"
	require.Greater(t, len(doc), MaxSniffBytes)
	assert.Equal(t, JSON, Detect(doc))
}

func TestHeadKeepsRuneBoundary(t *testing.T) {
	long := strings.Repeat("ñ", MaxSniffBytes)
	h := head(long)
	assert.LessOrEqual(t, len(h), MaxSniffBytes)
	assert.True(t, utf8.ValidString(h))
	assert.Equal(t, "short", head("short"))
}
