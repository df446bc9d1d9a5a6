package sniff

// Language is a syntax-highlighting tag.
type Language string

const (
	PlainText  Language = "plain-text"
	Python     Language = "python"
	Bash       Language = "bash"
	JSON       Language = "json"
	XML        Language = "xml"
	HTML       Language = "html"
	CSS        Language = "css"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	Java       Language = "java"
	Cpp        Language = "cpp"
	C          Language = "c"
	CSharp     Language = "csharp"
	Go         Language = "go"
	Rust       Language = "rust"
	PHP        Language = "php"
	Ruby       Language = "ruby"
	Swift      Language = "swift"
	Kotlin     Language = "kotlin"
	SQL        Language = "sql"
	YAML       Language = "yaml"
)

// All lists every tag Detect can return.
var All = []Language{
	PlainText, Python, Bash, JSON, XML, HTML, CSS, JavaScript, TypeScript,
	Java, Cpp, C, CSharp, Go, Rust, PHP, Ruby, Swift, Kotlin, SQL, YAML,
}

var extensions = map[Language]string{
	JavaScript: "js",
	TypeScript: "ts",
	Python:     "py",
	Java:       "java",
	Cpp:        "cpp",
	C:          "c",
	CSharp:     "cs",
	Go:         "go",
	Rust:       "rs",
	PHP:        "php",
	Ruby:       "rb",
	Swift:      "swift",
	Kotlin:     "kt",
	HTML:       "html",
	XML:        "xml",
	CSS:        "css",
	SQL:        "sql",
	JSON:       "json",
	YAML:       "yaml",
	Bash:       "sh",
}

// Extension returns the file extension used when saving code of this
// language, "txt" when there is none.
func (l Language) Extension() string {
	if ext, ok := extensions[l]; ok {
		return ext
	}
	return "txt"
}

// Lexer returns the chroma lexer name for l.
func (l Language) Lexer() string {
	switch l {
	case PlainText, "":
		return "plaintext"
	case CSharp:
		return "c#"
	case Cpp:
		return "c++"
	default:
		return string(l)
	}
}

func (l Language) Valid() bool {
	for _, v := range All {
		if v == l {
			return true
		}
	}
	return false
}
