package code_group

import (
	"github.com/src-d/enry/v2"

	"github.com/josehu07/codetective/utils"
)

// LanguageMap is the static allow-list of recognized code file extensions
// (with leading dot) mapped to language display names. Anything absent is
// treated as "not code" everywhere files are discovered: direct uploads,
// archive scans, and GitHub repo traversal.
var LanguageMap = map[string]string{
	".asm":   "Assembly",
	".bash":  "Shell",
	".c":     "C",
	".cc":    "C++",
	".clj":   "Clojure",
	".cpp":   "C++",
	".cs":    "C#",
	".css":   "CSS",
	".cu":    "CUDA",
	".dart":  "Dart",
	".el":    "Emacs Lisp",
	".erl":   "Erlang",
	".ex":    "Elixir",
	".exs":   "Elixir",
	".f90":   "Fortran",
	".go":    "Go",
	".h":     "C",
	".hpp":   "C++",
	".hs":    "Haskell",
	".html":  "HTML",
	".java":  "Java",
	".jl":    "Julia",
	".js":    "JavaScript",
	".jsx":   "JSX",
	".kt":    "Kotlin",
	".lua":   "Lua",
	".m":     "Objective-C",
	".ml":    "OCaml",
	".nim":   "Nim",
	".php":   "PHP",
	".pl":    "Perl",
	".py":    "Python",
	".r":     "R",
	".rb":    "Ruby",
	".rs":    "Rust",
	".s":     "Assembly",
	".scala": "Scala",
	".scm":   "Scheme",
	".sh":    "Shell",
	".sql":   "SQL",
	".swift": "Swift",
	".sv":    "SystemVerilog",
	".tex":   "TeX",
	".ts":    "TypeScript",
	".tsx":   "TSX",
	".v":     "Verilog",
	".vb":    "Visual Basic",
	".vhd":   "VHDL",
	".vim":   "Vim Script",
	".vue":   "Vue",
	".zig":   "Zig",
	".zsh":   "Shell",
}

// IsCodeExtension reports whether an extension (with leading dot) belongs to
// the recognized code-extension set.
func IsCodeExtension(ext string) bool {
	_, ok := LanguageMap[ext]
	return ok
}

// LangNameOf returns the display name for a recognized extension, applying
// the table cut-off. Unrecognized or missing extensions render as a dash.
func LangNameOf(ext string, ok bool) string {
	if !ok {
		return "-"
	}
	lang, found := LanguageMap[ext]
	if !found {
		return "-"
	}
	return utils.LangDisplay(lang)
}

// ContentLangName guesses the language of raw pasted content, for files that
// carry the synthetic textbox extension and thus have no extension to go by.
func ContentLangName(content string) string {
	lang := enry.GetLanguage("pasted", []byte(content))
	if lang == "" {
		return "-"
	}
	return utils.LangDisplay(lang)
}

// extensionOf parses the dot-suffixed extension out of a path, mirroring how
// candidate files are classified at every discovery site. The boolean is
// false when the path has no extension at all.
func extensionOf(path string) (string, bool) {
	for i := len(path) - 1; i >= 0; i-- {
		switch path[i] {
		case '.':
			if i == len(path)-1 {
				return "", false
			}
			return path[i:], true
		case '/':
			return "", false
		}
	}
	return "", false
}
