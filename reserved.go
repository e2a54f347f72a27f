package pegls

// ReservedWords are the JavaScript reserved words Peggy refuses as labels,
// since labels become variables in generated code.
var ReservedWords = []string{
	// Keywords
	"break",
	"case",
	"catch",
	"class",
	"const",
	"continue",
	"debugger",
	"default",
	"delete",
	"do",
	"else",
	"export",
	"extends",
	"finally",
	"for",
	"function",
	"if",
	"import",
	"in",
	"instanceof",
	"new",
	"return",
	"super",
	"switch",
	"this",
	"throw",
	"try",
	"typeof",
	"var",
	"void",
	"while",
	"with",

	// Special constants
	"null",
	"true",
	"false",

	// Future reserved words
	"enum",

	// Strict mode
	"implements",
	"interface",
	"let",
	"package",
	"private",
	"protected",
	"public",
	"static",
	"yield",

	// Module code
	"await",

	// Peggy runtime
	"arguments",
	"eval",
}

func reservedSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}

	return set
}
