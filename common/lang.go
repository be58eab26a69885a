package common

// Lang identifies one of the languages the translator can read or emit.
type Lang int

// Enumeration of supported languages.
const (
	LangUnknown Lang = iota
	LangC            // procedural target/source
	LangJava         // object-oriented
	LangCpp          // object-oriented
)

func (l Lang) String() string {
	switch l {
	case LangC:
		return "c"
	case LangJava:
		return "java"
	case LangCpp:
		return "cpp"
	}

	return "unknown"
}

// IsOO returns whether the language has first-class classes.
func (l Lang) IsOO() bool {
	return l == LangJava || l == LangCpp
}

// HasManagedMap returns whether the language ships a first-class associative
// container.  Procedural targets lacking one get the emulated container.
func (l Lang) HasManagedMap() bool {
	return l != LangC
}

// ParseLang converts a language name into a Lang.
func ParseLang(name string) Lang {
	switch name {
	case "c":
		return LangC
	case "java":
		return LangJava
	case "cpp", "c++", "cxx":
		return LangCpp
	}

	return LangUnknown
}

// LangForExt infers a language from a source file extension.
func LangForExt(ext string) Lang {
	switch ext {
	case ".c", ".h":
		return LangC
	case ".java":
		return LangJava
	case ".cpp", ".cc", ".cxx", ".hpp":
		return LangCpp
	}

	return LangUnknown
}

// OutputExt is the file extension used for emitted output in each language.
func OutputExt(l Lang) string {
	switch l {
	case LangC:
		return ".c"
	case LangJava:
		return ".java"
	case LangCpp:
		return ".cpp"
	}

	return ".out"
}
