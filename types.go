package lattice

// Location represents a source code position range.
type Location struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Reference is a single occurrence of a searched symbol.
type Reference struct {
	Location
	Context string // surrounding source text, when the producer captured it
}

// SearchedFile is a file plus the ordered reference locations found within
// it. Each contributing search produces at most one SearchedFile per file;
// ownership passes to the result callback.
type SearchedFile struct {
	Path       string
	References []Reference
}

// Entity is a named, resolvable program element that can be the target of a
// reference search: a type, function, method, field, or module-level
// variable.
type Entity struct {
	Name string
	Kind string
	Decl *Location // declaration site, when known
}

// LocalVariable identifies a variable local to one file, together with the
// span of its declaring scope.
type LocalVariable struct {
	Name  string
	File  string
	Scope Location
}
