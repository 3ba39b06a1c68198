package store

// Project is one row of the projects table.
type Project struct {
	ID   int64
	Name string
	Root string
}

// File is one row of the files table.
type File struct {
	ID        int64
	ProjectID int64
	Path      string
	Language  string
	Hash      string
}

// TypeDef is one row of the type_defs table.
type TypeDef struct {
	ID        int64
	ProjectID int64
	FileID    int64
	Name      string
	Qualified string
	Kind      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// BaseType is one row of the base_types table.
type BaseType struct {
	ID        int64
	TypeDefID int64
	Name      string
}
