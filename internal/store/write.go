package store

import "fmt"

// InsertProject inserts a project and returns its ID. An existing project
// with the same name is replaced wholesale.
func (s *Store) InsertProject(p *Project) (int64, error) {
	var existing int64
	err := s.db.QueryRow("SELECT id FROM projects WHERE name = ?", p.Name).Scan(&existing)
	if err == nil {
		if err := s.DeleteProjectData(existing); err != nil {
			return 0, fmt.Errorf("replace project %s: %w", p.Name, err)
		}
	}

	res, err := s.db.Exec(
		"INSERT INTO projects (name, root) VALUES (?, ?)", p.Name, p.Root)
	if err != nil {
		return 0, fmt.Errorf("insert project: %w", err)
	}
	return res.LastInsertId()
}

// InsertProjectRef records that project ID may resolve types from ref.
func (s *Store) InsertProjectRef(projectID, refProjectID int64) error {
	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO project_refs (project_id, ref_project_id) VALUES (?, ?)",
		projectID, refProjectID)
	if err != nil {
		return fmt.Errorf("insert project ref: %w", err)
	}
	return nil
}

// InsertFile inserts a file row and returns its ID.
func (s *Store) InsertFile(f *File) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO files (project_id, path, language, hash) VALUES (?, ?, ?, ?)",
		f.ProjectID, f.Path, f.Language, f.Hash)
	if err != nil {
		return 0, fmt.Errorf("insert file: %w", err)
	}
	return res.LastInsertId()
}

// InsertTypeDef inserts a type definition row and returns its ID.
func (s *Store) InsertTypeDef(d *TypeDef) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO type_defs
		   (project_id, file_id, name, qualified, kind, start_line, start_col, end_line, end_col)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ProjectID, d.FileID, d.Name, d.Qualified, d.Kind,
		d.StartLine, d.StartCol, d.EndLine, d.EndCol)
	if err != nil {
		return 0, fmt.Errorf("insert type def: %w", err)
	}
	return res.LastInsertId()
}

// InsertBaseType records one declared base type for a definition.
func (s *Store) InsertBaseType(typeDefID int64, name string) error {
	_, err := s.db.Exec(
		"INSERT INTO base_types (type_def_id, name) VALUES (?, ?)", typeDefID, name)
	if err != nil {
		return fmt.Errorf("insert base type: %w", err)
	}
	return nil
}

// Projects returns all projects ordered by name.
func (s *Store) Projects() ([]*Project, error) {
	rows, err := s.db.Query("SELECT id, name, root FROM projects ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var out []*Project
	for rows.Next() {
		p := &Project{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Root); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ProjectRefs returns the directed reference edges as pairs of project IDs.
func (s *Store) ProjectRefs() (map[int64][]int64, error) {
	rows, err := s.db.Query("SELECT project_id, ref_project_id FROM project_refs")
	if err != nil {
		return nil, fmt.Errorf("query project refs: %w", err)
	}
	defer rows.Close()

	refs := make(map[int64][]int64)
	for rows.Next() {
		var from, to int64
		if err := rows.Scan(&from, &to); err != nil {
			return nil, fmt.Errorf("scan project ref: %w", err)
		}
		refs[from] = append(refs[from], to)
	}
	return refs, rows.Err()
}

// FilesByProject returns a project's files ordered by path.
func (s *Store) FilesByProject(projectID int64) ([]*File, error) {
	rows, err := s.db.Query(
		"SELECT id, project_id, path, language, hash FROM files WHERE project_id = ? ORDER BY path",
		projectID)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	var out []*File
	for rows.Next() {
		f := &File{}
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.Path, &f.Language, &f.Hash); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// TypeDefsByProject returns a project's type definitions ordered by
// qualified name.
func (s *Store) TypeDefsByProject(projectID int64) ([]*TypeDef, error) {
	rows, err := s.db.Query(
		`SELECT id, project_id, file_id, name, qualified, kind,
		        start_line, start_col, end_line, end_col
		 FROM type_defs WHERE project_id = ? ORDER BY qualified`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("query type defs: %w", err)
	}
	defer rows.Close()

	var out []*TypeDef
	for rows.Next() {
		d := &TypeDef{}
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.FileID, &d.Name, &d.Qualified, &d.Kind,
			&d.StartLine, &d.StartCol, &d.EndLine, &d.EndCol); err != nil {
			return nil, fmt.Errorf("scan type def: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// BaseTypesByDef returns the declared base-type names for a definition, in
// declaration order.
func (s *Store) BaseTypesByDef(typeDefID int64) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT name FROM base_types WHERE type_def_id = ? ORDER BY id", typeDefID)
	if err != nil {
		return nil, fmt.Errorf("query base types: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan base type: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
