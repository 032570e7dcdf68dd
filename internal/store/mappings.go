package store

// ExerciseModule binds an exercise in one language to a project module.
type ExerciseModule struct {
	ExerciseID int64  `json:"exercise_id"`
	Language   string `json:"language"`
	ModuleName string `json:"module_name"`
}

// SetExerciseModule upserts the module used for an exercise in a language.
func (s *Store) SetExerciseModule(exerciseID int64, language, moduleName string) error {
	_, err := s.db.Exec(
		`INSERT INTO exercise_modules (exercise_id, language, module_name) VALUES (?, ?, ?)
		 ON CONFLICT(exercise_id, language) DO UPDATE SET module_name = ?`,
		exerciseID, language, moduleName, moduleName,
	)
	return err
}

// RemoveExerciseModules deletes all module mappings of an exercise.
func (s *Store) RemoveExerciseModules(exerciseID int64) error {
	_, err := s.db.Exec(`DELETE FROM exercise_modules WHERE exercise_id = ?`, exerciseID)
	return err
}

// ExerciseModules returns the language→module mapping of an exercise.
// A nil map means the exercise has no mapping.
func (s *Store) ExerciseModules(exerciseID int64) (map[string]string, error) {
	rows, err := s.db.Query(
		`SELECT language, module_name FROM exercise_modules WHERE exercise_id = ?`, exerciseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var modules map[string]string
	for rows.Next() {
		var lang, name string
		if err := rows.Scan(&lang, &name); err != nil {
			return nil, err
		}
		if modules == nil {
			modules = make(map[string]string)
		}
		modules[lang] = name
	}
	return modules, rows.Err()
}

// ListExerciseModules returns every stored mapping.
func (s *Store) ListExerciseModules() ([]ExerciseModule, error) {
	rows, err := s.db.Query(
		`SELECT exercise_id, language, module_name FROM exercise_modules ORDER BY exercise_id, language`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var mappings []ExerciseModule
	for rows.Next() {
		var m ExerciseModule
		if err := rows.Scan(&m.ExerciseID, &m.Language, &m.ModuleName); err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}
