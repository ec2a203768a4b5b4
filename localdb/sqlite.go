package localdb

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"fastboard/model"
)

const schema = `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		logo TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		due_date TEXT,
		progress INTEGER NOT NULL DEFAULT 0,
		position INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'todo',
		priority TEXT NOT NULL DEFAULT 'medium',
		label TEXT NOT NULL DEFAULT '',
		date TEXT,
		assigned_to TEXT NOT NULL DEFAULT '',
		owner TEXT NOT NULL DEFAULT '',
		completed INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_tasks_project_id ON tasks(project_id);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
`

// DB wraps the SQLite connection.
type DB struct {
	db *sql.DB
}

// Open creates or opens the database at path and initializes the schema.
// Opening an existing database is a no-op for the schema.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error { return d.db.Close() }

// Projects returns all projects in their stored order, without tasks.
func (d *DB) Projects() ([]model.Project, error) {
	rows, err := d.db.Query(`
		SELECT id, name, logo, color, due_date, progress
		FROM projects ORDER BY position, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (d *DB) GetProject(id string) (model.Project, error) {
	row := d.db.QueryRow(`
		SELECT id, name, logo, color, due_date, progress
		FROM projects WHERE id = ?
	`, id)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return model.Project{}, ErrNotFound
	}
	return p, err
}

// SaveProject upserts one project, appending it to the ordering when new.
func (d *DB) SaveProject(p model.Project) error {
	_, err := d.db.Exec(`
		INSERT INTO projects (id, name, logo, color, due_date, progress, position)
		VALUES (?, ?, ?, ?, ?, ?,
			COALESCE((SELECT position FROM projects WHERE id = ?),
				(SELECT COALESCE(MAX(position), -1) + 1 FROM projects)))
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			logo = excluded.logo,
			color = excluded.color,
			due_date = excluded.due_date,
			progress = excluded.progress
	`, p.ID, p.Name, p.Logo, p.Color, timeText(p.DueDate), p.Progress, p.ID)
	return err
}

// SaveProjects writes every project with its slice index as the stored
// position, replacing the previous ordering.
func (d *DB) SaveProjects(ps []model.Project) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, p := range ps {
		_, err := tx.Exec(`
			INSERT INTO projects (id, name, logo, color, due_date, progress, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				logo = excluded.logo,
				color = excluded.color,
				due_date = excluded.due_date,
				progress = excluded.progress,
				position = excluded.position
		`, p.ID, p.Name, p.Logo, p.Color, timeText(p.DueDate), p.Progress, i)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteProjectCascade removes the project and all its tasks in one
// transaction. Deleting an unknown project is a no-op.
func (d *DB) DeleteProjectCascade(projectID string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tasks WHERE project_id = ?", projectID); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM projects WHERE id = ?", projectID); err != nil {
		return err
	}
	return tx.Commit()
}

// Tasks returns all tasks across all projects.
func (d *DB) Tasks() ([]model.Task, error) {
	return d.queryTasks(`
		SELECT id, project_id, title, description, status, priority, label,
			date, assigned_to, owner, completed
		FROM tasks ORDER BY id
	`)
}

// TasksByProject returns the tasks referencing one project.
func (d *DB) TasksByProject(projectID string) ([]model.Task, error) {
	return d.queryTasks(`
		SELECT id, project_id, title, description, status, priority, label,
			date, assigned_to, owner, completed
		FROM tasks WHERE project_id = ? ORDER BY id
	`, projectID)
}

func (d *DB) GetTask(id string) (model.Task, error) {
	row := d.db.QueryRow(`
		SELECT id, project_id, title, description, status, priority, label,
			date, assigned_to, owner, completed
		FROM tasks WHERE id = ?
	`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return model.Task{}, ErrNotFound
	}
	return t, err
}

func (d *DB) SaveTask(t model.Task) error {
	_, err := d.db.Exec(`
		INSERT INTO tasks (id, project_id, title, description, status, priority,
			label, date, assigned_to, owner, completed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project_id = excluded.project_id,
			title = excluded.title,
			description = excluded.description,
			status = excluded.status,
			priority = excluded.priority,
			label = excluded.label,
			date = excluded.date,
			assigned_to = excluded.assigned_to,
			owner = excluded.owner,
			completed = excluded.completed
	`, t.ID, t.ProjectID, t.Title, t.Description, t.Status, t.Priority,
		t.Label, timeText(t.Date), t.AssignedTo, t.Owner, t.Completed)
	return err
}

// DeleteTask removes a task by id; unknown ids are a no-op.
func (d *DB) DeleteTask(id string) error {
	_, err := d.db.Exec("DELETE FROM tasks WHERE id = ?", id)
	return err
}

// GetSetting returns the value for key, or "" when unset.
func (d *DB) GetSetting(key string) (string, error) {
	var value string
	err := d.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (d *DB) SaveSetting(key, value string) error {
	_, err := d.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// ClearAll empties all three tables in one transaction.
func (d *DB) ClearAll() error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"tasks", "projects", "settings"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (model.Project, error) {
	var p model.Project
	var dueDate sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &p.Logo, &p.Color, &dueDate, &p.Progress); err != nil {
		return model.Project{}, err
	}
	p.DueDate = parseTimeText(dueDate)
	return p, nil
}

func scanTask(row scanner) (model.Task, error) {
	var t model.Task
	var date sql.NullString
	err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status,
		&t.Priority, &t.Label, &date, &t.AssignedTo, &t.Owner, &t.Completed)
	if err != nil {
		return model.Task{}, err
	}
	t.Date = parseTimeText(date)
	return t, nil
}

func (d *DB) queryTasks(query string, args ...any) ([]model.Task, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func timeText(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimeText(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil
	}
	return &t
}
