// Package sqlite implements the SQLite record store for karte.
package sqlite

// Schema DDL for all tables. Every statement is idempotent so Initialize can
// run on each start.
const (
	createProjects = `CREATE TABLE IF NOT EXISTS projects (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    client TEXT,
    status TEXT NOT NULL DEFAULT '診察中',
    priority TEXT NOT NULL DEFAULT '中',
    owner TEXT,
    start_date TEXT,
    due_date TEXT,
    description TEXT,
    archived INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createNotes = `CREATE TABLE IF NOT EXISTS notes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id INTEGER NOT NULL,
    note_date TEXT NOT NULL,
    author TEXT,
    content TEXT NOT NULL,
    next_action TEXT,
    progress INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (project_id) REFERENCES projects(id)
);`

	createResources = `CREATE TABLE IF NOT EXISTS resources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id INTEGER,
    title TEXT,
    kind TEXT NOT NULL DEFAULT 'Other',
    url TEXT,
    local_path TEXT,
    tags TEXT,
    note TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (project_id) REFERENCES projects(id)
);`

	createIdeas = `CREATE TABLE IF NOT EXISTS ideas (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id INTEGER,
    title TEXT,
    url TEXT,
    image_path TEXT,
    note TEXT,
    tags TEXT,
    pinned INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (project_id) REFERENCES projects(id)
);`
)

// Index DDL for the listing filters.
const (
	idxProjectsStatus   = `CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status);`
	idxProjectsUpdated  = `CREATE INDEX IF NOT EXISTS idx_projects_updated ON projects(updated_at);`
	idxNotesProject     = `CREATE INDEX IF NOT EXISTS idx_notes_project ON notes(project_id);`
	idxResourcesProject = `CREATE INDEX IF NOT EXISTS idx_resources_project ON resources(project_id);`
	idxIdeasProject     = `CREATE INDEX IF NOT EXISTS idx_ideas_project ON ideas(project_id);`
	idxIdeasPinned      = `CREATE INDEX IF NOT EXISTS idx_ideas_pinned ON ideas(pinned);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createProjects,
	createNotes,
	createResources,
	createIdeas,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxProjectsStatus,
	idxProjectsUpdated,
	idxNotesProject,
	idxResourcesProject,
	idxIdeasProject,
	idxIdeasPinned,
}

// dropDDL drops the tables children first, so foreign keys never block.
var dropDDL = []string{
	`DROP TABLE IF EXISTS notes;`,
	`DROP TABLE IF EXISTS resources;`,
	`DROP TABLE IF EXISTS ideas;`,
	`DROP TABLE IF EXISTS projects;`,
}
