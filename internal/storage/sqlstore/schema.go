package sqlstore

// schemaStatements run on open. The column types are understood by both
// SQLite and Postgres; list-valued fields are stored as JSON text.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS cheese_types (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		color      TEXT NOT NULL DEFAULT '',
		protocol   TEXT NOT NULL DEFAULT '[]',
		sales      TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS productions (
		id                TEXT PRIMARY KEY,
		date              TEXT NOT NULL,
		production_number TEXT NOT NULL,
		cheeses           TEXT NOT NULL DEFAULT '[]',
		total_liters      DOUBLE PRECISION NOT NULL DEFAULT 0,
		notes             TEXT NOT NULL DEFAULT '',
		created_at        TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS activities (
		id              TEXT PRIMARY KEY,
		title           TEXT NOT NULL,
		description     TEXT NOT NULL DEFAULT '',
		date            TEXT NOT NULL,
		type            TEXT NOT NULL,
		recurrence      TEXT NOT NULL DEFAULT '',
		production_id   TEXT NOT NULL DEFAULT '',
		cheese_type_id  TEXT NOT NULL DEFAULT '',
		completed       BOOLEAN NOT NULL DEFAULT FALSE,
		completed_dates TEXT NOT NULL DEFAULT '[]',
		created_at      TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_productions_date ON productions(date)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_date ON activities(date)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_production ON activities(production_id)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_cheese_type ON activities(cheese_type_id)`,
}

const (
	upsertCheeseType = `
		INSERT INTO cheese_types (id, name, color, protocol, sales, created_at)
		VALUES (:id, :name, :color, :protocol, :sales, :created_at)
		ON CONFLICT(id) DO UPDATE SET
			name     = excluded.name,
			color    = excluded.color,
			protocol = excluded.protocol,
			sales    = excluded.sales`

	upsertProduction = `
		INSERT INTO productions (id, date, production_number, cheeses, total_liters, notes, created_at)
		VALUES (:id, :date, :production_number, :cheeses, :total_liters, :notes, :created_at)
		ON CONFLICT(id) DO UPDATE SET
			date              = excluded.date,
			production_number = excluded.production_number,
			cheeses           = excluded.cheeses,
			total_liters      = excluded.total_liters,
			notes             = excluded.notes`

	upsertActivity = `
		INSERT INTO activities (id, title, description, date, type, recurrence,
			production_id, cheese_type_id, completed, completed_dates, created_at)
		VALUES (:id, :title, :description, :date, :type, :recurrence,
			:production_id, :cheese_type_id, :completed, :completed_dates, :created_at)
		ON CONFLICT(id) DO UPDATE SET
			title           = excluded.title,
			description     = excluded.description,
			date            = excluded.date,
			type            = excluded.type,
			recurrence      = excluded.recurrence,
			production_id   = excluded.production_id,
			cheese_type_id  = excluded.cheese_type_id,
			completed       = excluded.completed,
			completed_dates = excluded.completed_dates`
)
