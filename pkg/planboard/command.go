package planboard

// Command is a discrete application operation with its specific options.
// Implementations carry their parameters as struct fields; [Parse] builds
// them from the command line and [Main] dispatches to the matching method
// on [App].
type Command interface {
	// Name returns the command identifier used for routing. It matches
	// the CLI sub-command name.
	Name() string
}

// MigrateCommand initializes or updates the database schema to match the
// data model: tables and indexes for PostgreSQL (GORM AutoMigrate), index
// definitions for SurrealDB. It is safe to run repeatedly and never drops
// data. Run it before first startup and after model changes.
type MigrateCommand struct {
	// All configuration comes from App.Config.
}

func (c *MigrateCommand) Name() string {
	return "migrate"
}

// RunCommand starts the HTTP server: the REST API for projects, board
// columns, tasks, members, calendar, reports, and notifications, plus the
// periodic deadline reminder sweep. The server runs until the context is
// cancelled and then shuts down gracefully.
type RunCommand struct {
	// All configuration comes from App.Config.
}

func (c *RunCommand) Name() string {
	return "run"
}
