package types

// Standard table names for Store.GetTable.
const (
	TableProjects  = "projects"
	TableNotes     = "notes"
	TableResources = "resources"
	TableIdeas     = "ideas"
)

// StandardTableNames lists all standard table names in dependency order.
// Projects come first because the other tables reference them.
var StandardTableNames = []string{
	TableProjects,
	TableNotes,
	TableResources,
	TableIdeas,
}

// IsTableName reports whether name is one of the standard table names.
func IsTableName(name string) bool {
	for _, n := range StandardTableNames {
		if n == name {
			return true
		}
	}
	return false
}
