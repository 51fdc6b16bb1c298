package model

// VersionInfo describes the running application and its schema.
type VersionInfo struct {
	AppVersion       string
	DbVersion        string
	Features         map[string]bool
	MigrationNeeded  bool
	MigrationMessage *string
}
