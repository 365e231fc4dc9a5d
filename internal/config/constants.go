package config

const (
	ProviderFixture     = "fixture"
	ProviderScoreServer = "scoreserver"

	ArchiveFS       = "fs"
	ArchivePostgres = "postgres"
)
