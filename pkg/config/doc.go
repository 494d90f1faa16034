// Package config provides configuration management for housekeeper.
//
// Configuration is read from a YAML file, completed with defaults,
// overridden from the environment and validated:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("housekeeper.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention HOUSEKEEPER_SECTION_FIELD:
//
//   - HOUSEKEEPER_DATABASE_DSN overrides database.dsn
//   - HOUSEKEEPER_HISTORY_KEEP_VERSIONS overrides history.keep_versions
//   - HOUSEKEEPER_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Example
//
//	database:
//	  backend: sqlite
//	  dsn: data/housekeeper.db
//	history:
//	  keep_versions: 20
//	tasks:
//	  - name: clear-recycle-bin
//	    type: ClearOldDataFromRecycleBin
//	    schedule: "0 3 * * *"
//	    data: '{"ClearObjects": true, "ClearObjectsOlderThanDays": 30}'
//
// A Watcher reloads the file on change so task schedules can be updated
// without a restart.
package config
