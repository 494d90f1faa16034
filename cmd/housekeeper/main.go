// Housekeeper runs scheduled maintenance for a content platform's version
// history: it empties expired items from the recycle bin and trims page
// and object version histories to the configured length.
//
// Usage:
//
//	# Run the scheduler and admin server
//	housekeeper run --config housekeeper.yaml
//
//	# Run one task now
//	housekeeper task run clear-recycle-bin
//
//	# Run with different task data
//	housekeeper task run clear-recycle-bin --data '{"ClearPages": true, "ClearPagesOlderThanDays": 7}'
//
//	# Show recent event log entries
//	housekeeper events --limit 20
//
//	# Create the schema and load demo data
//	housekeeper db init && housekeeper db seed
package main

import "os"

func main() {
	os.Exit(Execute())
}
