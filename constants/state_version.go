package constants

// State version constants for backward compatibility.
//
// Version History:
//   - Version 0: bookmarks only, a single replication_key_value per stream
//   - Version 1: Current Version (per partition bookmarks and progress markers for resumable pages)
const (
	LatestStateVersion = 1
)

