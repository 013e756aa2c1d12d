// Package runlog records indexing runs. Every run is appended once as
// a JSON record with a plain-text twin, named by project and
// timestamp, and is never modified afterwards. The scan planner reads
// the newest completed run to decide how much scanning the next run
// needs; old logs are pruned by age.
package runlog
