// Package planner decides how much scanning the next indexing run
// needs, from the age of the latest completed run log and whether the
// metadata store has entries. The verdict only avoids redundant full
// tree walks; hash-based change detection during the run remains the
// source of truth.
package planner
