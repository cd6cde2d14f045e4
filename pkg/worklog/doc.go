// Package worklog provides the active and completed task lists of a status
// snapshot. Completed entries are time-gated: each appears only once the
// local hour reaches its threshold.
package worklog
