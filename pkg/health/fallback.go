package health

import "github.com/cuemby/opsboard/pkg/types"

// The two fallback tables share services and levels and differ only in
// wording, so an operator can tell "probe ran, found nothing" apart from
// "probe or parser broke".

var noDataTable = [...]types.HealthRecord{
	{ServiceName: "QuickBooks API - No Data Found", Level: types.LevelWarning},
	{ServiceName: "GHL CRM - No Data Found", Level: types.LevelWarning},
	{ServiceName: "Meta Ads API - No Data Found", Level: types.LevelWarning},
	{ServiceName: "OpenClaw Gateway - No Data Found", Level: types.LevelIssue},
}

var checkFailedTable = [...]types.HealthRecord{
	{ServiceName: "QuickBooks API - Check Failed", Level: types.LevelWarning},
	{ServiceName: "GHL CRM - Check Failed", Level: types.LevelWarning},
	{ServiceName: "Meta Ads API - Check Failed", Level: types.LevelWarning},
	{ServiceName: "OpenClaw Gateway - Check Failed", Level: types.LevelIssue},
}

// NoDataFallback returns a fresh copy of the table used when the probe
// output mentions none of the known services
func NoDataFallback() []types.HealthRecord {
	out := make([]types.HealthRecord, len(noDataTable))
	copy(out, noDataTable[:])
	return out
}

// CheckFailedFallback returns a fresh copy of the table used when the
// probe could not run or its output could not be parsed
func CheckFailedFallback() []types.HealthRecord {
	out := make([]types.HealthRecord, len(checkFailedTable))
	copy(out, checkFailedTable[:])
	return out
}
