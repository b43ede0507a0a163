package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// RangeFlags selects the filter key and the range applied before aggregating.
type RangeFlags struct {
	Mode string `long:"mode" description:"Filter on date or year (default from config)" choice:"date" choice:"year"`
	From string `long:"from" description:"Lower bound: YYYY-MM-DD in date mode, YYYY in year mode"`
	To   string `long:"to" description:"Upper bound: YYYY-MM-DD in date mode, YYYY in year mode"`
}

// ImportCommand loads a CSV export into the local incident cache.
type ImportCommand struct {
	CSV           string `long:"csv" description:"Path to the CSV export (default from config)"`
	ArrestLiteral string `long:"arrest-literal" description:"Exact text that marks Arrest/Domestic true"`
	DateLayout    string `long:"date-layout" description:"Go time layout of the Date column"`
	MinYear       int    `long:"min-year" description:"Drop rows before this year"`
	MaxYear       int    `long:"max-year" description:"Drop rows after this year"`
	RequireCoords bool   `long:"require-coords" description:"Drop rows without coordinates"`
	Replace       bool   `long:"replace" description:"Delete previously imported incidents first"`

	globals *GlobalFlags
	version string
}

// StatusCommand shows cache statistics and configuration summary.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// SummaryCommand prints both distributions and the heat map for a range.
type SummaryCommand struct {
	RangeFlags
	Top int `long:"top" description:"Heat map categories per axis (0 = all, default from config)" default:"-1"`

	globals *GlobalFlags
	version string
}

// DistCommand prints one categorical distribution for a range.
type DistCommand struct {
	RangeFlags
	By    string `long:"by" description:"Category to group on" choice:"type" choice:"location" default:"type"`
	Limit int    `long:"limit" description:"Maximum rows (0 = all)" default:"0"`

	globals *GlobalFlags
	version string
}

// ListCommand prints the records inside a range.
type ListCommand struct {
	RangeFlags
	Limit  int `long:"limit" description:"Maximum results" default:"20"`
	Offset int `long:"offset" description:"Skip first N results" default:"0"`

	globals *GlobalFlags
	version string
}

// ShowCommand prints one stored incident.
type ShowCommand struct {
	Case string `long:"case" description:"Case number (required)"`

	globals *GlobalFlags
	version string
}

// PruneCommand deletes stored incidents outside a year window or without coordinates.
type PruneCommand struct {
	MinYear       int  `long:"min-year" description:"Delete incidents before this year"`
	MaxYear       int  `long:"max-year" description:"Delete incidents after this year"`
	MissingCoords bool `long:"missing-coords" description:"Delete incidents without coordinates"`
	DryRun        bool `long:"dry-run" description:"Show what would be pruned without deleting"`

	globals *GlobalFlags
	version string
}

// PurgeCommand deletes ALL cached data with safety confirmation.
type PurgeCommand struct {
	All   bool `long:"all" description:"Required flag to confirm purge intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
}
