package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Import  *ImportCommand
	Status  *StatusCommand
	Summary *SummaryCommand
	Dist    *DistCommand
	List    *ListCommand
	Show    *ShowCommand
	Prune   *PruneCommand
	Purge   *PurgeCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "incidentlens"
	parser.LongDescription = "Explore public-safety incident exports: filter by date or year, then inspect type and location distributions."

	cmds := &commands{
		Import:  &ImportCommand{globals: &globals, version: version},
		Status:  &StatusCommand{globals: &globals, version: version},
		Summary: &SummaryCommand{globals: &globals, version: version},
		Dist:    &DistCommand{globals: &globals, version: version},
		List:    &ListCommand{globals: &globals, version: version},
		Show:    &ShowCommand{globals: &globals, version: version},
		Prune:   &PruneCommand{globals: &globals, version: version},
		Purge:   &PurgeCommand{globals: &globals, version: version},
	}

	parser.AddCommand("import", "Import a CSV export", "Parse a CSV incident export and store its records in the local cache.", cmds.Import)
	parser.AddCommand("status", "Show cache statistics", "Show cache statistics, import history, and configuration summary.", cmds.Status)
	parser.AddCommand("summary", "Show the dashboard for a range", "Show both categorical distributions and the location by type heat map for a date or year range.", cmds.Summary)
	parser.AddCommand("dist", "Show one distribution", "Show the incident type or location type distribution for a date or year range.", cmds.Dist)
	parser.AddCommand("list", "List incidents in a range", "List cached incidents whose date or year falls inside a range.", cmds.List)
	parser.AddCommand("show", "Print one incident", "Print every stored field of one incident by case number.", cmds.Show)
	parser.AddCommand("prune", "Delete incidents outside a window", "Delete cached incidents outside a year window or without coordinates.", cmds.Prune)
	parser.AddCommand("purge", "Delete ALL cached data", "Delete ALL cached incidents and imports. Destructive operation with safety prompt.", cmds.Purge)

	return parser, &globals, cmds
}

// Run is the main entry point for the incidentlens CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("incidentlens %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
