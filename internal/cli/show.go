package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/incidentlens/internal/incident"
)

// Execute implements the go-flags Commander interface for ShowCommand.
func (c *ShowCommand) Execute(args []string) error {
	if c.Case == "" && len(args) > 0 {
		c.Case = args[0]
	}
	if c.Case == "" {
		return fmt.Errorf("--case is required for show command")
	}

	a, err := openApp(c.globals)
	if err != nil {
		return err
	}
	defer a.Close()

	return c.run(context.Background(), a)
}

// run prints the incident with the requested case number (used by tests).
func (c *ShowCommand) run(ctx context.Context, a *app) error {
	r, err := a.store.GetIncident(ctx, c.Case)
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		return writeJSON(toIncidentJSON(*r))
	}
	c.outputFull(r)
	return nil
}

func (c *ShowCommand) outputFull(r *incident.Record) {
	fmt.Println(r.CaseNumber)
	fmt.Printf("ID:          %s\n", r.ID)
	fmt.Printf("Type:        %s\n", displayCategory(r.IncidentType))
	if r.Description != "" {
		fmt.Printf("Description: %s\n", r.Description)
	}
	fmt.Printf("Location:    %s\n", displayCategory(r.LocationType))
	if r.HasTimestamp() {
		fmt.Printf("Occurred:    %s\n", r.OccurredAt.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Println("Occurred:    unknown")
	}
	if r.HasYear() {
		fmt.Printf("Year:        %d\n", r.Year)
	}
	fmt.Printf("Arrest:      %s\n", yesNo(r.Arrest))
	fmt.Printf("Domestic:    %s\n", yesNo(r.Domestic))
	if r.Block != "" {
		fmt.Printf("Block:       %s\n", r.Block)
	}
	if r.Beat != "" || r.District != "" {
		fmt.Printf("Beat:        %s (district %s)\n", r.Beat, r.District)
	}
	if r.HasCoordinates() {
		fmt.Printf("Coordinates: %.6f, %.6f\n", r.Latitude, r.Longitude)
	} else {
		fmt.Println("Coordinates: none")
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
