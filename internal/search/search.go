package search

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bbernstein/airquality/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	SearchPrompt = "Search for stations in a city: "
	SelectPrompt = "Select station to plot(id): "
)

// Filter keeps the stations whose name contains query, case-sensitively.
// It matches on the station name, not on the administrative city.
func Filter(stations []*models.Station, query string) []*models.Station {
	var matches []*models.Station
	for _, station := range stations {
		if strings.Contains(station.Name(), query) {
			matches = append(matches, station)
		}
	}
	return matches
}

// Select returns the first station whose id equals the parsed input
func Select(stations []*models.Station, input string) (*models.Station, error) {
	id, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return nil, NewInvalidSelectionError(input, err)
	}
	for _, station := range stations {
		if station.ID() == id {
			return station, nil
		}
	}
	return nil, NewInvalidSelectionError(input, nil)
}

// Flow runs the interactive search: query, table, selection
type Flow struct {
	console *Console
}

func NewFlow(console *Console) *Flow {
	return &Flow{console: console}
}

// Run asks for a query, lists the matches and asks for an id. It returns a
// *NoMatchError or *InvalidSelectionError for the two user-facing dead ends.
func (f *Flow) Run(ctx context.Context, stations []*models.Station) (*models.Station, error) {
	query, err := f.console.Ask(ctx, SearchPrompt)
	if err != nil {
		return nil, err
	}

	matches := Filter(stations, query)
	log.Debug().Str("query", query).Int("matches", len(matches)).Msg("Station search")
	if len(matches) == 0 {
		return nil, NewNoMatchError(query)
	}

	entries := make([]models.ShortEntry, len(matches))
	for i, station := range matches {
		entries[i] = station.Shortlist()
	}
	if err := RenderTable(f.console.Out(), entries); err != nil {
		return nil, fmt.Errorf("rendering station table: %w", err)
	}

	choice, err := f.console.Ask(ctx, SelectPrompt)
	if err != nil {
		return nil, err
	}
	return Select(matches, choice)
}

// RenderTable writes entries as a plain two-column table: ids right aligned,
// names left aligned, a dashed rule under the headers
func RenderTable(w io.Writer, entries []models.ShortEntry) error {
	const idHeader, nameHeader = "Id", "Station name"

	ids := make([]string, len(entries))
	idWidth, nameWidth := len(idHeader), len(nameHeader)
	for i, entry := range entries {
		ids[i] = strconv.Itoa(entry.ID)
		idWidth = max(idWidth, len(ids[i]))
		nameWidth = max(nameWidth, width(entry.Name))
	}

	var b strings.Builder
	b.WriteString(padLeft(idHeader, idWidth) + "  " + nameHeader + "\n")
	b.WriteString(strings.Repeat("-", idWidth) + "  " + strings.Repeat("-", nameWidth) + "\n")
	for i, entry := range entries {
		b.WriteString(padLeft(ids[i], idWidth) + "  " + entry.Name + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func width(s string) int {
	return len([]rune(s))
}

func padLeft(s string, n int) string {
	return strings.Repeat(" ", n-width(s)) + s
}
