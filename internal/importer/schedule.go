package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bowl_picks/internal/models"

	"github.com/PuerkitoBio/goquery"
)

var (
	ErrNoSchedule    = errors.New("no schedule table found")
	ErrMissingColumn = errors.New("required column missing")
	ErrBadRow        = errors.New("malformed schedule row")
	ErrFetch         = errors.New("failed to fetch schedule")
)

const maxPageBytes = 4 << 20

type column int

const (
	colDate column = iota
	colName
	colAway
	colHome
	colSpread
	colTotal
	colTime
)

// Header cells are matched case-insensitively by prefix.
var headerAliases = map[string]column{
	"date":    colDate,
	"bowl":    colName,
	"game":    colName,
	"name":    colName,
	"away":    colAway,
	"visitor": colAway,
	"home":    colHome,
	"spread":  colSpread,
	"line":    colSpread,
	"total":   colTotal,
	"o/u":     colTotal,
	"time":    colTime,
	"kickoff": colTime,
}

var dateLayouts = []string{
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan. 2, 2006",
	"Mon, Jan 2, 2006",
	"1/2/2006",
}

var timeLayouts = []string{
	"3:04 PM",
	"3:04PM",
	"3:04 pm",
	"15:04",
}

// Parse reads the first table whose header has date, bowl, away and home
// columns and returns one scheduled game per body row. Times are read in loc.
func Parse(r io.Reader, loc *time.Location) ([]models.Game, error) {
	const op = "importer.Parse"

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		games   []models.Game
		found   bool
		rowErr  error
		missing []string
	)

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		cols, ok := headerColumns(table)
		if !ok {
			if m := missingColumns(cols); len(m) < 4 {
				missing = m
			}
			return true
		}
		found = true

		table.Find("tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
			cells := tr.Find("td")
			if cells.Length() == 0 {
				return true
			}

			g, err := parseRow(cells, cols, loc)
			if err != nil {
				rowErr = fmt.Errorf("%w: row %d: %w", ErrBadRow, i, err)
				return false
			}
			games = append(games, g)
			return true
		})
		return false
	})

	if rowErr != nil {
		return nil, fmt.Errorf("%s: %w", op, rowErr)
	}
	if !found {
		if len(missing) > 0 {
			return nil, fmt.Errorf("%s: %w: %s", op, ErrMissingColumn, strings.Join(missing, ", "))
		}
		return nil, fmt.Errorf("%s: %w", op, ErrNoSchedule)
	}

	return games, nil
}

// Fetch downloads the page at url and parses it.
func Fetch(ctx context.Context, client *http.Client, url string, loc *time.Location) ([]models.Game, error) {
	const op = "importer.Fetch"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrFetch, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %w: status %d", op, ErrFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrFetch, err)
	}
	if len(body) > maxPageBytes {
		return nil, fmt.Errorf("%s: %w: page exceeds %d bytes", op, ErrFetch, maxPageBytes)
	}

	games, err := Parse(bytes.NewReader(body), loc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return games, nil
}

func headerColumns(table *goquery.Selection) (map[column]int, bool) {
	cols := make(map[column]int)

	table.Find("tr").First().Find("th, td").Each(func(i int, cell *goquery.Selection) {
		text := strings.ToLower(cleanText(cell.Text()))
		for alias, col := range headerAliases {
			if strings.HasPrefix(text, alias) {
				if _, seen := cols[col]; !seen {
					cols[col] = i
				}
				break
			}
		}
	})

	return cols, len(missingColumns(cols)) == 0
}

func missingColumns(cols map[column]int) []string {
	required := []struct {
		col  column
		name string
	}{
		{colDate, "date"},
		{colName, "bowl"},
		{colAway, "away"},
		{colHome, "home"},
	}

	var missing []string
	for _, r := range required {
		if _, ok := cols[r.col]; !ok {
			missing = append(missing, r.name)
		}
	}
	return missing
}

func parseRow(cells *goquery.Selection, cols map[column]int, loc *time.Location) (models.Game, error) {
	cell := func(c column) string {
		i, ok := cols[c]
		if !ok || i >= cells.Length() {
			return ""
		}
		return cleanText(cells.Eq(i).Text())
	}

	g := models.Game{
		Name:     cell(colName),
		AwayTeam: cell(colAway),
		HomeTeam: cell(colHome),
		Spread:   cell(colSpread),
		Total:    cell(colTotal),
		Status:   models.StatusScheduled,
	}

	if g.Name == "" || g.AwayTeam == "" || g.HomeTeam == "" {
		return models.Game{}, errors.New("bowl and both teams are required")
	}

	date, err := parseDate(cell(colDate), loc)
	if err != nil {
		return models.Game{}, err
	}
	g.Date = date

	if raw := cell(colTime); raw != "" && !strings.EqualFold(raw, "tba") {
		start, err := parseKickoff(date, raw, loc)
		if err != nil {
			return models.Game{}, err
		}
		g.StartTime = &start
	}

	return g, nil
}

func parseDate(raw string, loc *time.Location) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

func parseKickoff(date time.Time, raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(raw, " ET"), " EST"))
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized kickoff time %q", raw)
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
