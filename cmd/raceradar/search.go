package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/EaziLuizi/raceradar/internal/presenter"
	"github.com/EaziLuizi/raceradar/internal/search"
	"github.com/EaziLuizi/raceradar/internal/service"
)

type searchFlags struct {
	text       string
	province   string
	raceType   string
	difficulty string
	sort       string
	upcoming   bool
	page       int
	pageSize   int
	asJSON     bool
}

func newSearchCmd(a *app) *cobra.Command {
	f := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the race catalog",
		Example: `  raceradar search --province "Western Cape" --sort price-asc
  raceradar search -q comrades --upcoming=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.search(cmd, f)
		},
	}

	cmd.Flags().StringVarP(&f.text, "query", "q", "", "Match race name or city")
	cmd.Flags().StringVar(&f.province, "province", search.All, "Province filter")
	cmd.Flags().StringVar(&f.raceType, "type", search.All, "Race type filter")
	cmd.Flags().StringVar(&f.difficulty, "difficulty", search.All, "Difficulty filter")
	cmd.Flags().StringVar(&f.sort, "sort", "", "Sort order: "+sortOrderList())
	cmd.Flags().BoolVar(&f.upcoming, "upcoming", true, "Only show races from today onwards")
	cmd.Flags().IntVar(&f.page, "page", 0, "Zero-based page index")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "Results per page, 0 for the configured maximum")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print race cards as JSON")

	return cmd
}

func (f *searchFlags) query(defaultSort string) search.Query {
	q := search.DefaultQuery()
	q.SearchText = f.text
	q.Province = f.province
	q.RaceType = f.raceType
	q.Difficulty = f.difficulty
	q.OnlyUpcoming = f.upcoming
	q.Sort = search.SortOrder(f.sort)
	if q.Sort == "" {
		q.Sort = search.SortOrder(defaultSort)
	}
	q.Sort = q.Sort.Normalize()
	return q.WithPage(f.page, f.pageSize)
}

func (a *app) search(cmd *cobra.Command, f *searchFlags) error {
	ctx := cmd.Context()

	cat, err := a.openCatalog(ctx)
	if err != nil {
		return err
	}
	defer cat.Close()

	finder := service.NewRaceFinder(cat.source, service.RaceFinderConfig{
		MaxPageSize:      a.cfg.Search.MaxPageSize,
		ServerSideFilter: a.cfg.Search.ServerSideFilter,
	}, a.log)

	view, err := finder.Search(ctx, f.query(a.cfg.Search.DefaultSort))
	if err != nil {
		return err
	}

	cards := presenter.NewCards(view.Items, time.Now())
	out := cmd.OutOrStdout()
	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(cards)
	}

	printCards(out, cards)
	fmt.Fprintf(out, "\nShowing %d of %d races", len(cards), view.TotalCount)
	if view.PageCount > 1 {
		fmt.Fprintf(out, " (page %d of %d)", view.Page.Index+1, view.PageCount)
	}
	fmt.Fprintln(out)
	if view.Skipped > 0 {
		fmt.Fprintf(out, "%d malformed records were skipped\n", view.Skipped)
	}
	return nil
}

func printCards(w io.Writer, cards []presenter.Card) {
	if len(cards) == 0 {
		fmt.Fprintln(w, "No races found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tRACE\tLOCATION\tTYPE\tDIFFICULTY\tDISTANCES")
	for _, c := range cards {
		distances := strings.Join(c.Distances, ", ")
		if c.MoreDistances != "" {
			distances += " " + c.MoreDistances
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", c.Date, c.Name, c.Location, c.TypeLabel, c.Difficulty.Label, distances)
	}
	_ = tw.Flush()
}

func sortOrderList() string {
	names := make([]string, 0, len(search.SortOrders))
	for _, s := range search.SortOrders {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

func newRaceCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "race <slug>",
		Short: "Show one race",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cat, err := a.openCatalog(ctx)
			if err != nil {
				return err
			}
			defer cat.Close()

			finder := service.NewRaceFinder(cat.source, service.RaceFinderConfig{}, a.log)
			race, err := finder.RaceBySlug(ctx, args[0])
			if err != nil {
				return fmt.Errorf("race %q: %w", args[0], err)
			}

			detail := presenter.NewDetail(race, time.Now())
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(detail)
			}
			printDetail(out, detail)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the race as JSON")
	return cmd
}

func printDetail(w io.Writer, d presenter.Detail) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(tw, "%s\t%s\n", label, value)
		}
	}

	fmt.Fprintf(w, "%s\n%s\n\n", d.Name, strings.Repeat("=", len(d.Name)))
	row("Date", d.LongDate)
	row("Location", d.Location)
	row("Venue", d.Venue)
	row("Type", d.LongTypeLabel)
	row("Difficulty", d.Difficulty.Label)
	row("Terrain", d.Terrain)
	row("Elevation", d.Elevation)
	row("Entries open", d.EntryOpens)
	row("Entries close", d.EntryCloses)
	row("From", d.FromPrice)
	row("Website", d.WebsiteURL)
	row("Enter", d.EntryURL)
	for _, dist := range d.AllDistances {
		row("Distance "+dist.Label, strings.TrimSpace(dist.Fee+"  "+dist.Slots))
	}
	_ = tw.Flush()

	if d.Description != "" {
		fmt.Fprintf(w, "\n%s\n", d.Description)
	}
}
