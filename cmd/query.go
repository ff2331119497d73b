package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lepinkainen/bookscape/internal/catalog"
	"github.com/lepinkainen/bookscape/internal/datastore"
	"github.com/lepinkainen/bookscape/internal/tui"
)

// QueryCmd represents the query command and its subcommands
type QueryCmd struct {
	List QueryListCmd `cmd:"" help:"List the available queries"`
	Exec QueryRunCmd  `cmd:"" name:"run" help:"Run a named query"`
}

// QueryListCmd represents the query list command
type QueryListCmd struct{}

// QueryRunCmd represents the query run command
type QueryRunCmd struct {
	Name        string  `arg:"" help:"Query name (see 'query list')"`
	Keyword     string  `short:"k" help:"Title keyword for search-title"`
	Limit       int     `short:"n" help:"Maximum rows for top-N queries"`
	MinBooks    int     `help:"Book count threshold for publisher queries"`
	MinYear     int     `help:"Publication year threshold for long-recent-books"`
	MinPages    int     `help:"Page count threshold for long-recent-books"`
	MinDiscount float64 `help:"Discount percentage threshold for discounted-books"`
	MinAuthors  int     `help:"Author count threshold for multi-author-books"`
	SQL         bool    `name:"sql" help:"Print the statement and its arguments instead of running it"`
}

func (q *QueryListCmd) Run() error {
	list := catalog.Catalogue()
	rows := make([][]string, 0, len(list))
	for _, query := range list {
		rows = append(rows, []string{query.Name, query.Description})
	}

	_, _ = fmt.Fprintln(stdout, tui.Table{
		Title:   "Available queries",
		Headers: []string{"Name", "Description"},
		Rows:    rows,
	}.Render())
	return nil
}

func (q *QueryRunCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := datastore.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	repo := catalog.NewRepository(store.DB(), store.Placeholder())
	params := catalog.Params{
		Keyword:     q.Keyword,
		Limit:       q.Limit,
		MinBooks:    q.MinBooks,
		MinYear:     q.MinYear,
		MinPages:    q.MinPages,
		MinDiscount: q.MinDiscount,
		MinAuthors:  q.MinAuthors,
	}

	if q.SQL {
		stmt, args, err := repo.SQL(q.Name, params)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(stdout, "%s\n-- args: %v\n", stmt, args)
		return nil
	}

	table, err := repo.Run(ctx, q.Name, params)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(stdout, tui.Table{
		Title:   q.Name,
		Headers: table.Columns,
		Rows:    table.Rows,
		Footer:  strconv.Itoa(len(table.Rows)) + " rows",
	}.Render())
	return nil
}
