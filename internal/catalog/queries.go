package catalog

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Params are the tunable inputs of the named queries. Zero values fall back
// to each query's default.
type Params struct {
	Keyword     string
	Limit       int
	MinBooks    int
	MinYear     int
	MinPages    int
	MinDiscount float64
	MinAuthors  int
}

// Query is a named, parameterized read-only statement.
type Query struct {
	Name        string
	Description string
	build       func(b sq.StatementBuilderType, p Params) (sq.SelectBuilder, error)
}

const bookTypeColumn = "CASE WHEN isEbook THEN 'eBook' ELSE 'Physical Book' END AS book_type"

var queries = []Query{
	{
		Name:        "count-books",
		Description: "Total number of books",
		build: func(b sq.StatementBuilderType, _ Params) (sq.SelectBuilder, error) {
			return b.Select("COUNT(*) AS total_books").From("books"), nil
		},
	},
	{
		Name:        "ebook-vs-physical",
		Description: "Share of eBooks and physical books",
		build: func(b sq.StatementBuilderType, _ Params) (sq.SelectBuilder, error) {
			return b.Select(
				bookTypeColumn,
				"COUNT(*) AS count",
				"ROUND(COUNT(*) * 100.0 / (SELECT COUNT(*) FROM books), 2) AS percentage",
			).From("books").GroupBy("isEbook").OrderBy("count DESC"), nil
		},
	},
	{
		Name:        "top-publishers",
		Description: "Publishers with the most books (--limit, default 1)",
		build: func(b sq.StatementBuilderType, p Params) (sq.SelectBuilder, error) {
			return b.Select("p.publisher_name", "COUNT(*) AS book_count").
				From("books b").
				Join("publishers p ON b.publisher_id = p.publisher_id").
				GroupBy("p.publisher_id", "p.publisher_name").
				OrderBy("book_count DESC", "p.publisher_name").
				Limit(limitOr(p.Limit, 1)), nil
		},
	},
	{
		Name:        "top-rated-publisher",
		Description: "Highest average rating among publishers with rated books (--min-books, default 2)",
		build: func(b sq.StatementBuilderType, p Params) (sq.SelectBuilder, error) {
			return b.Select("p.publisher_name", "ROUND(AVG(b.averageRating), 2) AS avg_rating", "COUNT(*) AS book_count").
				From("books b").
				Join("publishers p ON b.publisher_id = p.publisher_id").
				Where(sq.NotEq{"b.averageRating": nil}).
				GroupBy("p.publisher_id", "p.publisher_name").
				Having("COUNT(*) >= ?", intOr(p.MinBooks, 2)).
				OrderBy("avg_rating DESC", "p.publisher_name").
				Limit(limitOr(p.Limit, 1)), nil
		},
	},
	{
		Name:        "top-expensive",
		Description: "Most expensive books by retail price (--limit, default 5)",
		build: func(b sq.StatementBuilderType, p Params) (sq.SelectBuilder, error) {
			return b.Select("book_title", "amount_retailPrice", "currencyCode_retailPrice", "book_authors").
				From("books").
				Where(sq.NotEq{"amount_retailPrice": nil}).
				OrderBy("amount_retailPrice DESC", "book_title").
				Limit(limitOr(p.Limit, 5)), nil
		},
	},
	{
		Name:        "long-recent-books",
		Description: "Books published after --min-year (default 2010) with at least --min-pages (default 500)",
		build: func(b sq.StatementBuilderType, p Params) (sq.SelectBuilder, error) {
			return b.Select("book_title", "publication_year", "pageCount", "book_authors").
				From("books").
				Where(sq.Gt{"publication_year": intOr(p.MinYear, 2010)}).
				Where(sq.GtOrEq{"pageCount": intOr(p.MinPages, 500)}).
				OrderBy("publication_year", "pageCount DESC"), nil
		},
	},
	{
		Name:        "discounted-books",
		Description: "Books whose retail price is more than --min-discount percent (default 20) below list",
		build: func(b sq.StatementBuilderType, p Params) (sq.SelectBuilder, error) {
			discount := p.MinDiscount
			if discount <= 0 {
				discount = 20
			}
			return b.Select(
				"book_title",
				"amount_listPrice",
				"amount_retailPrice",
				"ROUND((amount_listPrice - amount_retailPrice) * 100.0 / amount_listPrice, 2) AS discount_percentage",
			).
				From("books").
				Where(sq.NotEq{"amount_listPrice": nil}).
				Where(sq.NotEq{"amount_retailPrice": nil}).
				Where("amount_listPrice > amount_retailPrice").
				Where("(amount_listPrice - amount_retailPrice) * 100.0 / amount_listPrice > ?", discount).
				OrderBy("discount_percentage DESC"), nil
		},
	},
	{
		Name:        "avg-pages-ebook-vs-physical",
		Description: "Average page count of eBooks and physical books",
		build: func(b sq.StatementBuilderType, _ Params) (sq.SelectBuilder, error) {
			return b.Select(bookTypeColumn, "ROUND(AVG(pageCount), 0) AS avg_pages", "COUNT(*) AS book_count").
				From("books").
				Where(sq.NotEq{"pageCount": nil}).
				GroupBy("isEbook").
				OrderBy("book_type"), nil
		},
	},
	{
		Name:        "top-authors",
		Description: "Authors with the most books (--limit, default 3)",
		build: func(b sq.StatementBuilderType, p Params) (sq.SelectBuilder, error) {
			return b.Select("a.author_name", "COUNT(DISTINCT ba.book_id) AS book_count").
				From("book_authors ba").
				Join("authors a ON ba.author_id = a.author_id").
				GroupBy("a.author_id", "a.author_name").
				OrderBy("book_count DESC", "a.author_name").
				Limit(limitOr(p.Limit, 3)), nil
		},
	},
	{
		Name:        "publishers-with-min-books",
		Description: "Publishers with more than --min-books books (default 10)",
		build: func(b sq.StatementBuilderType, p Params) (sq.SelectBuilder, error) {
			return b.Select("p.publisher_name", "COUNT(*) AS book_count").
				From("books b").
				Join("publishers p ON b.publisher_id = p.publisher_id").
				GroupBy("p.publisher_id", "p.publisher_name").
				Having("COUNT(*) > ?", intOr(p.MinBooks, 10)).
				OrderBy("book_count DESC", "p.publisher_name"), nil
		},
	},
	{
		Name:        "avg-pages-per-category",
		Description: "Average page count per category",
		build: func(b sq.StatementBuilderType, _ Params) (sq.SelectBuilder, error) {
			return b.Select("c.category_name", "ROUND(AVG(b.pageCount), 2) AS avg_pages", "COUNT(*) AS book_count").
				From("books b").
				Join("book_categories bc ON b.book_id = bc.book_id").
				Join("categories c ON bc.category_id = c.category_id").
				Where(sq.NotEq{"b.pageCount": nil}).
				GroupBy("c.category_id", "c.category_name").
				OrderBy("avg_pages DESC", "c.category_name"), nil
		},
	},
	{
		Name:        "search-title",
		Description: "Books whose title contains --keyword, best rated first",
		build: func(b sq.StatementBuilderType, p Params) (sq.SelectBuilder, error) {
			keyword := strings.TrimSpace(p.Keyword)
			if keyword == "" {
				return sq.SelectBuilder{}, ErrMissingKeyword
			}
			q := b.Select("book_title", "book_authors", "publication_year", "averageRating").
				From("books").
				Where(`LOWER(book_title) LIKE LOWER(?) ESCAPE '\'`, "%"+escapeLike(keyword)+"%").
				OrderBy("COALESCE(averageRating, -1) DESC", "book_title")
			if p.Limit > 0 {
				q = q.Limit(uint64(p.Limit))
			}
			return q, nil
		},
	},
	{
		Name:        "list-books",
		Description: "Stored books by title (--limit, default 50)",
		build: func(b sq.StatementBuilderType, p Params) (sq.SelectBuilder, error) {
			return b.Select(
				"book_title", "book_authors", "categories", "publication_year", "averageRating",
				"ratingsCount", "isEbook", "amount_retailPrice", "currencyCode_retailPrice",
			).
				From("books").
				OrderBy("book_title", "book_id").
				Limit(limitOr(p.Limit, 50)), nil
		},
	},
	{
		Name:        "multi-author-books",
		Description: "Books with more than --min-authors authors (default 3)",
		build: func(b sq.StatementBuilderType, p Params) (sq.SelectBuilder, error) {
			return b.Select("b.book_title", "COUNT(DISTINCT ba.author_id) AS author_count").
				From("books b").
				Join("book_authors ba ON b.book_id = ba.book_id").
				GroupBy("b.book_id", "b.book_title").
				Having("COUNT(DISTINCT ba.author_id) > ?", intOr(p.MinAuthors, 3)).
				OrderBy("author_count DESC", "b.book_title"), nil
		},
	},
	{
		Name:        "popular-books",
		Description: "Books with more ratings than the average book",
		build: func(b sq.StatementBuilderType, _ Params) (sq.SelectBuilder, error) {
			return b.Select("book_title", "ratingsCount", "averageRating").
				From("books").
				Where("ratingsCount > (SELECT AVG(ratingsCount) FROM books WHERE ratingsCount IS NOT NULL)").
				OrderBy("ratingsCount DESC", "book_title"), nil
		},
	},
	{
		Name:        "author-busy-years",
		Description: "Authors with more than one book in the same year",
		build: func(b sq.StatementBuilderType, _ Params) (sq.SelectBuilder, error) {
			return b.Select("a.author_name", "b.publication_year", "COUNT(*) AS books_in_year").
				From("books b").
				Join("book_authors ba ON b.book_id = ba.book_id").
				Join("authors a ON ba.author_id = a.author_id").
				Where(sq.NotEq{"b.publication_year": nil}).
				GroupBy("a.author_id", "a.author_name", "b.publication_year").
				Having("COUNT(*) > 1").
				OrderBy("b.publication_year DESC", "books_in_year DESC", "a.author_name"), nil
		},
	},
	{
		Name:        "consecutive-year-authors",
		Description: "Authors who published in at least three consecutive years",
		build: func(b sq.StatementBuilderType, _ Params) (sq.SelectBuilder, error) {
			authorYears := b.Select("a.author_id", "a.author_name", "b.publication_year").
				From("authors a").
				Join("book_authors ba ON a.author_id = ba.author_id").
				Join("books b ON ba.book_id = b.book_id").
				Where(sq.NotEq{"b.publication_year": nil}).
				GroupBy("a.author_id", "a.author_name", "b.publication_year")

			neighbours := b.Select(
				"author_id", "author_name", "publication_year",
				"LAG(publication_year) OVER (PARTITION BY author_id ORDER BY publication_year) AS prev_year",
				"LEAD(publication_year) OVER (PARTITION BY author_id ORDER BY publication_year) AS next_year",
			).FromSelect(authorYears, "author_years")

			// A year whose neighbours are both adjacent is the middle of a three year run
			return b.Select("author_name", "COUNT(*) AS run_midpoints").
				FromSelect(neighbours, "t").
				Where("prev_year = publication_year - 1").
				Where("next_year = publication_year + 1").
				GroupBy("author_id", "author_name").
				OrderBy("run_midpoints DESC", "author_name"), nil
		},
	},
	{
		Name:        "priciest-year",
		Description: "Publication years with the highest average retail price (--limit, default 1)",
		build: func(b sq.StatementBuilderType, p Params) (sq.SelectBuilder, error) {
			return b.Select("publication_year", "ROUND(AVG(amount_retailPrice), 2) AS avg_price", "COUNT(*) AS book_count").
				From("books").
				Where(sq.NotEq{"publication_year": nil}).
				Where(sq.NotEq{"amount_retailPrice": nil}).
				GroupBy("publication_year").
				OrderBy("avg_price DESC", "publication_year").
				Limit(limitOr(p.Limit, 1)), nil
		},
	},
	{
		Name:        "author-multi-publisher-years",
		Description: "Authors published by more than one publisher in the same year",
		build: func(b sq.StatementBuilderType, _ Params) (sq.SelectBuilder, error) {
			return b.Select(
				"a.author_name",
				"b.publication_year",
				"COUNT(DISTINCT b.publisher_id) AS publisher_count",
				"COUNT(*) AS book_count",
			).
				From("authors a").
				Join("book_authors ba ON a.author_id = ba.author_id").
				Join("books b ON ba.book_id = b.book_id").
				Where(sq.NotEq{"b.publisher_id": nil}).
				GroupBy("a.author_id", "a.author_name", "b.publication_year").
				Having("COUNT(DISTINCT b.publisher_id) > 1").
				OrderBy("b.publication_year DESC", "book_count DESC", "a.author_name"), nil
		},
	},
	{
		Name:        "avg-price-ebook-vs-physical",
		Description: "Average retail price of eBooks and physical books",
		build: func(b sq.StatementBuilderType, _ Params) (sq.SelectBuilder, error) {
			return b.Select(bookTypeColumn, "ROUND(AVG(amount_retailPrice), 2) AS avg_price", "COUNT(*) AS book_count").
				From("books").
				Where(sq.NotEq{"amount_retailPrice": nil}).
				GroupBy("isEbook").
				OrderBy("book_type"), nil
		},
	},
	{
		Name:        "rating-outliers",
		Description: "Books rated more than two standard deviations away from the mean",
		build: func(b sq.StatementBuilderType, _ Params) (sq.SelectBuilder, error) {
			// Portable without STDDEV or SQRT: variance is E[x^2] - E[x]^2 and the bound is squared
			const stats = `(SELECT AVG(averageRating) AS mean_rating,
				AVG(averageRating * averageRating) - AVG(averageRating) * AVG(averageRating) AS var_rating
				FROM books WHERE averageRating IS NOT NULL) stats`
			return b.Select("book_title", "averageRating", "ratingsCount", "ROUND(averageRating - mean_rating, 2) AS deviation").
				From("books, " + stats).
				Where(sq.NotEq{"averageRating": nil}).
				Where("var_rating > 0").
				Where("(averageRating - mean_rating) * (averageRating - mean_rating) > 4 * var_rating").
				OrderBy("ABS(averageRating - mean_rating) DESC", "book_title"), nil
		},
	},
	{
		Name:        "books-per-search-key",
		Description: "Books stored per search term",
		build: func(b sq.StatementBuilderType, _ Params) (sq.SelectBuilder, error) {
			return b.Select("search_key", "COUNT(*) AS book_count").
				From("books").
				GroupBy("search_key").
				OrderBy("book_count DESC", "search_key"), nil
		},
	},
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in s match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func limitOr(limit int, fallback uint64) uint64 {
	if limit > 0 {
		return uint64(limit)
	}
	return fallback
}

func intOr(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
