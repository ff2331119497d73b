package datastore

import "fmt"

// Tables in drop order: dependents first.
var bookTables = []string{
	"book_categories",
	"book_authors",
	"industry_identifiers",
	"books",
	"publishers",
	"authors",
	"categories",
}

func schemaStatements(d dialect) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS publishers (
			publisher_id %s,
			publisher_name VARCHAR(255) NOT NULL UNIQUE
		)`, d.serialKey),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS authors (
			author_id %s,
			author_name VARCHAR(255) NOT NULL UNIQUE
		)`, d.serialKey),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS categories (
			category_id %s,
			category_name VARCHAR(255) NOT NULL UNIQUE
		)`, d.serialKey),
		`CREATE TABLE IF NOT EXISTS books (
			book_id VARCHAR(50) PRIMARY KEY,
			search_key VARCHAR(255),
			book_title VARCHAR(500) NOT NULL,
			book_subtitle TEXT,
			book_description TEXT,
			book_authors TEXT,
			categories TEXT,
			text_readingModes BOOLEAN DEFAULT false,
			image_readingModes BOOLEAN DEFAULT false,
			pageCount INTEGER,
			language VARCHAR(10),
			publisher_id INTEGER REFERENCES publishers(publisher_id),
			publication_year INTEGER,
			ratingsCount INTEGER DEFAULT 0,
			averageRating DECIMAL(3,2),
			isEbook BOOLEAN DEFAULT false,
			amount_listPrice DECIMAL(10,2),
			currencyCode_listPrice VARCHAR(3),
			amount_retailPrice DECIMAL(10,2),
			currencyCode_retailPrice VARCHAR(3),
			buyLink TEXT,
			imageLinks TEXT,
			country VARCHAR(50),
			saleability VARCHAR(50)
		)`,
		`CREATE TABLE IF NOT EXISTS book_authors (
			book_id VARCHAR(50) REFERENCES books(book_id) ON DELETE CASCADE,
			author_id INTEGER REFERENCES authors(author_id) ON DELETE CASCADE,
			PRIMARY KEY (book_id, author_id)
		)`,
		`CREATE TABLE IF NOT EXISTS book_categories (
			book_id VARCHAR(50) REFERENCES books(book_id) ON DELETE CASCADE,
			category_id INTEGER REFERENCES categories(category_id) ON DELETE CASCADE,
			PRIMARY KEY (book_id, category_id)
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS industry_identifiers (
			identifier_id %s,
			book_id VARCHAR(50) REFERENCES books(book_id) ON DELETE CASCADE,
			identifier_type VARCHAR(20),
			identifier_value VARCHAR(50)
		)`, d.serialKey),
		`CREATE INDEX IF NOT EXISTS idx_publication_year ON books(publication_year)`,
		`CREATE INDEX IF NOT EXISTS idx_pagecount ON books(pageCount)`,
		`CREATE INDEX IF NOT EXISTS idx_rating ON books(averageRating)`,
		`CREATE INDEX IF NOT EXISTS idx_publisher ON books(publisher_id)`,
		`CREATE INDEX IF NOT EXISTS idx_isebook ON books(isEbook)`,
	}
}
