// Package normalize maps raw Google Books volumes onto the flat attribute set
// stored in the books table plus the name lists needed for fan-out.
package normalize

// Column names of the books table.
const (
	ColBookID              = "book_id"
	ColSearchKey           = "search_key"
	ColTitle               = "book_title"
	ColSubtitle            = "book_subtitle"
	ColDescription         = "book_description"
	ColAuthors             = "book_authors"
	ColCategories          = "categories"
	ColTextReadingMode     = "text_readingModes"
	ColImageReadingMode    = "image_readingModes"
	ColPageCount           = "pageCount"
	ColLanguage            = "language"
	ColPublisherID         = "publisher_id"
	ColPublicationYear     = "publication_year"
	ColRatingsCount        = "ratingsCount"
	ColAverageRating       = "averageRating"
	ColIsEbook             = "isEbook"
	ColListPriceAmount     = "amount_listPrice"
	ColListPriceCurrency   = "currencyCode_listPrice"
	ColRetailPriceAmount   = "amount_retailPrice"
	ColRetailPriceCurrency = "currencyCode_retailPrice"
	ColBuyLink             = "buyLink"
	ColImageLinks          = "imageLinks"
	ColCountry             = "country"
	ColSaleability         = "saleability"
)

// Placeholder is stored in display columns whose source value is missing.
const Placeholder = "NA"

// Publication years outside this range are treated as unknown.
const (
	MinPublicationYear = 1800
	MaxPublicationYear = 2024
)

// Identifier is one industry identifier of a book. Either part may be missing
// in the source and is then stored as NULL.
type Identifier struct {
	Type  *string
	Value *string
}

// Record is a normalized catalog item ready to be written.
type Record struct {
	// ID is the external catalog id, the books primary key.
	ID string

	// Attrs holds the books columns that have a known value, keyed by
	// column name. Absent optional fields are missing from the map, never nil.
	// publisher_id is not part of Attrs; the writer adds it after resolving
	// Publisher.
	Attrs map[string]any

	Publisher   string
	Authors     []string
	Categories  []string
	Identifiers []Identifier
}
