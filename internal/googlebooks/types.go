package googlebooks

import "encoding/json"

// searchResponse is one page of the volumes search endpoint.
// Items stay raw so that one malformed volume cannot poison the whole page.
type searchResponse struct {
	Kind       string            `json:"kind"`
	TotalItems int               `json:"totalItems"`
	Items      []json.RawMessage `json:"items"`
}

// Volume is a single catalog item as returned by the volumes API.
// Optional scalars are pointers so that absence can be told apart from zero.
type Volume struct {
	ID         string     `json:"id"`
	VolumeInfo VolumeInfo `json:"volumeInfo"`
	SaleInfo   SaleInfo   `json:"saleInfo"`
}

// VolumeInfo holds the bibliographic part of a volume.
type VolumeInfo struct {
	Title               *string              `json:"title"`
	Subtitle            *string              `json:"subtitle"`
	Description         *string              `json:"description"`
	Authors             []string             `json:"authors"`
	Categories          []string             `json:"categories"`
	ReadingModes        *ReadingModes        `json:"readingModes"`
	PageCount           *int                 `json:"pageCount"`
	Language            *string              `json:"language"`
	Publisher           *string              `json:"publisher"`
	PublishedDate       *string              `json:"publishedDate"`
	RatingsCount        *int                 `json:"ratingsCount"`
	AverageRating       *float64             `json:"averageRating"`
	IndustryIdentifiers []IndustryIdentifier `json:"industryIdentifiers"`
	ImageLinks          map[string]any       `json:"imageLinks"`
}

// ReadingModes tells whether text and image reading are available.
type ReadingModes struct {
	Text  *bool `json:"text"`
	Image *bool `json:"image"`
}

// IndustryIdentifier is an ISBN_10, ISBN_13 or OTHER identifier.
type IndustryIdentifier struct {
	Type       *string `json:"type"`
	Identifier *string `json:"identifier"`
}

// SaleInfo holds the commercial part of a volume.
type SaleInfo struct {
	Country     *string `json:"country"`
	Saleability *string `json:"saleability"`
	IsEbook     *bool   `json:"isEbook"`
	ListPrice   *Price  `json:"listPrice"`
	RetailPrice *Price  `json:"retailPrice"`
	BuyLink     *string `json:"buyLink"`
}

// Price is a monetary amount with its ISO 4217 currency code.
type Price struct {
	Amount       *float64 `json:"amount"`
	CurrencyCode *string  `json:"currencyCode"`
}
