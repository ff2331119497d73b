package normalize

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lepinkainen/bookscape/internal/googlebooks"
)

// ErrMissingID is returned for catalog items without an id.
var ErrMissingID = stdErrors.New("catalog item has no id")

// Normalize maps one raw catalog item found under searchKey to a Record.
// It has no side effects.
func Normalize(raw json.RawMessage, searchKey string) (*Record, error) {
	var vol googlebooks.Volume
	if err := json.Unmarshal(raw, &vol); err != nil {
		return nil, fmt.Errorf("failed to parse catalog item: %w", err)
	}

	id := strings.TrimSpace(vol.ID)
	if id == "" {
		return nil, ErrMissingID
	}

	info := vol.VolumeInfo
	sale := vol.SaleInfo

	rec := &Record{
		ID:         id,
		Attrs:      make(map[string]any),
		Authors:    cleanNames(info.Authors),
		Categories: cleanNames(info.Categories),
	}
	if info.Publisher != nil {
		rec.Publisher = strings.TrimSpace(*info.Publisher)
	}
	for _, ident := range info.IndustryIdentifiers {
		rec.Identifiers = append(rec.Identifiers, Identifier{Type: ident.Type, Value: ident.Identifier})
	}

	attrs := rec.Attrs
	attrs[ColBookID] = id
	attrs[ColSearchKey] = searchKey
	attrs[ColTitle] = stringOr(info.Title, Placeholder)
	// Display columns list exactly the names that get linked
	attrs[ColAuthors] = joinOrPlaceholder(rec.Authors)
	attrs[ColCategories] = joinOrPlaceholder(rec.Categories)

	var textMode, imageMode *bool
	if info.ReadingModes != nil {
		textMode, imageMode = info.ReadingModes.Text, info.ReadingModes.Image
	}
	attrs[ColTextReadingMode] = boolOr(textMode, false)
	attrs[ColImageReadingMode] = boolOr(imageMode, false)
	attrs[ColIsEbook] = boolOr(sale.IsEbook, false)

	attrs[ColCountry] = stringOr(sale.Country, Placeholder)
	attrs[ColSaleability] = stringOr(sale.Saleability, Placeholder)

	setIfPresent(attrs, ColSubtitle, info.Subtitle)
	setIfPresent(attrs, ColDescription, info.Description)
	setIfPresent(attrs, ColPageCount, info.PageCount)
	setIfPresent(attrs, ColLanguage, info.Language)
	setIfPresent(attrs, ColRatingsCount, info.RatingsCount)
	setIfPresent(attrs, ColAverageRating, info.AverageRating)
	setIfPresent(attrs, ColBuyLink, sale.BuyLink)

	if sale.ListPrice != nil {
		setIfPresent(attrs, ColListPriceAmount, sale.ListPrice.Amount)
		setIfPresent(attrs, ColListPriceCurrency, sale.ListPrice.CurrencyCode)
	}
	if sale.RetailPrice != nil {
		setIfPresent(attrs, ColRetailPriceAmount, sale.RetailPrice.Amount)
		setIfPresent(attrs, ColRetailPriceCurrency, sale.RetailPrice.CurrencyCode)
	}

	if info.PublishedDate != nil {
		if year, ok := PublicationYear(*info.PublishedDate); ok {
			attrs[ColPublicationYear] = year
		}
	}

	if info.ImageLinks != nil {
		// encoding/json writes map keys sorted, so equal structures give equal blobs
		blob, err := json.Marshal(info.ImageLinks)
		if err != nil {
			return nil, fmt.Errorf("failed to encode image links of %s: %w", id, err)
		}
		attrs[ColImageLinks] = string(blob)
	}

	return rec, nil
}

// PublicationYear extracts the leading YYYY of a published date such as
// "2015", "2015-03" or "2015-03-01". ok is false when the year cannot be
// parsed or falls outside [MinPublicationYear, MaxPublicationYear].
func PublicationYear(date string) (year int, ok bool) {
	head, _, _ := strings.Cut(date, "-")
	year, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return 0, false
	}
	if year < MinPublicationYear || year > MaxPublicationYear {
		return 0, false
	}
	return year, true
}

// cleanNames trims names and drops the empty ones.
func cleanNames(names []string) []string {
	var out []string
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func joinOrPlaceholder(names []string) string {
	if len(names) == 0 {
		return Placeholder
	}
	return strings.Join(names, ", ")
}

func stringOr(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return *value
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func setIfPresent[T any](attrs map[string]any, column string, value *T) {
	if value != nil {
		attrs[column] = *value
	}
}
