package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullVolume = `{
  "id": "zyTCAlFPjgYC",
  "volumeInfo": {
    "title": "The Google Story",
    "subtitle": "Inside the Hottest Business",
    "description": "An account of Google.",
    "authors": ["David A. Vise", "Mark Malseed"],
    "categories": ["Business & Economics", "Technology", "History"],
    "readingModes": {"text": true, "image": false},
    "pageCount": 207,
    "language": "en",
    "publisher": "Random House Publishing Group",
    "publishedDate": "2005-11-15",
    "ratingsCount": 12,
    "averageRating": 3.5,
    "industryIdentifiers": [
      {"type": "ISBN_10", "identifier": "055380457X"},
      {"type": "ISBN_13", "identifier": "9780553804577"}
    ],
    "imageLinks": {"thumbnail": "http://t.example/1", "smallThumbnail": "http://t.example/0"}
  },
  "saleInfo": {
    "country": "US",
    "saleability": "FOR_SALE",
    "isEbook": true,
    "listPrice": {"amount": 11.99, "currencyCode": "USD"},
    "retailPrice": {"amount": 9.99, "currencyCode": "USD"},
    "buyLink": "https://play.google.com/store/books/details?id=zyTCAlFPjgYC"
  }
}`

func TestNormalizeFullVolume(t *testing.T) {
	rec, err := Normalize(json.RawMessage(fullVolume), "Business")
	require.NoError(t, err)

	assert.Equal(t, "zyTCAlFPjgYC", rec.ID)
	assert.Equal(t, "Random House Publishing Group", rec.Publisher)
	assert.Equal(t, []string{"David A. Vise", "Mark Malseed"}, rec.Authors)
	assert.Equal(t, []string{"Business & Economics", "Technology", "History"}, rec.Categories)
	require.Len(t, rec.Identifiers, 2)
	assert.Equal(t, "ISBN_13", *rec.Identifiers[1].Type)
	assert.Equal(t, "9780553804577", *rec.Identifiers[1].Value)

	want := map[string]any{
		ColBookID:              "zyTCAlFPjgYC",
		ColSearchKey:           "Business",
		ColTitle:               "The Google Story",
		ColSubtitle:            "Inside the Hottest Business",
		ColDescription:         "An account of Google.",
		ColAuthors:             "David A. Vise, Mark Malseed",
		ColCategories:          "Business & Economics, Technology, History",
		ColTextReadingMode:     true,
		ColImageReadingMode:    false,
		ColPageCount:           207,
		ColLanguage:            "en",
		ColPublicationYear:     2005,
		ColRatingsCount:        12,
		ColAverageRating:       3.5,
		ColIsEbook:             true,
		ColListPriceAmount:     11.99,
		ColListPriceCurrency:   "USD",
		ColRetailPriceAmount:   9.99,
		ColRetailPriceCurrency: "USD",
		ColBuyLink:             "https://play.google.com/store/books/details?id=zyTCAlFPjgYC",
		ColImageLinks:          `{"smallThumbnail":"http://t.example/0","thumbnail":"http://t.example/1"}`,
		ColCountry:             "US",
		ColSaleability:         "FOR_SALE",
	}
	assert.Equal(t, want, rec.Attrs)
	assert.NotContains(t, rec.Attrs, ColPublisherID)
}

func TestNormalizeMinimalVolumeUsesDefaults(t *testing.T) {
	rec, err := Normalize(json.RawMessage(`{"id":"abc"}`), "Physics")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		ColBookID:           "abc",
		ColSearchKey:        "Physics",
		ColTitle:            Placeholder,
		ColAuthors:          Placeholder,
		ColCategories:       Placeholder,
		ColTextReadingMode:  false,
		ColImageReadingMode: false,
		ColIsEbook:          false,
		ColCountry:          Placeholder,
		ColSaleability:      Placeholder,
	}, rec.Attrs)

	assert.Empty(t, rec.Publisher)
	assert.Empty(t, rec.Authors, "no placeholder author is created for fan-out")
	assert.Empty(t, rec.Categories, "no placeholder category is created for fan-out")
	assert.Empty(t, rec.Identifiers)
}

func TestNormalizeOmitsMissingPageCount(t *testing.T) {
	rec, err := Normalize(json.RawMessage(`{"id":"p1","volumeInfo":{"title":"No pages"}}`), "Physics")
	require.NoError(t, err)

	_, present := rec.Attrs[ColPageCount]
	assert.False(t, present)
}

func TestNormalizeKeepsZeroPageCount(t *testing.T) {
	rec, err := Normalize(json.RawMessage(`{"id":"p0","volumeInfo":{"pageCount":0}}`), "Physics")
	require.NoError(t, err)

	assert.Equal(t, 0, rec.Attrs[ColPageCount])
}

func TestNormalizePublicationYear(t *testing.T) {
	tests := []struct {
		date     string
		wantYear int
		wantSet  bool
	}{
		{date: "1776-01-01", wantSet: false},
		{date: "2015-03-01", wantYear: 2015, wantSet: true},
		{date: "not-a-date", wantSet: false},
		{date: "1800", wantYear: 1800, wantSet: true},
		{date: "2024-12", wantYear: 2024, wantSet: true},
		{date: "2025-01-01", wantSet: false},
		{date: "", wantSet: false},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			raw, err := json.Marshal(map[string]any{
				"id":         "y",
				"volumeInfo": map[string]any{"publishedDate": tt.date},
			})
			require.NoError(t, err)

			rec, err := Normalize(raw, "History")
			require.NoError(t, err)

			year, present := rec.Attrs[ColPublicationYear]
			assert.Equal(t, tt.wantSet, present)
			if tt.wantSet {
				assert.Equal(t, tt.wantYear, year)
			}
		})
	}
}

func TestNormalizeIndependentPriceFields(t *testing.T) {
	raw := `{"id":"pr","saleInfo":{"listPrice":{"amount":5},"retailPrice":{"currencyCode":"EUR"}}}`
	rec, err := Normalize(json.RawMessage(raw), "Economics")
	require.NoError(t, err)

	assert.Equal(t, 5.0, rec.Attrs[ColListPriceAmount])
	assert.NotContains(t, rec.Attrs, ColListPriceCurrency)
	assert.NotContains(t, rec.Attrs, ColRetailPriceAmount)
	assert.Equal(t, "EUR", rec.Attrs[ColRetailPriceCurrency])
}

func TestNormalizeImageLinksRoundTrip(t *testing.T) {
	raw := `{"id":"img","volumeInfo":{"imageLinks":{"thumbnail":"t","extra":{"nested":[1,2]}}}}`
	rec, err := Normalize(json.RawMessage(raw), "Cooking Books")
	require.NoError(t, err)

	blob, ok := rec.Attrs[ColImageLinks].(string)
	require.True(t, ok)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(blob), &decoded))
	assert.Equal(t, map[string]any{
		"thumbnail": "t",
		"extra":     map[string]any{"nested": []any{1.0, 2.0}},
	}, decoded)
}

func TestNormalizeDropsBlankNames(t *testing.T) {
	raw := `{"id":"bn","volumeInfo":{"authors":["  ","Ada Lovelace",""],"categories":[" Computers "],"publisher":"  "}}`
	rec, err := Normalize(json.RawMessage(raw), "Python programming")
	require.NoError(t, err)

	assert.Equal(t, []string{"Ada Lovelace"}, rec.Authors)
	assert.Equal(t, []string{"Computers"}, rec.Categories)
	assert.Empty(t, rec.Publisher)
	assert.Equal(t, "Ada Lovelace", rec.Attrs[ColAuthors])
	assert.Equal(t, "Computers", rec.Attrs[ColCategories])
}

func TestNormalizeBlankOnlyNamesUsePlaceholder(t *testing.T) {
	raw := `{"id":"p1","volumeInfo":{"authors":[""," Ann "],"categories":["   "]}}`
	rec, err := Normalize(json.RawMessage(raw), "Physics")
	require.NoError(t, err)

	assert.Equal(t, []string{"Ann"}, rec.Authors)
	assert.Empty(t, rec.Categories)
	assert.Equal(t, "Ann", rec.Attrs[ColAuthors])
	assert.Equal(t, Placeholder, rec.Attrs[ColCategories])
}

func TestNormalizeErrors(t *testing.T) {
	_, err := Normalize(json.RawMessage(`{"volumeInfo":{"title":"orphan"}}`), "Physics")
	require.ErrorIs(t, err, ErrMissingID)

	_, err = Normalize(json.RawMessage(`{"id":"   "}`), "Physics")
	require.ErrorIs(t, err, ErrMissingID)

	_, err = Normalize(json.RawMessage(`{"id": 42`), "Physics")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse catalog item")

	_, err = Normalize(json.RawMessage(`{"id":"x","volumeInfo":{"pageCount":"many"}}`), "Physics")
	require.Error(t, err)
}

func TestPublicationYear(t *testing.T) {
	year, ok := PublicationYear(" 1999 -04")
	assert.True(t, ok)
	assert.Equal(t, 1999, year)

	_, ok = PublicationYear("-2000")
	assert.False(t, ok)
}
