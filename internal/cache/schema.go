package cache

// GoogleBooksSearchTable caches one search window per row.
const GoogleBooksSearchTable = "googlebooks_search_cache"

// GoogleBooksSearchCacheSchema defines the schema for cached Google Books search windows.
// cache_key is "query|startIndex|maxResults".
const GoogleBooksSearchCacheSchema = `
CREATE TABLE IF NOT EXISTS googlebooks_search_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_googlebooks_search_cached_at ON googlebooks_search_cache(cached_at);
`

// AllCacheSchemas contains all cache table schemas for easy initialization
var AllCacheSchemas = []string{
	GoogleBooksSearchCacheSchema,
}

// ValidCacheTableNames is the whitelist of allowed cache table names.
// Table names are interpolated into SQL, so nothing else may reach a query.
var ValidCacheTableNames = map[string]bool{
	GoogleBooksSearchTable: true,
}
