package elasticsearch

// DefaultIndexName is the index used when none is configured.
const DefaultIndexName = "storefront_products"

// maxLowerTermChars is the longest value kept in the lowercased keyword
// copies: 8191 four-byte runes stay under Lucene's 32766-byte term limit.
const maxLowerTermChars = 8191

// indexMapping keeps lowercased keyword copies of name and description so
// substring wildcards and name ordering work without analysis. Values over
// maxLowerTermChars are not wildcard-matched.
const indexMapping = `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "analysis": {
      "normalizer": {
        "lowercase_normalizer": { "type": "custom", "filter": ["lowercase"] }
      }
    }
  },
  "mappings": {
    "properties": {
      "id":             { "type": "long" },
      "name":           { "type": "text", "fields": { "keyword": { "type": "keyword", "ignore_above": 256 }, "lower": { "type": "keyword", "normalizer": "lowercase_normalizer", "ignore_above": 8191 } } },
      "description":    { "type": "text", "fields": { "lower": { "type": "keyword", "normalizer": "lowercase_normalizer", "ignore_above": 8191 } } },
      "price":          { "type": "scaled_float", "scaling_factor": 100 },
      "image_url":      { "type": "keyword", "index": false },
      "category":       { "type": "keyword" },
      "average_rating": { "type": "float" },
      "created_at":     { "type": "date" }
    }
  }
}`
