// Package esmodel binds search models to an Elasticsearch or OpenSearch
// cluster and turns heterogeneous query inputs into one request shape.
//
// A search input is one of:
//   - a structured query (map[string]any or a value implementing Mapper), sent as the body
//   - a JSON-looking string (first non-blank character is '{'), sent verbatim as the body
//   - anything else, sent as the q query-string parameter
//
// Searching never performs I/O. The request runs when results are first read:
//
//	client, _ := esmodel.NewElasticsearchClient(esmodel.WithAddrs("http://localhost:9200"))
//	articles, _ := esmodel.NewModel("articles", "article", client)
//
//	resp := articles.Search("title:go", esmodel.Options{"size": 10})
//	hits, err := resp.Hits(ctx)
//
// Options override computed parameters key by key, so the index and type of
// a model can be changed per request:
//
//	resp = articles.Search(map[string]any{"query": map[string]any{"match_all": map[string]any{}}},
//	    esmodel.Options{"index": "articles-2024", "scroll": "1m"})
//
// Scroll cursors page through large result sets:
//
//	id, _ := resp.ScrollID(ctx)
//	next := articles.Scroll(id, esmodel.Options{"scroll": "1m"})
package esmodel
