// Package searchmap maps Go entities onto full-text index documents and
// compiles typed predicates into native engine queries.
//
// Every mapped property is backed by one index field with its own storage
// and indexing policy. Predicates over properties are translated per field:
// analyzed fields match phrases, exact fields match case-folded terms,
// numeric fields answer range queries, and null checks work on every field.
//
//	type Note struct {
//	    ID    string    `searchmap:"id"`
//	    Title string    `searchmap:"title,text"`
//	    Owner string    `searchmap:"owner"`
//	    Rank  int64     `searchmap:"rank"`
//	    Added time.Time `searchmap:"added,noindex"`
//	}
//
//	client, _ := searchmap.New() // in-memory bleve engine
//	notes, _ := searchmap.NewIndex[Note](client)
//	_ = notes.Ensure(ctx)
//	_ = notes.PutBatch(ctx, []Note{...})
//
//	hits, _ := notes.Search().
//	    Where(searchmap.And(
//	        searchmap.Eq("Title", "quarterly report"),
//	        searchmap.Ge("Rank", 3),
//	    )).
//	    Limit(10).
//	    Do(ctx)
//
// Use WithRedis to run the same queries on Redis with the query engine.
package searchmap
