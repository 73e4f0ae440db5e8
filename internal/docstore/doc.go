// Package docstore defines the document store driver used by the inventory API.
//
// A Driver hands out short-lived connections. A connection exposes named
// collections of JSON documents addressed by a string key. Callers acquire a
// connection for one logical operation and close it on every exit path:
//
//	conn, err := driver.Connect(ctx)
//	if err != nil {
//	    return err
//	}
//	defer conn.Close()
//
//	roles := conn.Collection("roles")
//	doc, err := roles.Get(ctx, "admin")
//
// Pooling is the backend's concern. Three backends ship with the module:
//   - gormstore: a "documents" table through gorm (sqlite, mysql, postgres)
//   - redisstore: one redis hash per collection
//   - badgerstore: an embedded badger key/value database
//
// Update is the only read-modify-write primitive and every backend makes it
// atomic for a single document.
package docstore
