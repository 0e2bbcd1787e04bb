// Package api serves concept graphs and guided tours over HTTP.
//
// Routes:
//
//	GET    /healthz
//	GET    /graphs                     list stored graphs
//	POST   /graphs                     store a graph
//	GET    /graphs/{id}                fetch a stored graph
//	DELETE /graphs/{id}                delete a graph and its saved order
//	GET    /graphs/{id}/path           tour path (saved order reconciled)
//	POST   /tours                      start a tour session
//	GET    /tours/{sid}                session state
//	DELETE /tours/{sid}                end a session
//	POST   /tours/{sid}/next
//	POST   /tours/{sid}/prev
//	POST   /tours/{sid}/stop
//	POST   /tours/{sid}/jump           {"index": 3}
//	POST   /tours/{sid}/move           {"from": 5, "to": 1}
//	DELETE /tours/{sid}/nodes/{nid}    delete a node and repair the path
//
// Each session owns a tour controller behind a mutex, so concurrent requests
// against one session are serialized. Sessions started from a stored graph
// write reordered paths and node deletions back to the store.
package api
