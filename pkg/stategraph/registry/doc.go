// Package registry provides a generic thread-safe map keyed by a
// comparable type, used to hold named collaborators such as the tool
// handlers an agent loop dispatches to.
//
// # Basic Usage
//
//	handlers := registry.New[string, ToolHandler]()
//	handlers.Register("word_count", countWords)
//	handlers.Register("search", runSearch)
//
//	h, ok := handlers.Get("word_count")
//	if !ok {
//	    // tool is not registered; report back to the caller
//	}
//
// Registering an existing key replaces the earlier entry, so a test
// can swap a real handler for a stub.
//
// # Thread Safety
//
// All methods are safe for concurrent use; reads take a shared lock,
// so lookups from parallel branches do not serialize. Range iterates
// over a snapshot, which makes it safe to Register or Delete entries
// mid-iteration:
//
//	handlers.Range(func(name string, h ToolHandler) bool {
//	    if deprecated(name) {
//	        handlers.Delete(name)
//	    }
//	    return true
//	})
package registry
