// Package txn defines the opaque transaction handle threaded through
// bptree.Tree's Insert, Remove, GetValue, Begin and Seek. Per spec.md §1/§6, a transaction context
// exists and is passed along but never interpreted inside the tree or
// buffer pool — grounded on the teacher's storage_engine/transaction_manager
// as "a handle exists, the index layer doesn't look inside it."
package txn

// Context is an opaque per-call transaction handle. The zero value,
// Background(), represents "no transaction" and is what single-writer
// callers pass when they have nothing richer to thread through.
type Context struct {
	id int64
}

// Background returns the no-op transaction context.
func Background() Context { return Context{} }

// New wraps an externally-assigned transaction id.
func New(id int64) Context { return Context{id: id} }

// ID returns the wrapped transaction id, 0 for Background().
func (c Context) ID() int64 { return c.id }
