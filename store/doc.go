// Package store provides a namespaced, reducer-based state container.
//
// Reducers are registered under dotted action names. The segments before
// the last one form a namespace that addresses a node in the state tree;
// the reducer receives that node and returns its next value:
//
//	s, _ := store.New(store.WithReducers(map[string]store.Reducer{
//	    "routes.HOME": store.ReducerFunc(func(state, _ any) (any, error) {
//	        return map[string]any{"url": "/"}, nil
//	    }),
//	}))
//	_ = s.Dispatch("routes.HOME", nil)
//	s.State()            // map[routes:map[url:/]]
//	s.StateAt("routes")  // map[url:/]
//
// # Writing results back
//
// After the reducer returns, the result is applied with one MergeStrategy:
//
//   - MergeMapping: both the current node and the result are mappings; the
//     result's keys are copied into the existing node, which keeps its
//     identity.
//   - ReplaceByParentKey: otherwise, for namespaced actions, the result is
//     stored in the parent mapping under the last namespace segment.
//   - ReplaceRoot: otherwise the result becomes the new root. A nil
//     result leaves the root unchanged, so the root is never nil.
//
// Missing intermediate mappings are created before the reducer runs. An
// action that would descend into an existing non-mapping value fails with
// ErrConflict and the value is left untouched. The conflict is returned as
// a *state.ConflictError carrying the action name, while reducer failures
// are wrapped in *ActionError.
//
// # Notifications
//
// Every dispatch notifies channels from most to least specific. For
// "a.b.C" these are "a.b.C", "a.b", "a" and finally "*". Each listener
// receives the node addressed by its channel's namespace, so a listener on
// "a.b.C" gets the a.b node, one on "a" gets the root, and the wildcard
// always gets the root. Views are live references into the tree.
//
// # Method names
//
// Each concept has one method. Callers porting code that uses other names
// should map them as follows:
//
//	add, reducer, addReducer      -> Register
//	update, replaceReducer        -> Replace
//	addOrReplaceReducer           -> Upsert
//	remove                        -> Deregister
//	do, act                       -> Dispatch
//	get, getState                 -> State, StateAt
//	previous, getPrevious         -> PreviousState, PreviousStateAt
package store
