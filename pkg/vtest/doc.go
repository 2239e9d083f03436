// Package vtest provides testing helpers for Loom views.
//
// The vtest package reduces boilerplate when testing view functions by
// rendering onto an in-memory surface and asserting on the serialized
// output.
//
// # Render Assertions
//
//	func TestGreeting(t *testing.T) {
//	    vtest.ExpectContains(t, Greeting("Ada"), "Hello, Ada")
//	    vtest.ExpectElement(t, Greeting("Ada"), "h1")
//	}
//
// # Interaction Harness
//
// The Harness mounts a view, fires events against it, and re-renders
// through the differ, so tests exercise the same path production does:
//
//	h := vtest.NewHarness(t, view(model))
//	h.Fire("click", nil)
//	model.apply(h.Messages()...)
//	h.Render(view(model))
//	h.ExpectHTML("<span>1</span>")
package vtest
