// Package template tokenizes wiki template invocations, normalizes their
// parameters and reconstructs text from the structured form.
//
// A template is any {{name ...}} span whose name starts with a letter. The
// first closing "}}" terminates a match, so templates nested inside other
// templates are not supported: the outer template is cut at the inner
// template's closing braces. Parameters are split on "|" without awareness of
// links or other markup carrying their own pipes.
//
// Every function in this package is pure over its arguments. A Store belongs
// to one cycle; distinct texts may be processed in parallel as long as each
// run owns its store.
package template
