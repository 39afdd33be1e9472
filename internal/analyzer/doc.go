// Package analyzer turns a single fetched HTML page into a structural summary.
//
// The summary covers the HTML version announced by the doctype, the document
// title, heading counts for h1..h6, a three-way link classification and a
// heuristic login-form check. Every extraction tolerates missing markup: an
// absent <title> yields a nil title and anchors without href are skipped, so
// a page is either summarized completely or reported as a Failure.
package analyzer
