// Package queries holds the read side. Handlers read straight from the
// database with SQL and return flat views; they never load aggregates.
package queries
