// Package viewer loads stored images back into memory and renders them as a
// grid image for inspection.
package viewer
