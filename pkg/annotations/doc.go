// Package annotations exports label annotations for the saved dictionaries.
//
// Given labels ["cat", "dog"], every id of cat.json becomes a row with
// index 0 and every id of dog.json a row with index 1:
//
//	1.jpg, 0,
//	2.jpg, 1,
//	3.jpg, 1,
//
// There is no header and each line ends with a trailing comma. Export
// returns the label map {"0": "cat", "1": "dog"}. ExportParquet writes the
// same rows, with label names, as a parquet file.
package annotations
