// Package dictionary persists id→URL mappings, one JSON object per label.
//
// A dictionary file lives at <data-dir>/<label>.json and holds a single flat
// object whose key order is the order records were first added:
//
//	{
//	  "ABC123": "https://images.unsplash.com/photo-1?ixid=ABC123",
//	  "DEF456": "https://images.unsplash.com/photo-2?ixid=DEF456"
//	}
//
// Saving merges into whatever is already on disk, so repeated runs only ever
// add or update records:
//
//	store := dictionary.NewStore("./data", nil)
//	dict := dictionary.FromEntries(dictionary.Entry{ID: "a", URL: "u1"})
//	path, err := store.Save(dict, "cat")
package dictionary
