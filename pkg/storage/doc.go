// Package storage manages the files under the data directory.
//
// Layout, all siblings under one root:
//
//	<data-dir>/<id>.jpg     stored image, overwritten when the id is saved again
//	<data-dir>/<label>.txt  destination log, one stored path per line, append-only
//
// Images are written atomically: encoded to a temporary file in the same
// directory and renamed onto the destination.
//
//	manager := storage.NewManager("./data", 95, nil)
//
//	name, err := storage.ResolveName("", "https://images.unsplash.com/photo-1?ixid=ABC123")
//	// name == "ABC123"
//
//	path, err := manager.SaveImage(img, name)
//	_, err = manager.AppendDestinations("cat", []string{path})
package storage
