// Package fetcher retrieves images and pages over HTTP.
//
// A Client performs exactly one blocking GET per call. There is no retry:
// a transport error or a non-200 status is reported as a network error and
// a body that does not decode as an image is reported as a decode error,
// both as *errors.Error values from imgdataset/pkg/errors.
//
//	client := fetcher.NewClient(30*time.Second, "", nil)
//
//	img, err := client.Fetch("https://images.unsplash.com/photo-1?ixid=abc")
//	if err != nil {
//	    // errors.TypeOf(err) is network or decode
//	}
//
//	probe, _ := client.Probe("https://unsplash.com")
//	fmt.Println(probe.StatusCode, probe.Encoding)
//
//	urls, _ := client.ScanPage("https://unsplash.com/s/photos/cat")
//
// JPEG, PNG, GIF, BMP, TIFF and WebP bodies are decoded; EXIF orientation
// is applied on decode.
package fetcher
