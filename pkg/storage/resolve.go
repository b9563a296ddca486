package storage

import (
	"net/url"

	errs "imgdataset/pkg/errors"
)

// NameParam is the query parameter used as an image id when no explicit
// name is given
const NameParam = "ixid"

// ResolveName returns explicit when it is non-empty, otherwise the ixid
// query parameter of sourceURL.
func ResolveName(explicit, sourceURL string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	u, err := url.Parse(sourceURL)
	if err != nil {
		return "", errs.MissingKey(sourceURL, err)
	}

	name := u.Query().Get(NameParam)
	if name == "" {
		return "", errs.MissingKey(sourceURL, nil)
	}
	return name, nil
}
