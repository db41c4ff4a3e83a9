// Package seed embeds the demo data shipped with the binary: the restaurant
// catalog and the promo code list, both gzip-compressed.
package seed

import (
	"bytes"
	_ "embed"
	"io"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
)

//go:embed catalog.json.gz
var catalogGz []byte

//go:embed promocodes.txt.gz
var promoCodesGz []byte

// OpenCatalog returns a reader over the decompressed catalog seed JSON.
// The caller must close it.
func OpenCatalog() (io.ReadCloser, error) {
	r, err := pgzip.NewReader(bytes.NewReader(catalogGz))
	if err != nil {
		return nil, errors.Wrap(err, "open catalog seed")
	}
	return r, nil
}

// OpenPromoCodes returns a reader over the decompressed newline-delimited
// promo code list. The caller must close it.
func OpenPromoCodes() (io.ReadCloser, error) {
	r, err := pgzip.NewReader(bytes.NewReader(promoCodesGz))
	if err != nil {
		return nil, errors.Wrap(err, "open promo code seed")
	}
	return r, nil
}
