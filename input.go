package neutralfit

import (
	"encoding/csv"
	"io"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error
	for _, c := range m {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenDelimited opens a local or gs:// table, transparently decompresses it,
// and returns a csv.Reader configured with the detected delimiter. The caller
// must Close the returned io.Closer.
func OpenDelimited(path string, client *storage.Client) (*csv.Reader, io.Closer, error) {
	f, err := MaybeOpenSeekerFromGoogleStorage(path, client)
	if err != nil {
		return nil, nil, err
	}

	r, err := MaybeDecompressReadCloser(f)
	if err != nil {
		f.Close()
		return nil, nil, pfx.Err(err)
	}

	delim := DetermineDelimiter(r)
	r.Close()

	// The decompressed stream cannot seek, so rewind the underlying file and
	// decompress again.
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, nil, pfx.Err(err)
	}
	r, err = MaybeDecompressReadCloser(f)
	if err != nil {
		f.Close()
		return nil, nil, pfx.Err(err)
	}

	rdr := csv.NewReader(r)
	rdr.Comma = delim
	rdr.FieldsPerRecord = -1
	rdr.LazyQuotes = true

	return rdr, multiCloser{r, f}, nil
}
