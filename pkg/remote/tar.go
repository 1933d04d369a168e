package remote

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"
)

// archiveMember is one regular file extracted from a remote tar stream.
// Names are as stored in the archive, without the leading slash that was
// stripped by "tar -C /".
type archiveMember struct {
	name    string
	content []byte
	size    int64
	mtime   time.Time
}

// decodeArchive reads a gzip-compressed tar stream and returns its regular
// file members. A partially readable archive yields the members decoded so
// far together with the error.
func decodeArchive(data []byte) ([]archiveMember, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive stream: %w", err)
	}
	defer gz.Close()

	var members []archiveMember
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return members, nil
		}
		if err != nil {
			return members, fmt.Errorf("failed to read archive member: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			return members, fmt.Errorf("failed to read archive member %q: %w", hdr.Name, err)
		}
		members = append(members, archiveMember{
			name:    hdr.Name,
			content: content,
			size:    hdr.Size,
			mtime:   hdr.ModTime,
		})
	}
}

func (m archiveMember) metadata() Metadata {
	return Metadata{
		Size:  m.size,
		Mtime: strconv.FormatInt(m.mtime.Unix(), 10),
	}
}
