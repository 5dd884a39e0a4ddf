// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Export writes every record to w as zstd-compressed JSON lines and returns
// the number of records written.
func (s *Store) Export(ctx context.Context, w io.Writer) (int, error) {
	recs, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return 0, fmt.Errorf("creating zstd writer: %w", err)
	}
	enc := json.NewEncoder(zw)
	for i := range recs {
		if err := enc.Encode(&recs[i]); err != nil {
			_ = zw.Close()
			return i, fmt.Errorf("encoding record %d: %w", recs[i].ID, err)
		}
	}
	if err := zw.Close(); err != nil {
		return len(recs), fmt.Errorf("finishing export: %w", err)
	}
	return len(recs), nil
}

// ReadExport decodes a stream produced by Export.
func ReadExport(r io.Reader) ([]KeyRecord, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	defer zr.Close()

	var out []KeyRecord
	dec := json.NewDecoder(zr)
	for {
		var rec KeyRecord
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return out, fmt.Errorf("decoding export: %w", err)
		}
		out = append(out, rec)
	}
}
