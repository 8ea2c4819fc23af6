package query

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iafilius/ChartEngine/src/logging"
)

// MaxLineBytes caps one JSONL line.
const MaxLineBytes = 64 * 1024 * 1024

// Load reads query results from path. Files ending in .jsonl hold one Result
// per line; anything else is a JSON Document.
func Load(path string) ([]Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var results []Result
	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		results, err = DecodeLines(f)
	} else {
		results, err = Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return results, nil
}

// Decode reads a JSON Document.
func Decode(r io.Reader) ([]Result, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	if len(doc.Queries) == 0 {
		return nil, ErrNoQueries
	}
	return doc.Queries, nil
}

// DecodeLines reads one Result per line. Blank lines and full-line //
// comments are skipped; malformed lines are logged and skipped.
func DecodeLines(r io.Reader) ([]Result, error) {
	reader := bufio.NewReader(r)
	var results []Result
	lineNo := 0
readLoop:
	for {
		// One logical line may span several internal buffers.
		var line []byte
		for {
			part, rerr := reader.ReadBytes('\n')
			if len(part) > 0 {
				if len(line)+len(part) > MaxLineBytes {
					return nil, fmt.Errorf("line %d too large: exceeds %d bytes", lineNo+1, MaxLineBytes)
				}
				line = append(line, part...)
			}
			if rerr == nil {
				break
			}
			if errors.Is(rerr, io.EOF) {
				if len(line) == 0 {
					break readLoop
				}
				break
			}
			return nil, fmt.Errorf("read line %d: %w", lineNo+1, rerr)
		}
		lineNo++
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 || bytes.HasPrefix(trimmed, []byte("//")) {
			continue
		}
		var res Result
		if err := json.Unmarshal(trimmed, &res); err != nil {
			logging.Warnf("[query] skipping malformed line %d: %v", lineNo, err)
			continue
		}
		results = append(results, res)
	}
	if len(results) == 0 {
		return nil, ErrNoQueries
	}
	return results, nil
}
