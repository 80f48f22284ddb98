package codeglyphx

import (
	"fmt"
	"sort"
	"sync"

	"github.com/EvotecIT/CodeGlyphX-sub011/bitutil"
)

// readerFactory and writerFactory are extension points so symbology packages
// can register themselves from init.
type readerFactory func() Reader

type writerFactory func() Writer

var (
	registryMu      sync.RWMutex
	readerFactories = map[Format]readerFactory{}
	writerFactories = map[Format]writerFactory{}
)

// RegisterReader registers a reader factory for the given format.
func RegisterReader(format Format, factory func() Reader) {
	registryMu.Lock()
	defer registryMu.Unlock()
	readerFactories[format] = factory
}

// RegisterWriter registers a writer factory for the given format.
func RegisterWriter(format Format, factory func() Writer) {
	registryMu.Lock()
	defer registryMu.Unlock()
	writerFactories[format] = factory
}

// Encode encodes contents with the writer registered for format.
func Encode(contents string, format Format, opts *EncodeOptions) (*bitutil.BitMatrix, error) {
	registryMu.RLock()
	factory, ok := writerFactories[format]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no writer registered for format %s", ErrInvalidInput, format)
	}
	return factory().Encode(contents, opts)
}

// DecodeMatrix tries every registered reader allowed by opts, in format
// order, and returns the first success. On failure the most advanced
// diagnostics are returned with their error.
func DecodeMatrix(bits *bitutil.BitMatrix, opts *DecodeOptions) (*Result, Diagnostics, error) {
	readers := buildReaders(opts)
	if len(readers) == 0 {
		return nil, NewDiagnostics(), fmt.Errorf("%w: no reader registered", ErrNotFound)
	}
	best := NewDiagnostics()
	var bestErr error
	for _, reader := range readers {
		result, diag, err := reader.DecodeMatrix(bits, opts)
		if err == nil {
			return result, diag, nil
		}
		if bestErr == nil || diag.Better(best) {
			best, bestErr = diag, err
		}
	}
	return nil, best, bestErr
}

func buildReaders(opts *DecodeOptions) []Reader {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var formats []Format
	if opts != nil && len(opts.PossibleFormats) > 0 {
		formats = append(formats, opts.PossibleFormats...)
	} else {
		for f := range readerFactories {
			formats = append(formats, f)
		}
		sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	}

	var readers []Reader
	for _, f := range formats {
		if factory, ok := readerFactories[f]; ok {
			readers = append(readers, factory())
		}
	}
	return readers
}
