package html2pdf

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pdfMerger concatenates the pages of several PDFs, in order, into one PDF.
type pdfMerger interface {
	Merge(docs [][]byte) ([]byte, error)
}

// Compile-time interface check.
var _ pdfMerger = (*pdfcpuMerger)(nil)

var disableConfigDirOnce sync.Once

// pdfcpuMerger implements pdfMerger in memory with pdfcpu.
type pdfcpuMerger struct{}

func newPDFCPUMerger() *pdfcpuMerger {
	// pdfcpu would otherwise create a config directory under $HOME, which
	// read-only containers do not have.
	disableConfigDirOnce.Do(api.DisableConfigDir)
	return &pdfcpuMerger{}
}

// Merge appends the pages of every document to the pages of the first.
func (m *pdfcpuMerger) Merge(docs [][]byte) ([]byte, error) {
	switch len(docs) {
	case 0:
		return nil, ErrNoDocuments
	case 1:
		return docs[0], nil
	}

	readers := make([]io.ReadSeeker, len(docs))
	for i, doc := range docs {
		readers[i] = bytes.NewReader(doc)
	}

	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMerge, err)
	}
	return out.Bytes(), nil
}

// PageCount returns the number of pages of a PDF document.
func PageCount(pdf []byte) (int, error) {
	disableConfigDirOnce.Do(api.DisableConfigDir)

	n, err := api.PageCount(bytes.NewReader(pdf), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("counting pages: %w", err)
	}
	return n, nil
}
