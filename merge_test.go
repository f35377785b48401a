package html2pdf

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// minimalPDF builds a valid PDF with one empty page per width, in order.
// Pages are square; their widths identify them after a merge.
func minimalPDF(t *testing.T, widths ...int) []byte {
	t.Helper()

	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := ""
	for i := range widths {
		kids += fmt.Sprintf("%d 0 R ", 3+i)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(widths)))
	for _, w := range widths {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Resources << >> >>", w, w))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	return buf.Bytes()
}

func pageWidths(t *testing.T, pdf []byte) []float64 {
	t.Helper()

	dims, err := api.PageDims(bytes.NewReader(pdf), model.NewDefaultConfiguration())
	if err != nil {
		t.Fatalf("PageDims() error = %v", err)
	}
	widths := make([]float64, len(dims))
	for i, d := range dims {
		widths[i] = d.Width
	}
	return widths
}

func TestPDFCPUMerger_Merge(t *testing.T) {
	t.Parallel()

	merger := newPDFCPUMerger()

	a := minimalPDF(t, 100)
	b := minimalPDF(t, 200)
	c := minimalPDF(t, 300, 400)

	merged, err := merger.Merge([][]byte{a, b, c})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	n, err := PageCount(merged)
	if err != nil {
		t.Fatalf("PageCount() error = %v", err)
	}
	if n != 4 {
		t.Errorf("PageCount() = %d, want 4", n)
	}

	want := []float64{100, 200, 300, 400}
	got := pageWidths(t, merged)
	if len(got) != len(want) {
		t.Fatalf("page widths = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("page %d width = %v, want %v (input order)", i+1, got[i], want[i])
		}
	}
}

func TestPDFCPUMerger_TwoSinglePageDocuments(t *testing.T) {
	t.Parallel()

	merged, err := newPDFCPUMerger().Merge([][]byte{minimalPDF(t, 100), minimalPDF(t, 200)})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	n, err := PageCount(merged)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("PageCount() = %d, want 2", n)
	}
}

func TestPDFCPUMerger_Edges(t *testing.T) {
	t.Parallel()

	merger := newPDFCPUMerger()

	t.Run("no documents", func(t *testing.T) {
		t.Parallel()

		_, err := merger.Merge(nil)
		if !errors.Is(err, ErrNoDocuments) {
			t.Errorf("Merge(nil) error = %v, want ErrNoDocuments", err)
		}
	})

	t.Run("single document is returned as is", func(t *testing.T) {
		t.Parallel()

		doc := minimalPDF(t, 100)
		got, err := merger.Merge([][]byte{doc})
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, doc) {
			t.Error("Merge() of one document should return it unchanged")
		}
	})

	t.Run("invalid document", func(t *testing.T) {
		t.Parallel()

		_, err := merger.Merge([][]byte{minimalPDF(t, 100), []byte("not a pdf")})
		if !errors.Is(err, ErrMerge) {
			t.Errorf("Merge() error = %v, want ErrMerge", err)
		}
	})
}

func TestPageCount_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := PageCount([]byte("garbage")); err == nil {
		t.Error("PageCount() of garbage should fail")
	}
}
