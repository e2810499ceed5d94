package pdftext_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/shortlist/internal/adapters/pdftext"
	"github.com/okian/shortlist/internal/testutil/cvfixture"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPDFExtractor(t *testing.T) {
	Convey("Given a PDF extractor", t, func() {
		ex := pdftext.New()
		ctx := context.Background()

		Convey("When extracting a generated CV", func() {
			cv := cvfixture.PDF("Ada Lovelace", "Skills: Python, Flask, SQL")
			text, err := ex.Extract(ctx, cv)

			Convey("Then the page text is returned", func() {
				So(err, ShouldBeNil)
				So(text, ShouldContainSubstring, "Ada Lovelace")
				So(text, ShouldContainSubstring, "Python")
				So(text, ShouldContainSubstring, "SQL")
			})
		})

		Convey("When the input is not a PDF", func() {
			_, err := ex.Extract(ctx, []byte("plain text resume"))

			Convey("Then ErrNotPDF is returned", func() {
				So(errors.Is(err, pdftext.ErrNotPDF), ShouldBeTrue)
			})
		})

		Convey("When the input has a PDF header but is truncated", func() {
			_, err := ex.Extract(ctx, []byte("%PDF-1.4\n1 0 obj\n<<"))

			Convey("Then ErrExtract is returned", func() {
				So(errors.Is(err, pdftext.ErrExtract), ShouldBeTrue)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := ex.Extract(cctx, cvfixture.PDF("x"))

			Convey("Then extraction is skipped", func() {
				So(errors.Is(err, pdftext.ErrExtract), ShouldBeTrue)
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestIsPDF(t *testing.T) {
	Convey("Given raw bytes", t, func() {
		So(pdftext.IsPDF([]byte("%PDF-1.7")), ShouldBeTrue)
		So(pdftext.IsPDF([]byte("\n %PDF-1.4")), ShouldBeTrue)
		So(pdftext.IsPDF([]byte("PK\x03\x04")), ShouldBeFalse)
		So(pdftext.IsPDF(nil), ShouldBeFalse)
	})
}
