package google

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDriveClient(t *testing.T) {
	Convey("Given a fake Drive API", t, func() {
		var uploadBody string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/files/abc"):
				_, _ = w.Write([]byte("%PDF-1.4 fake"))
			case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/files/big"):
				_, _ = w.Write([]byte(strings.Repeat("x", 64)))
			case r.Method == http.MethodPost && strings.Contains(r.URL.Path, "/files"):
				b, _ := io.ReadAll(r.Body)
				uploadBody = string(b)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"id":"new-1","webViewLink":"https://drive.google.com/file/d/new-1/view"}`))
			default:
				http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
			}
		}))
		defer srv.Close()

		ctx := context.Background()
		d, err := NewDrive(ctx, testClientOptions(srv.URL), WithFolder("folder-9"), WithMaxDownloadBytes(32))
		So(err, ShouldBeNil)

		Convey("When downloading by share link", func() {
			data, err := d.Download(ctx, "https://drive.google.com/file/d/abc/view?usp=sharing")

			Convey("Then the media bytes are returned", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, "%PDF-1.4 fake")
			})
		})

		Convey("When the file exceeds the size bound", func() {
			_, err := d.Download(ctx, "https://drive.google.com/file/d/big/view")
			So(errors.Is(err, ErrDownload), ShouldBeTrue)
		})

		Convey("When the file does not exist", func() {
			_, err := d.Download(ctx, "https://drive.google.com/file/d/missing/view")
			So(errors.Is(err, ErrDownload), ShouldBeTrue)
		})

		Convey("When the link has no id", func() {
			_, err := d.Download(ctx, "nothing")
			So(errors.Is(err, ErrInvalidLink), ShouldBeTrue)
		})

		Convey("When uploading", func() {
			up, err := d.Upload(ctx, "1021_Ada.pdf", strings.NewReader("%PDF-1.4 cv"))

			Convey("Then the id and link are returned", func() {
				So(err, ShouldBeNil)
				So(up.ID, ShouldEqual, "new-1")
				So(up.WebLink, ShouldEqual, "https://drive.google.com/file/d/new-1/view")
				So(uploadBody, ShouldContainSubstring, "1021_Ada.pdf")
				So(uploadBody, ShouldContainSubstring, "folder-9")
			})
		})
	})
}
