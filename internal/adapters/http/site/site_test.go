package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSiteHandler(t *testing.T) {
	Convey("Given a site handler", t, func() {
		ctx := context.Background()
		r := mux.NewRouter()

		Convey("When registering the site handler", func() {
			Register(ctx, r)

			get := func(path string) *httptest.ResponseRecorder {
				w := httptest.NewRecorder()
				r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
				return w
			}

			Convey("Then / serves the upload form", func() {
				w := get("/")

				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				body := w.Body.String()
				So(body, ShouldContainSubstring, `id="cv-upload-form"`)
				So(body, ShouldContainSubstring, `name="job_id"`)
				So(body, ShouldContainSubstring, `name="cv_files"`)
				So(body, ShouldContainSubstring, "multiple")
				So(body, ShouldContainSubstring, `id="results-container"`)
				So(body, ShouldContainSubstring, "/static/js/main.js")
			})

			Convey("And the form script posts to /process_cvs", func() {
				w := get("/static/js/main.js")

				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "javascript")
				body := w.Body.String()
				So(body, ShouldContainSubstring, "fetch('/process_cvs'")
				So(body, ShouldContainSubstring, "No candidates shortlisted.")
				So(body, ShouldContainSubstring, "${candidate.name} - Score: ${candidate.score}")
				So(body, ShouldContainSubstring, "console.error")
			})

			Convey("And unknown paths are not found", func() {
				So(get("/some-asset").Code, ShouldEqual, http.StatusNotFound)
				So(get("/static/js/missing.js").Code, ShouldEqual, http.StatusNotFound)
				So(get("/static/js/").Code, ShouldEqual, http.StatusNotFound)
			})

			Convey("And POST / is not routed", func() {
				w := httptest.NewRecorder()
				r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestSiteErrors(t *testing.T) {
	Convey("Given site error constants", t, func() {
		So(ErrServe, ShouldNotBeNil)
		So(ErrServe.Error(), ShouldEqual, "upload page serve failed")
	})
}

func TestSiteHandlerWithNilRouter(t *testing.T) {
	Convey("Given a nil router", t, func() {
		Convey("Then registering panics", func() {
			So(func() {
				Register(context.Background(), nil)
			}, ShouldPanic)
		})
	})
}

func TestEmbeddedFS(t *testing.T) {
	Convey("Given the embedded file system", t, func() {
		f, err := FS().Open("js/main.js")
		So(err, ShouldBeNil)
		defer f.Close()

		page, err := Index()
		So(err, ShouldBeNil)
		So(len(page), ShouldBeGreaterThan, 0)
	})
}
