package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/shortlist/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type received struct {
	jobID string
	names []string
	data  []string
}

func fakeService(t *testing.T, status int, body any, got *received) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/process_cvs" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if got != nil {
			got.jobID = r.FormValue("job_id")
			for _, fh := range r.MultipartForm.File["cv_files"] {
				f, _ := fh.Open()
				b, _ := io.ReadAll(f)
				_ = f.Close()
				got.names = append(got.names, fh.Filename)
				got.data = append(got.data, string(b))
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientSubmit(t *testing.T) {
	Convey("Given a running service", t, func() {
		ctx := context.Background()

		Convey("files are posted as cv_files parts with job_id", func() {
			var got received
			srv := fakeService(t, http.StatusOK, []map[string]any{
				{"name": "alice", "score": 4, "shortlisted": true},
				{"name": "bob", "score": 1},
			}, &got)

			c := NewClient(srv.URL+"/", time.Second)
			rs, err := c.Submit(ctx, "1021", []File{
				{Name: "alice.pdf", Data: []byte("A")},
				{Name: "bob.pdf", Data: []byte("B")},
			})

			So(err, ShouldBeNil)
			So(got.jobID, ShouldEqual, "1021")
			So(got.names, ShouldResemble, []string{"alice.pdf", "bob.pdf"})
			So(got.data, ShouldResemble, []string{"A", "B"})
			So(rs, ShouldResemble, []Result{
				{Name: "alice", Score: 4, Shortlisted: true},
				{Name: "bob", Score: 1},
			})
		})

		Convey("a non 2xx status is an error carrying the message", func() {
			srv := fakeService(t, http.StatusTooManyRequests,
				map[string]string{"code": "backpressure", "message": "screening queue is full"}, nil)

			_, err := NewClient(srv.URL, time.Second).Submit(ctx, "1021", []File{{Name: "a.pdf"}})

			So(errors.Is(err, ErrStatus), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "429")
			So(err.Error(), ShouldContainSubstring, "screening queue is full")
		})

		Convey("a transport failure is an error", func() {
			srv := fakeService(t, http.StatusOK, []any{}, nil)
			srv.Close()

			_, err := NewClient(srv.URL, time.Second).Submit(ctx, "1021", []File{{Name: "a.pdf"}})
			So(errors.Is(err, ErrTransport), ShouldBeTrue)
		})

		Convey("input is validated before any request", func() {
			c := NewClient("http://127.0.0.1:1", time.Second)

			_, err := c.Submit(ctx, "", []File{{Name: "a.pdf"}})
			So(err, ShouldEqual, ErrNoJobID)

			_, err = c.Submit(ctx, "1021", nil)
			So(err, ShouldEqual, ErrNoFiles)
		})
	})
}

func TestRender(t *testing.T) {
	Convey("Render", t, func() {
		var buf bytes.Buffer

		Convey("an empty list prints the no candidates line", func() {
			So(Render(&buf, nil), ShouldBeNil)
			So(buf.String(), ShouldEqual, "No candidates shortlisted.\n")
		})

		Convey("each candidate gets one line", func() {
			So(Render(&buf, []Result{{Name: "alice", Score: 4}, {Name: "bob", Score: 0}}), ShouldBeNil)
			So(buf.String(), ShouldEqual, "- alice - Score: 4\n- bob - Score: 0\n")
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Run reads files, submits and renders", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "carol.pdf")
		So(os.WriteFile(path, []byte("%PDF-1.4"), 0o600), ShouldBeNil)

		var got received
		srv := fakeService(t, http.StatusOK, []map[string]any{{"name": "carol", "score": 3}}, &got)

		var out bytes.Buffer
		err := Run(context.Background(), &Config{
			BaseURL: srv.URL,
			JobID:   "developer",
			Files:   []string{path},
			Timeout: time.Second,
		}, &out)

		So(err, ShouldBeNil)
		So(got.names, ShouldResemble, []string{"carol.pdf"})
		So(out.String(), ShouldEqual, "- carol - Score: 3\n")

		Convey("a missing file fails before submitting", func() {
			err := Run(context.Background(), &Config{
				BaseURL: srv.URL, JobID: "developer", Files: []string{filepath.Join(dir, "nope.pdf")},
			}, &out)
			So(err, ShouldNotBeNil)
		})
	})
}
