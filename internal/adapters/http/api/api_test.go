package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meritboard/merit/internal/adapters/http/api"
	"github.com/meritboard/merit/internal/adapters/repository"
	"github.com/meritboard/merit/internal/domain/event"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeDeps implements api.Dependencies and api.StatsProvider in memory.
type fakeDeps struct {
	seen     map[string]struct{}
	enqueued []event.Envelope
	full     bool
	entries  []repository.Entry
}

func newFakeDeps() *fakeDeps {
	return &fakeDeps{seen: make(map[string]struct{})}
}

func (d *fakeDeps) SeenAndRecord(_ context.Context, id string) bool {
	if _, ok := d.seen[id]; ok {
		return true
	}
	d.seen[id] = struct{}{}
	return false
}

func (d *fakeDeps) Unrecord(_ context.Context, id string) {
	delete(d.seen, id)
}

func (d *fakeDeps) Enqueue(_ context.Context, e event.Envelope) bool {
	if d.full {
		return false
	}
	d.enqueued = append(d.enqueued, e)
	return true
}

func (d *fakeDeps) TopN(_ context.Context, n int) ([]repository.Entry, error) {
	if n > len(d.entries) {
		n = len(d.entries)
	}
	return d.entries[:n], nil
}

func (d *fakeDeps) Rank(_ context.Context, contributor string) (repository.Entry, error) {
	for _, e := range d.entries {
		if e.Contributor == contributor {
			return e, nil
		}
	}
	return repository.Entry{}, repository.ErrContributorNotFound
}

func (d *fakeDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"queue_length": 0}
}

func newMux(deps *fakeDeps, opts ...api.ServerOption) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, deps, opts...).Register(mux)
	return mux
}

func postEvent(mux *http.ServeMux, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func get(mux *http.ServeMux, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestPostEvent(t *testing.T) {
	validBody := `{"id":"evt-1","source":"github","type":"com.github.issue_comment.created","data":{"comment":{"body":"useful words"}}}`

	Convey("Given the events endpoint", t, func() {
		deps := newFakeDeps()
		mux := newMux(deps)

		Convey("When a valid envelope is posted", func() {
			rec := postEvent(mux, validBody)

			Convey("Then it is accepted and enqueued", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				So(deps.enqueued, ShouldHaveLength, 1)
				So(deps.enqueued[0].ID, ShouldEqual, "evt-1")
				So(deps.enqueued[0].Type, ShouldEqual, "com.github.issue_comment.created")
			})
		})

		Convey("When the same envelope is posted twice", func() {
			So(postEvent(mux, validBody).Code, ShouldEqual, http.StatusAccepted)
			rec := postEvent(mux, validBody)

			Convey("Then the duplicate is acknowledged without reprocessing", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var ack struct {
					Status    string `json:"status"`
					Duplicate bool   `json:"duplicate"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &ack), ShouldBeNil)
				So(ack.Duplicate, ShouldBeTrue)
				So(deps.enqueued, ShouldHaveLength, 1)
			})
		})

		Convey("When the body is not JSON", func() {
			So(postEvent(mux, "{nope").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When required fields are missing", func() {
			So(postEvent(mux, `{"source":"github","type":"a.b"}`).Code, ShouldEqual, http.StatusBadRequest)
			So(postEvent(mux, `{"id":"x","type":"a.b"}`).Code, ShouldEqual, http.StatusBadRequest)
			So(postEvent(mux, `{"id":"x","source":"github"}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the type is not dot-namespaced", func() {
			So(postEvent(mux, `{"id":"x","source":"github","type":"created"}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the time is not RFC3339", func() {
			So(postEvent(mux, `{"id":"x","source":"github","type":"a.b","time":"yesterday"}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the method is not POST", func() {
			So(get(mux, "/events").Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given a saturated queue", t, func() {
		deps := newFakeDeps()
		deps.full = true
		mux := newMux(deps)

		Convey("When an envelope is posted", func() {
			rec := postEvent(mux, validBody)

			Convey("Then backpressure is reported and the id can be retried", func() {
				So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
				So(deps.seen, ShouldBeEmpty)
			})
		})
	})
}

func TestGetLeaderboard(t *testing.T) {
	Convey("Given a populated leaderboard", t, func() {
		deps := newFakeDeps()
		deps.entries = []repository.Entry{
			{Rank: 1, Contributor: "carol", Score: 90},
			{Rank: 2, Contributor: "alice", Score: 72},
		}
		mux := newMux(deps)

		Convey("When the top entries are requested", func() {
			rec := get(mux, "/leaderboard?limit=2")
			So(rec.Code, ShouldEqual, http.StatusOK)

			var entries []repository.Entry
			So(json.Unmarshal(rec.Body.Bytes(), &entries), ShouldBeNil)
			So(entries, ShouldHaveLength, 2)
			So(entries[0].Contributor, ShouldEqual, "carol")
		})

		Convey("When the limit is missing or malformed", func() {
			So(get(mux, "/leaderboard").Code, ShouldEqual, http.StatusBadRequest)
			So(get(mux, "/leaderboard?limit=abc").Code, ShouldEqual, http.StatusBadRequest)
			So(get(mux, "/leaderboard?limit=0").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the limit exceeds the configured maximum", func() {
			capped := newMux(deps, api.WithMaxLeaderboardLimit(10))
			So(get(capped, "/leaderboard?limit=11").Code, ShouldEqual, http.StatusBadRequest)
			So(get(capped, "/leaderboard?limit=10").Code, ShouldEqual, http.StatusOK)
		})
	})
}

func TestGetRank(t *testing.T) {
	Convey("Given a ranked contributor", t, func() {
		deps := newFakeDeps()
		deps.entries = []repository.Entry{{Rank: 1, Contributor: "carol", Score: 90}}
		mux := newMux(deps)

		Convey("When their rank is requested", func() {
			rec := get(mux, "/rank/carol")
			So(rec.Code, ShouldEqual, http.StatusOK)

			var entry repository.Entry
			So(json.Unmarshal(rec.Body.Bytes(), &entry), ShouldBeNil)
			So(entry.Rank, ShouldEqual, 1)
			So(entry.Score, ShouldEqual, 90)
		})

		Convey("When the contributor is unknown", func() {
			So(get(mux, "/rank/nobody").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the path is malformed", func() {
			So(get(mux, "/rank/").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestGetStats(t *testing.T) {
	Convey("Given the stats endpoint", t, func() {
		mux := newMux(newFakeDeps())

		rec := get(mux, "/stats")
		So(rec.Code, ShouldEqual, http.StatusOK)

		var stats map[string]interface{}
		So(json.Unmarshal(rec.Body.Bytes(), &stats), ShouldBeNil)
		So(stats, ShouldContainKey, "queue_length")
	})
}

func TestHealthz(t *testing.T) {
	Convey("Given the health endpoint", t, func() {
		mux := newMux(newFakeDeps())

		rec := get(mux, "/healthz")
		So(rec.Code, ShouldEqual, http.StatusOK)
		So(rec.Body.String(), ShouldContainSubstring, "merit_pipeline")
	})
}
