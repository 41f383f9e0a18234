package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/meritboard/merit/internal/adapters/mq/queue"
	"github.com/meritboard/merit/internal/domain/event"
	. "github.com/smartystreets/goconvey/convey"
)

func newEnvelope(id string) event.Envelope {
	return event.New(event.SourceGitHub, "com.github.issue_comment.created", nil, event.WithID(id))
}

func TestInMemoryQueue(t *testing.T) {
	ctx := context.Background()

	Convey("Given a queue with a small capacity", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))

		Convey("When envelopes fit the buffer", func() {
			So(q.Enqueue(ctx, newEnvelope("a")), ShouldBeTrue)
			So(q.Enqueue(ctx, newEnvelope("b")), ShouldBeTrue)
			So(q.Len(ctx), ShouldEqual, 2)

			Convey("Then a third enqueue is refused without blocking", func() {
				So(q.Enqueue(ctx, newEnvelope("c")), ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 2)
			})
		})

		Convey("When envelopes are dequeued", func() {
			So(q.Enqueue(ctx, newEnvelope("a")), ShouldBeTrue)
			So(q.Enqueue(ctx, newEnvelope("b")), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)

			var ids []string
			for e := range q.Dequeue(ctx) {
				ids = append(ids, e.ID)
			}

			Convey("Then order is preserved and the channel closes with the queue", func() {
				So(ids, ShouldResemble, []string{"a", "b"})
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Close(), ShouldBeNil)

			Convey("Then enqueues are refused and closing again is safe", func() {
				So(q.Enqueue(ctx, newEnvelope("a")), ShouldBeFalse)
				So(q.Close(), ShouldBeNil)
			})
		})

		Convey("When the queue closes while a consumer is waiting", func() {
			out := q.Dequeue(ctx)
			So(q.Close(), ShouldBeNil)

			Convey("Then the consumer channel closes", func() {
				select {
				case _, open := <-out:
					So(open, ShouldBeFalse)
				case <-time.After(time.Second):
					t.Fatal("dequeue channel did not close")
				}
			})
		})
	})
}
