package dedupe_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/meritboard/merit/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLRUDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a fresh deduper", t, func() {
		d, err := dedupe.NewLRUDeduper()
		So(err, ShouldBeNil)

		Convey("When an id is recorded the first time", func() {
			So(d.SeenAndRecord(ctx, "evt-1"), ShouldBeFalse)

			Convey("Then the second sighting is a duplicate", func() {
				So(d.SeenAndRecord(ctx, "evt-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When distinct ids are recorded", func() {
			So(d.SeenAndRecord(ctx, "evt-1"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "evt-2"), ShouldBeFalse)
			So(d.Size(), ShouldEqual, 2)
		})

		Convey("When an id is unrecorded", func() {
			So(d.SeenAndRecord(ctx, "evt-1"), ShouldBeFalse)
			d.Unrecord(ctx, "evt-1")

			Convey("Then it can be recorded again", func() {
				So(d.SeenAndRecord(ctx, "evt-1"), ShouldBeFalse)
			})
		})
	})

	Convey("Given a deduper bounded to a few entries", t, func() {
		d, err := dedupe.NewLRUDeduper(dedupe.WithMaxEntries(3))
		So(err, ShouldBeNil)

		Convey("When more ids than the bound are recorded", func() {
			for i := 0; i < 5; i++ {
				So(d.SeenAndRecord(ctx, fmt.Sprintf("evt-%d", i)), ShouldBeFalse)
			}

			Convey("Then the oldest ids were evicted and rerecord cleanly", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "evt-0"), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "evt-4"), ShouldBeTrue)
			})
		})
	})
}
