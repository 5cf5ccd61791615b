package fieldref_test

import (
	"testing"

	"github.com/holoboard/holoboard/internal/domain/fieldref"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseSource(t *testing.T) {
	Convey("Given leaderboard data source strings", t, func() {
		Convey("When parsing a live source", func() {
			src, err := fieldref.ParseSource("live:%player_gold%")

			Convey("Then it should yield the metric name", func() {
				So(err, ShouldBeNil)
				So(src.Kind, ShouldEqual, fieldref.KindLive)
				So(src.Metric, ShouldEqual, "%player_gold%")
			})
		})

		Convey("When parsing a database source", func() {
			src, err := fieldref.ParseSource("db:genericsql:Shop:sales.total")

			Convey("Then it should yield a database reference", func() {
				So(err, ShouldBeNil)
				So(src.Kind, ShouldEqual, fieldref.KindDB)
				So(src.Ref.Connector, ShouldEqual, "genericsql")
			})
		})

		Convey("When parsing an unknown prefix", func() {
			_, err := fieldref.ParseSource("file:whatever")

			Convey("Then it should fail with the sentinel", func() {
				So(err, ShouldEqual, fieldref.ErrUnknownSourceKind)
			})
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Given db field references", t, func() {
		Convey("When parsing a structured reference", func() {
			ref, err := fieldref.Parse("db:shop:sales.total")

			Convey("Then connector, table and column should split", func() {
				So(err, ShouldBeNil)
				So(ref.Connector, ShouldEqual, "shop")
				So(ref.Table, ShouldEqual, "sales")
				So(ref.Column, ShouldEqual, "total")
			})

			Convey("Then String should round-trip the input", func() {
				So(ref.String(), ShouldEqual, "db:shop:sales.total")
			})
		})

		Convey("When the body carries extra colons", func() {
			ref, err := fieldref.Parse("db:generic:Shop:sales.total")

			Convey("Then only the first colon after the connector splits", func() {
				So(err, ShouldBeNil)
				So(ref.Connector, ShouldEqual, "generic")
				So(ref.Body(), ShouldEqual, "Shop:sales.total")
			})
		})

		Convey("When parsing a legacy flat reference", func() {
			ref, err := fieldref.Parse("db:shop:kills")

			Convey("Then the body becomes the column with no table", func() {
				So(err, ShouldBeNil)
				So(ref.Table, ShouldBeEmpty)
				So(ref.Column, ShouldEqual, "kills")
				So(ref.Body(), ShouldEqual, "kills")
			})
		})

		Convey("When the connector name is missing", func() {
			_, err := fieldref.Parse("db:sales.total")

			Convey("Then it should fail, there is no connector segment", func() {
				So(err, ShouldEqual, fieldref.ErrMissingConnector)
			})
		})

		Convey("When the prefix is not db:", func() {
			_, err := fieldref.Parse("live:gold")

			Convey("Then it should fail with the sentinel", func() {
				So(err, ShouldEqual, fieldref.ErrNotDatabaseSource)
			})
		})
	})
}

func TestSplitBody(t *testing.T) {
	Convey("Given structured field bodies", t, func() {
		Convey("When the body has a separator", func() {
			table, column, err := fieldref.SplitBody("sales.total")

			So(err, ShouldBeNil)
			So(table, ShouldEqual, "sales")
			So(column, ShouldEqual, "total")
		})

		Convey("When the column itself contains dots", func() {
			table, column, err := fieldref.SplitBody("sales.total.net")

			Convey("Then only the first dot splits", func() {
				So(err, ShouldBeNil)
				So(table, ShouldEqual, "sales")
				So(column, ShouldEqual, "total.net")
			})
		})

		Convey("When the separator is missing", func() {
			_, _, err := fieldref.SplitBody("kills")

			So(err, ShouldEqual, fieldref.ErrMissingSeparator)
		})

		Convey("When the separator is at an edge", func() {
			_, _, err := fieldref.SplitBody(".total")
			So(err, ShouldEqual, fieldref.ErrMissingSeparator)

			_, _, err = fieldref.SplitBody("sales.")
			So(err, ShouldEqual, fieldref.ErrMissingSeparator)
		})
	})
}
