package render_test

import (
	"testing"

	"github.com/holoboard/holoboard/internal/domain/identity"
	"github.com/holoboard/holoboard/internal/domain/rank"
	"github.com/holoboard/holoboard/internal/domain/render"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRender(t *testing.T) {
	Convey("Given board templates and sorted entries", t, func() {
		title := "Top {placeholder_name}"
		line := "#{rank} {player} - {value}"
		entries := []rank.Entry{
			{ID: identity.FromDisplayName("Carol"), DisplayName: "Carol", Value: 300},
			{ID: identity.FromDisplayName("Alice"), DisplayName: "Alice", Value: 1250},
		}

		Convey("When rendering", func() {
			board := render.Render(title, line, "Shop - Sales - Total", entries, 10)

			Convey("Then the title expands the source name", func() {
				So(board.Title, ShouldEqual, "Top Shop - Sales - Total")
			})

			Convey("Then each line expands rank, player and value", func() {
				So(board.Lines, ShouldHaveLength, 2)
				So(board.Lines[0], ShouldEqual, "#1 Carol - 300")
				So(board.Lines[1], ShouldEqual, "#2 Alice - 1,250")
			})
		})

		Convey("When rendering more entries than topN", func() {
			board := render.Render(title, line, "src", entries, 1)

			Convey("Then output is bounded", func() {
				So(board.Lines, ShouldHaveLength, 1)
			})
		})

		Convey("When rendering an empty entry list", func() {
			board := render.Render(title, line, "src", nil, 10)

			Convey("Then a single placeholder line appears", func() {
				So(board.Lines, ShouldHaveLength, 1)
				So(board.Lines[0], ShouldEqual, "No entries yet.")
			})
		})
	})
}

func TestFormatValue(t *testing.T) {
	Convey("Given metric values", t, func() {
		Convey("When formatting large values", func() {
			So(render.FormatValue(1234567), ShouldEqual, "1,234,567")
		})

		Convey("When formatting fractional values", func() {
			Convey("Then fraction digits are dropped", func() {
				So(render.FormatValue(99.7), ShouldEqual, "100")
				So(render.FormatValue(99.2), ShouldEqual, "99")
			})
		})

		Convey("When formatting zero", func() {
			So(render.FormatValue(0), ShouldEqual, "0")
		})
	})
}

func TestFriendlyColumnName(t *testing.T) {
	Convey("Given snake_case column names", t, func() {
		So(render.FriendlyColumnName("times_fished"), ShouldEqual, "Times Fished")
		So(render.FriendlyColumnName("level"), ShouldEqual, "Level")
		So(render.FriendlyColumnName("heavy_armor"), ShouldEqual, "Heavy Armor")
	})
}

func TestPrettyMetricName(t *testing.T) {
	Convey("Given live metric names", t, func() {
		So(render.PrettyMetricName("%player_gold%"), ShouldEqual, "player gold")
		So(render.PrettyMetricName("kills"), ShouldEqual, "kills")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Given arbitrary strings", t, func() {
		So(render.Capitalize("sales"), ShouldEqual, "Sales")
		So(render.Capitalize(""), ShouldEqual, "")
	})
}
