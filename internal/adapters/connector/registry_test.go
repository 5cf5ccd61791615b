package connector_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/holoboard/holoboard/internal/adapters/connector"
	"github.com/holoboard/holoboard/internal/domain/identity"
	"github.com/holoboard/holoboard/internal/domain/rank"
	"github.com/holoboard/holoboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// fakeConnector is a minimal in-memory connector for registry tests.
type fakeConnector struct {
	name      string
	available bool
	fields    map[string]string
	entries   []rank.Entry
	closed    bool
	closeErr  error
}

func (f *fakeConnector) Name() string                      { return f.name }
func (f *fakeConnector) Initialize(context.Context) bool   { return f.available }
func (f *fakeConnector) Available() bool                   { return f.available }
func (f *fakeConnector) FriendlyFields() map[string]string { return f.fields }
func (f *fakeConnector) Close() error                      { f.closed = true; return f.closeErr }

func (f *fakeConnector) Fields() []string {
	fields := make([]string, 0, len(f.fields))
	for field := range f.fields {
		fields = append(fields, field)
	}
	return fields
}

func (f *fakeConnector) TopN(_ context.Context, _ string, limit int, _ rank.Order) []rank.Entry {
	return rank.Truncate(f.entries, limit)
}

func TestRegistry(t *testing.T) {
	Convey("Given a registry with one healthy and one broken connector", t, func() {
		ctx := context.Background()
		healthy := &fakeConnector{
			name:      "Shop",
			available: true,
			fields:    map[string]string{"sales.total": "Shop - Sales - Total"},
			entries: []rank.Entry{
				{ID: identity.FromDisplayName("Carol"), DisplayName: "Carol", Value: 300},
				{ID: identity.FromDisplayName("Alice"), DisplayName: "Alice", Value: 125},
			},
		}
		broken := &fakeConnector{name: "Dead", available: false}
		r := connector.NewRegistry(logger.Named("test"), healthy, broken)
		r.Initialize(ctx)

		Convey("When listing connectors", func() {
			Convey("Then only available connectors appear", func() {
				So(r.ListConnectors(), ShouldResemble, []string{"shop"})
			})
		})

		Convey("When looking up by name", func() {
			Convey("Then lookup is case-insensitive", func() {
				c, ok := r.Lookup("SHOP")
				So(ok, ShouldBeTrue)
				So(c.Name(), ShouldEqual, "Shop")
			})

			Convey("Then the broken connector stays resolvable", func() {
				c, ok := r.Lookup("dead")
				So(ok, ShouldBeTrue)
				So(c.Available(), ShouldBeFalse)
				So(r.Available("dead"), ShouldBeFalse)
			})

			Convey("Then an unregistered name misses", func() {
				_, ok := r.Lookup("nope")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When listing fields", func() {
			Convey("Then the healthy connector lists its fields", func() {
				So(r.ListFields("shop"), ShouldResemble, []string{"sales.total"})
			})

			Convey("Then unavailable and unknown connectors list nothing", func() {
				So(r.ListFields("dead"), ShouldBeNil)
				So(r.ListFields("nope"), ShouldBeNil)
			})
		})

		Convey("When resolving friendly names", func() {
			Convey("Then indexed fields resolve", func() {
				So(r.FriendlyName("Shop", "sales.total"), ShouldEqual, "Shop - Sales - Total")
			})

			Convey("Then unknown fields fall back to the raw reference", func() {
				So(r.FriendlyName("Shop", "sales.bogus"), ShouldEqual, "sales.bogus")
			})
		})

		Convey("When querying top entries", func() {
			Convey("Then a healthy connector answers", func() {
				entries := r.TopN(ctx, "shop", "sales.total", 1, rank.Descending)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].DisplayName, ShouldEqual, "Carol")
			})

			Convey("Then an unknown connector yields an empty result", func() {
				So(r.TopN(ctx, "nope", "sales.total", 5, rank.Descending), ShouldBeEmpty)
			})

			Convey("Then an unavailable connector yields an empty result", func() {
				So(r.TopN(ctx, "dead", "sales.total", 5, rank.Descending), ShouldBeEmpty)
			})
		})

		Convey("When closing all connectors", func() {
			broken.closeErr = errors.New("boom")
			r.CloseAll(ctx)

			Convey("Then every connector closes despite errors", func() {
				So(healthy.closed, ShouldBeTrue)
				So(broken.closed, ShouldBeTrue)
			})
		})
	})
}
