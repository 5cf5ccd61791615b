package service_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/holoboard/holoboard/internal/adapters/connector"
	"github.com/holoboard/holoboard/internal/adapters/offline"
	service "github.com/holoboard/holoboard/internal/app"
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

type staticRoster []service.ActiveEntity

func (r staticRoster) ListActive(context.Context) []service.ActiveEntity { return r }

type mapSource map[string]string

func (s mapSource) Evaluate(_ context.Context, e service.ActiveEntity, metric string) (string, bool) {
	v, ok := s[e.Name+"/"+metric]
	return v, ok
}

type stubConnector struct {
	name    string
	entries []rank.Entry
}

func (c *stubConnector) Name() string                    { return c.name }
func (c *stubConnector) Initialize(context.Context) bool { return true }
func (c *stubConnector) Available() bool                 { return true }
func (c *stubConnector) Fields() []string                { return []string{"sales.total"} }
func (c *stubConnector) Close() error                    { return nil }

func (c *stubConnector) FriendlyFields() map[string]string {
	return map[string]string{"sales.total": "Shop - Sales - Total"}
}

func (c *stubConnector) TopN(_ context.Context, _ string, limit int, order rank.Order) []rank.Entry {
	entries := make([]rank.Entry, len(c.entries))
	copy(entries, c.entries)
	rank.Sort(entries, order)
	return rank.Truncate(entries, limit)
}

func active(name string) service.ActiveEntity {
	return service.ActiveEntity{ID: identity.FromDisplayName(name), Name: name}
}

func newOfflineStore(t *testing.T) *offline.Store {
	t.Helper()
	store, err := offline.New(offline.WithDataDir(t.TempDir()))
	if err != nil {
		t.Fatalf("creating offline store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLiveBoards(t *testing.T) {
	Convey("Given a service over a live metric source", t, func() {
		ctx := context.Background()
		store := newOfflineStore(t)
		specs := map[string]service.BoardSpec{
			"gold": {
				DataSource: "live:%player_gold%",
				Title:      "Top {placeholder_name}",
				LineFormat: "#{rank} {player} - {value}",
				TopN:       10,
			},
		}

		Convey("When all active entities report numeric values", func() {
			svc := service.New(
				service.WithBoards(specs),
				service.WithOfflineStore(store),
				service.WithRoster(staticRoster{active("Alice"), active("Bob")}),
				service.WithMetricSource(mapSource{
					"Alice/%player_gold%": "125",
					"Bob/%player_gold%":   "90",
				}),
			)
			svc.RefreshAll(ctx)
			board, ok := svc.Board("gold")

			Convey("Then the board publishes ranked lines", func() {
				So(ok, ShouldBeTrue)
				So(board.Title, ShouldEqual, "Top player gold")
				So(board.Lines, ShouldResemble, []string{
					"#1 Alice - 125",
					"#2 Bob - 90",
				})
			})
		})

		Convey("When an entity reports a non-numeric value", func() {
			svc := service.New(
				service.WithBoards(specs),
				service.WithRoster(staticRoster{active("Alice"), active("Bob")}),
				service.WithMetricSource(mapSource{
					"Alice/%player_gold%": "125",
					"Bob/%player_gold%":   "lots",
				}),
			)
			svc.RefreshAll(ctx)
			board, _ := svc.Board("gold")

			Convey("Then that entity is silently skipped", func() {
				So(board.Lines, ShouldResemble, []string{"#1 Alice - 125"})
			})
		})

		Convey("When an offline record exists for an entity now online", func() {
			store.RecordObservation(ctx, "%player_gold%",
				identity.FromDisplayName("Alice"), "Alice", 50, time.Now().Add(-time.Hour))
			store.RecordObservation(ctx, "%player_gold%",
				identity.FromDisplayName("Carol"), "Carol", 300, time.Now().Add(-time.Hour))

			svc := service.New(
				service.WithBoards(specs),
				service.WithOfflineStore(store),
				service.WithRoster(staticRoster{active("Alice")}),
				service.WithMetricSource(mapSource{"Alice/%player_gold%": "125"}),
			)
			svc.RefreshAll(ctx)
			board, _ := svc.Board("gold")

			Convey("Then the live value wins and offline-only entities still rank", func() {
				So(board.Lines, ShouldResemble, []string{
					"#1 Carol - 300",
					"#2 Alice - 125",
				})
			})
		})

		Convey("When nothing reports at all", func() {
			svc := service.New(service.WithBoards(specs))
			svc.RefreshAll(ctx)
			board, _ := svc.Board("gold")

			Convey("Then the placeholder line is published", func() {
				So(board.Lines, ShouldResemble, []string{"No entries yet."})
			})
		})
	})
}

func TestDatabaseBoards(t *testing.T) {
	Convey("Given a service over a connector registry", t, func() {
		ctx := context.Background()
		stub := &stubConnector{
			name: "genericsql",
			entries: []rank.Entry{
				{ID: identity.FromDisplayName("Alice"), DisplayName: "Alice", Value: 125},
				{ID: identity.FromDisplayName("Carol"), DisplayName: "Carol", Value: 300},
			},
		}
		registry := connector.NewRegistry(logger.Named("test"), stub)
		registry.Initialize(ctx)

		specs := map[string]service.BoardSpec{
			"sales": {
				DataSource: "db:genericsql:sales.total",
				Title:      "Top {placeholder_name}",
				LineFormat: "#{rank} {player} - {value}",
				TopN:       2,
			},
			"bogus": {
				DataSource: "db:nosuch:sales.total",
				Title:      "Top {placeholder_name}",
				LineFormat: "#{rank} {player} - {value}",
				TopN:       2,
			},
		}
		svc := service.New(
			service.WithBoards(specs),
			service.WithRegistry(registry),
		)
		svc.RefreshAll(ctx)

		Convey("When the connector resolves", func() {
			board, ok := svc.Board("sales")

			Convey("Then the board carries the friendly source name and ordering", func() {
				So(ok, ShouldBeTrue)
				So(board.Title, ShouldEqual, "Top Shop - Sales - Total")
				So(board.Lines, ShouldResemble, []string{
					"#1 Carol - 300",
					"#2 Alice - 125",
				})
			})
		})

		Convey("When the connector is unknown", func() {
			board, ok := svc.Board("bogus")

			Convey("Then the board degrades to its placeholder state", func() {
				So(ok, ShouldBeTrue)
				So(board.Lines, ShouldResemble, []string{"No entries yet."})
			})
		})

		Convey("When refreshing one board by id", func() {
			stub.entries = append(stub.entries, rank.Entry{
				ID: identity.FromDisplayName("Dave"), DisplayName: "Dave", Value: 500,
			})
			board, err := svc.RefreshBoard(ctx, "sales")

			Convey("Then the new data is published", func() {
				So(err, ShouldBeNil)
				So(board.Lines[0], ShouldEqual, "#1 Dave - 500")
			})
		})

		Convey("When refreshing an unknown board", func() {
			_, err := svc.RefreshBoard(ctx, "nope")
			So(err, ShouldEqual, service.ErrUnknownBoard)
		})

		Convey("When listing connectors through the service", func() {
			So(svc.ListConnectors(), ShouldResemble, []string{"genericsql"})
			So(svc.ListFields("genericsql"), ShouldResemble, []string{"sales.total"})
		})
	})
}

func TestStartStop(t *testing.T) {
	Convey("Given a service with boards", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithBoards(map[string]service.BoardSpec{
				"gold": {DataSource: "live:gold", Title: "t", LineFormat: "l", TopN: 5},
			}),
			service.WithRefreshInterval(time.Hour),
		)

		Convey("When starting", func() {
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then boards are published before Start returns", func() {
				So(svc.Boards(), ShouldContainKey, "gold")
			})

			Convey("Then starting again fails", func() {
				So(svc.Start(ctx), ShouldEqual, service.ErrAlreadyStarted)
			})

			So(svc.Stop(ctx), ShouldBeNil)
		})

		Convey("When stopping without starting", func() {
			So(svc.Stop(ctx), ShouldEqual, service.ErrNotStarted)
		})
	})
}
