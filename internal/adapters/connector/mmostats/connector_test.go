package mmostats_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/holoboard/holoboard/internal/adapters/connector/mmostats"
	"github.com/holoboard/holoboard/internal/adapters/connector/sqlconn"
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

// newProfileDB builds a database shaped like the MMO plugin's: two
// profile tables with a mix of rankable and bookkeeping columns, plus
// the companion names table.
func newProfileDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.db")
	db, err := sql.Open("duckdb", path)
	if err != nil {
		t.Fatalf("opening duckdb: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE profiles_mining (
			owner VARCHAR,
			level INTEGER,
			exp DOUBLE,
			unlocked_perks VARCHAR,
			last_updated BIGINT
		)`,
		`INSERT INTO profiles_mining VALUES
			('123e4567-e89b-12d3-a456-426614174000', 42, 9001.5, 'a;b', 1),
			('00112233-4455-6677-8899-aabbccddeeff', 17, 120.0, '', 2),
			('not-a-uuid', 99, 1.0, '', 3)`,
		`CREATE TABLE profiles_fishing (
			owner VARCHAR,
			times_fished INTEGER
		)`,
		`INSERT INTO profiles_fishing VALUES
			('123e4567-e89b-12d3-a456-426614174000', 7)`,
		`CREATE TABLE profile_players (
			player_uuid VARCHAR,
			player_name VARCHAR
		)`,
		`INSERT INTO profile_players VALUES
			('123e4567e89b12d3a456426614174000', 'Alice')`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seeding duckdb: %v", err)
		}
	}
	return path
}

func profileConfig(path string) sqlconn.BackendConfig {
	return sqlconn.BackendConfig{
		Enabled: true,
		Type:    sqlconn.BackendDuckDB,
		Path:    path,
	}
}

func TestDiscovery(t *testing.T) {
	Convey("Given an MMO profile database", t, func() {
		ctx := context.Background()
		c := mmostats.New("mmostats", profileConfig(newProfileDB(t)))
		defer c.Close()

		Convey("When initializing", func() {
			So(c.Initialize(ctx), ShouldBeTrue)

			Convey("Then numeric columns are discovered per profile", func() {
				So(c.Fields(), ShouldResemble, []string{
					"fishing.times_fished",
					"mining.exp",
					"mining.level",
				})
			})

			Convey("Then bookkeeping columns are ignored", func() {
				So(c.Fields(), ShouldNotContain, "mining.unlocked_perks")
				So(c.Fields(), ShouldNotContain, "mining.owner")
				So(c.Fields(), ShouldNotContain, "mining.last_updated")
			})

			Convey("Then friendly names are generated", func() {
				So(c.FriendlyFields()["fishing.times_fished"], ShouldEqual, "Fishing - Times Fished")
				So(c.FriendlyFields()["mining.level"], ShouldEqual, "Mining - Level")
			})
		})

		Convey("When the database is missing", func() {
			missing := mmostats.New("mmostats", profileConfig(filepath.Join(t.TempDir(), "none.db")))
			defer missing.Close()

			So(missing.Initialize(ctx), ShouldBeFalse)
			So(missing.Available(), ShouldBeFalse)
		})

		Convey("When the connector is disabled", func() {
			cfg := profileConfig(newProfileDB(t))
			cfg.Enabled = false
			disabled := mmostats.New("mmostats", cfg)
			defer disabled.Close()

			So(disabled.Initialize(ctx), ShouldBeFalse)
		})
	})
}

func TestProfileTopN(t *testing.T) {
	Convey("Given an initialized MMO stats connector", t, func() {
		ctx := context.Background()
		c := mmostats.New("mmostats", profileConfig(newProfileDB(t)))
		So(c.Initialize(ctx), ShouldBeTrue)
		defer c.Close()

		Convey("When ranking mining levels", func() {
			entries := c.TopN(ctx, "mining.level", 10, rank.Descending)

			Convey("Then rows with unparseable owners are skipped", func() {
				So(entries, ShouldHaveLength, 2)
				So(entries[0].Value, ShouldEqual, 42)
				So(entries[1].Value, ShouldEqual, 17)
			})

			Convey("Then names resolve through the companion table", func() {
				So(entries[0].DisplayName, ShouldEqual, "Alice")
			})

			Convey("Then unmapped owners get a shortened identifier", func() {
				So(entries[1].DisplayName, ShouldEqual, "Player-00112233")
			})
		})

		Convey("When the field is unknown", func() {
			So(c.TopN(ctx, "mining.bogus", 5, rank.Descending), ShouldBeEmpty)
			So(c.TopN(ctx, "nodot", 5, rank.Descending), ShouldBeEmpty)
		})
	})
}
