package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/replaystats/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

func match(id string, at time.Time, lines map[string]repository.PlayerLine) repository.Match {
	return repository.Match{
		GameID:    id,
		Map:       "Outpost",
		Mode:      "FFA",
		Processed: at,
		Players:   lines,
		Summary:   []byte(`{"GameId":"` + id + `"}`),
	}
}

func stores(t *testing.T) map[string]func() repository.Store {
	return map[string]func() repository.Store{
		"memory": func() repository.Store {
			return repository.NewMemoryStore()
		},
		"badger": func() repository.Store {
			s, err := repository.OpenBadgerStore(context.Background(), "", repository.WithInMemory(true))
			if err != nil {
				t.Fatalf("open badger: %v", err)
			}
			return s
		},
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for kind, open := range stores(t) {
		Convey("Given an empty "+kind+" store", t, func() {
			s := open()
			Reset(func() { _ = s.Close() })

			So(s.Count(ctx), ShouldEqual, 0)

			Convey("Unknown lookups fail with ErrNotFound", func() {
				_, err := s.Get(ctx, "1")
				So(err, ShouldEqual, repository.ErrNotFound)
				_, err = s.Player(ctx, "alice")
				So(err, ShouldEqual, repository.ErrNotFound)
			})

			Convey("A match without a game id is rejected", func() {
				So(s.Save(ctx, repository.Match{}), ShouldEqual, repository.ErrInvalidMatch)
			})

			Convey("Non-positive limits are rejected", func() {
				_, err := s.List(ctx, 0)
				So(err, ShouldEqual, repository.ErrInvalidLimit)
				_, err = s.TopPlayers(ctx, -1)
				So(err, ShouldEqual, repository.ErrInvalidLimit)
			})

			Convey("When matches are saved", func() {
				So(s.Save(ctx, match("1", base, map[string]repository.PlayerLine{
					"alice": {Kills: 3, Deaths: 1},
					"bob":   {Kills: 1, Deaths: 3},
				})), ShouldBeNil)
				So(s.Save(ctx, match("2", base.Add(time.Minute), map[string]repository.PlayerLine{
					"alice": {Kills: 0, Deaths: 2},
					"carol": {Kills: 4, Deaths: 0},
				})), ShouldBeNil)

				Convey("They can be fetched and listed newest first", func() {
					So(s.Count(ctx), ShouldEqual, 2)

					m, err := s.Get(ctx, "1")
					So(err, ShouldBeNil)
					So(m.Map, ShouldEqual, "Outpost")
					So(string(m.Summary), ShouldEqual, `{"GameId":"1"}`)
					So(m.Players["alice"].Kills, ShouldEqual, 3)

					list, err := s.List(ctx, 10)
					So(err, ShouldBeNil)
					So(len(list), ShouldEqual, 2)
					So(list[0].GameID, ShouldEqual, "2")
					So(list[1].GameID, ShouldEqual, "1")

					list, err = s.List(ctx, 1)
					So(err, ShouldBeNil)
					So(len(list), ShouldEqual, 1)
				})

				Convey("Careers aggregate across matches", func() {
					alice, err := s.Player(ctx, "alice")
					So(err, ShouldBeNil)
					So(alice.Matches, ShouldEqual, 2)
					So(alice.Kills, ShouldEqual, 3)
					So(alice.Deaths, ShouldEqual, 3)

					top, err := s.TopPlayers(ctx, 10)
					So(err, ShouldBeNil)
					So(len(top), ShouldEqual, 3)
					So(top[0].Username, ShouldEqual, "carol")
					So(top[0].Rank, ShouldEqual, 1)
					So(top[1].Username, ShouldEqual, "alice")
					So(top[1].Rank, ShouldEqual, 2)
					So(top[2].Username, ShouldEqual, "bob")
					So(top[2].Rank, ShouldEqual, 3)
				})

				Convey("Saving the same game id replaces its contribution", func() {
					So(s.Save(ctx, match("1", base.Add(2*time.Minute), map[string]repository.PlayerLine{
						"alice": {Kills: 10, Deaths: 0},
					})), ShouldBeNil)
					So(s.Count(ctx), ShouldEqual, 2)

					alice, err := s.Player(ctx, "alice")
					So(err, ShouldBeNil)
					So(alice.Matches, ShouldEqual, 2)
					So(alice.Kills, ShouldEqual, 10)
					So(alice.Rank, ShouldEqual, 1)

					_, err = s.Player(ctx, "bob")
					So(err, ShouldEqual, repository.ErrNotFound)
				})
			})

			Convey("Tied players share a rank", func() {
				So(s.Save(ctx, match("7", base, map[string]repository.PlayerLine{
					"zed":  {Kills: 2},
					"amy":  {Kills: 2},
					"liam": {Kills: 1},
				})), ShouldBeNil)

				top, err := s.TopPlayers(ctx, 2)
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 2)
				So(top[0].Username, ShouldEqual, "amy")
				So(top[1].Username, ShouldEqual, "zed")
				So(top[0].Rank, ShouldEqual, 1)
				So(top[1].Rank, ShouldEqual, 1)

				liam, err := s.Player(ctx, "liam")
				So(err, ShouldBeNil)
				So(liam.Rank, ShouldEqual, 3)
			})
		})
	}
}

func TestMemoryStoreConcurrentSaves(t *testing.T) {
	Convey("Concurrent saves keep careers consistent", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore()

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_ = s.Save(ctx, match(fmt.Sprintf("g%d", i), time.Now(), map[string]repository.PlayerLine{
					"alice": {Kills: 1},
				}))
			}(i)
		}
		wg.Wait()

		So(s.Count(ctx), ShouldEqual, 50)
		alice, err := s.Player(ctx, "alice")
		So(err, ShouldBeNil)
		So(alice.Kills, ShouldEqual, 50)
		So(alice.Matches, ShouldEqual, 50)
	})
}
