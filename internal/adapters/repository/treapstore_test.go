package repository_test

import (
	"context"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/oddsmith/powerpick/internal/adapters/repository"
	"github.com/oddsmith/powerpick/internal/domain/model"
)

func ticket(whites [5]int, pb int, total float64) model.ScoredCandidate {
	return model.ScoredCandidate{
		Candidate: model.Candidate{WhiteBalls: whites, Powerball: pb},
		Scores:    model.ScoreBreakdown{Total: total},
	}
}

func TestTreapStore(t *testing.T) {
	Convey("Given a treap ticket store", t, func() {
		ctx := context.Background()
		s := repository.NewTreapStore(ctx)
		defer s.Close()

		t1 := ticket([5]int{1, 2, 3, 4, 5}, 1, 0.50)
		t2 := ticket([5]int{10, 20, 30, 40, 50}, 9, 0.80)
		t3 := ticket([5]int{6, 7, 8, 9, 10}, 2, 0.65)

		Convey("When recording a new ticket", func() {
			updated, err := s.RecordTicket(ctx, t1, "req-1")

			So(err, ShouldBeNil)
			So(updated, ShouldBeTrue)
			So(s.Count(ctx), ShouldEqual, 1)
		})

		Convey("When re-recording with a lower total", func() {
			_, err := s.RecordTicket(ctx, t2, "req-1")
			So(err, ShouldBeNil)

			worse := t2
			worse.Scores.Total = 0.70
			updated, err := s.RecordTicket(ctx, worse, "req-2")

			So(err, ShouldBeNil)
			So(updated, ShouldBeFalse)

			Convey("Then the original observation survives", func() {
				entry, err := s.Rank(ctx, t2.Key())

				So(err, ShouldBeNil)
				So(entry.Score, ShouldAlmostEqual, 0.80, 1e-9)
				So(entry.RequestID, ShouldEqual, "req-1")
			})
		})

		Convey("When re-recording with a higher total", func() {
			_, err := s.RecordTicket(ctx, t1, "req-1")
			So(err, ShouldBeNil)

			better := t1
			better.Scores.Total = 0.90
			updated, err := s.RecordTicket(ctx, better, "req-2")

			So(err, ShouldBeNil)
			So(updated, ShouldBeTrue)

			Convey("Then the entry carries the new score and request", func() {
				entry, err := s.Rank(ctx, t1.Key())

				So(err, ShouldBeNil)
				So(entry.Score, ShouldAlmostEqual, 0.90, 1e-9)
				So(entry.RequestID, ShouldEqual, "req-2")
				So(s.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When ranking recorded tickets", func() {
			for _, tc := range []struct {
				t   model.ScoredCandidate
				req string
			}{{t1, "req-a"}, {t2, "req-b"}, {t3, "req-c"}} {
				_, err := s.RecordTicket(ctx, tc.t, tc.req)
				So(err, ShouldBeNil)
			}

			Convey("Then ranks follow score descending", func() {
				e2, err := s.Rank(ctx, t2.Key())
				So(err, ShouldBeNil)
				So(e2.Rank, ShouldEqual, 1)

				e3, err := s.Rank(ctx, t3.Key())
				So(err, ShouldBeNil)
				So(e3.Rank, ShouldEqual, 2)

				e1, err := s.Rank(ctx, t1.Key())
				So(err, ShouldBeNil)
				So(e1.Rank, ShouldEqual, 3)
			})

			Convey("Then the entry carries the ticket details", func() {
				entry, err := s.Rank(ctx, t2.Key())

				So(err, ShouldBeNil)
				So(entry.Key, ShouldEqual, "10-20-30-40-50+09")
				So(entry.WhiteBalls, ShouldResemble, [5]int{10, 20, 30, 40, 50})
				So(entry.Powerball, ShouldEqual, 9)
				So(entry.Breakdown.Total, ShouldAlmostEqual, 0.80, 1e-9)
			})
		})

		Convey("When ranking an unknown ticket", func() {
			_, err := s.Rank(ctx, "01-02-03-04-05+01")

			So(err, ShouldWrap, repository.ErrTicketNotFound)
		})

		Convey("When tickets tie on score", func() {
			tied := ticket([5]int{11, 22, 33, 44, 55}, 3, 0.80)
			_, err := s.RecordTicket(ctx, t2, "req-1")
			So(err, ShouldBeNil)
			_, err = s.RecordTicket(ctx, tied, "req-2")
			So(err, ShouldBeNil)
			_, err = s.RecordTicket(ctx, t1, "req-3")
			So(err, ShouldBeNil)

			Convey("Then both share rank one and the next score takes rank two", func() {
				e2, err := s.Rank(ctx, t2.Key())
				So(err, ShouldBeNil)
				So(e2.Rank, ShouldEqual, 1)

				eTied, err := s.Rank(ctx, tied.Key())
				So(err, ShouldBeNil)
				So(eTied.Rank, ShouldEqual, 1)

				e1, err := s.Rank(ctx, t1.Key())
				So(err, ShouldBeNil)
				So(e1.Rank, ShouldEqual, 2)
			})
		})

		Convey("When fetching the top N", func() {
			for _, tc := range []model.ScoredCandidate{t1, t2, t3} {
				_, err := s.RecordTicket(ctx, tc, "req")
				So(err, ShouldBeNil)
			}

			Convey("And N covers the store", func() {
				top, err := s.TopN(ctx, 10)

				So(err, ShouldBeNil)
				So(top, ShouldHaveLength, 3)
				So(top[0].Key, ShouldEqual, t2.Key())
				So(top[1].Key, ShouldEqual, t3.Key())
				So(top[2].Key, ShouldEqual, t1.Key())
				So(top[0].Rank, ShouldEqual, 1)
			})

			Convey("And N is smaller than the store", func() {
				top, err := s.TopN(ctx, 2)

				So(err, ShouldBeNil)
				So(top, ShouldHaveLength, 2)
				So(top[0].Key, ShouldEqual, t2.Key())
			})

			Convey("And N is invalid", func() {
				_, err := s.TopN(ctx, 0)

				So(err, ShouldWrap, repository.ErrInvalidLimit)
			})
		})

		Convey("When many tickets are recorded", func() {
			for i := 0; i < 200; i++ {
				white := [5]int{1 + i%60, 62, 63, 64, 65}
				tc := ticket(white, 1+i%26, float64(i)/200)
				_, err := s.RecordTicket(ctx, tc, fmt.Sprintf("req-%d", i))
				So(err, ShouldBeNil)
			}

			Convey("Then TopN is ordered by score descending", func() {
				top, err := s.TopN(ctx, 50)

				So(err, ShouldBeNil)
				So(len(top), ShouldBeGreaterThan, 0)
				for i := 1; i < len(top); i++ {
					So(top[i].Score, ShouldBeLessThanOrEqualTo, top[i-1].Score)
				}
			})
		})
	})
}

func TestResultStore(t *testing.T) {
	Convey("Given a bounded result store", t, func() {
		ctx := context.Background()

		Convey("When storing and fetching a result", func() {
			s := repository.NewResultStore()
			res := model.SelectionResult{RequestID: "req-1", CandidatesEvaluated: 100}

			s.Put(ctx, "req-1", res)
			got, err := s.Get(ctx, "req-1")

			So(err, ShouldBeNil)
			So(got.CandidatesEvaluated, ShouldEqual, 100)
			So(s.Len(), ShouldEqual, 1)
		})

		Convey("When fetching an unknown request", func() {
			s := repository.NewResultStore()

			_, err := s.Get(ctx, "missing")

			So(err, ShouldWrap, repository.ErrResultNotFound)
		})

		Convey("When overwriting an existing request", func() {
			s := repository.NewResultStore()

			s.Put(ctx, "req-1", model.SelectionResult{CandidatesEvaluated: 1})
			s.Put(ctx, "req-1", model.SelectionResult{CandidatesEvaluated: 2})

			got, err := s.Get(ctx, "req-1")

			So(err, ShouldBeNil)
			So(got.CandidatesEvaluated, ShouldEqual, 2)
			So(s.Len(), ShouldEqual, 1)
		})

		Convey("When the capacity overflows", func() {
			s := repository.NewResultStore(repository.WithResultCapacity(3))

			for i := 1; i <= 5; i++ {
				id := fmt.Sprintf("req-%d", i)
				s.Put(ctx, id, model.SelectionResult{RequestID: id})
			}

			Convey("Then only the newest results survive", func() {
				So(s.Len(), ShouldEqual, 3)

				_, err := s.Get(ctx, "req-1")
				So(err, ShouldWrap, repository.ErrResultNotFound)
				_, err = s.Get(ctx, "req-2")
				So(err, ShouldWrap, repository.ErrResultNotFound)

				for i := 3; i <= 5; i++ {
					_, err := s.Get(ctx, fmt.Sprintf("req-%d", i))
					So(err, ShouldBeNil)
				}
			})
		})
	})
}

func BenchmarkRecordTicket(b *testing.B) {
	ctx := context.Background()
	s := repository.NewTreapStore(ctx)
	defer s.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tc := ticket([5]int{1 + i%60, 62, 63, 64, 65}, 1+i%26, float64(i%1000)/1000)
		_, _ = s.RecordTicket(ctx, tc, "bench")
	}
}

func BenchmarkTopN(b *testing.B) {
	ctx := context.Background()
	s := repository.NewTreapStore(ctx)
	defer s.Close()

	for i := 0; i < 10000; i++ {
		tc := ticket([5]int{1 + i%60, 62, 63, 64, 65}, 1+i%26, float64(i%10000)/10000)
		_, _ = s.RecordTicket(ctx, tc, "bench")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.TopN(ctx, 100)
	}
}
