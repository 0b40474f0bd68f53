package scoring_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/oddsmith/powerpick/internal/domain/model"
	"github.com/oddsmith/powerpick/internal/domain/scoring"
)

func drawAt(day int, whites [5]int, pb int) model.HistoricalDraw {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return model.HistoricalDraw{WhiteBalls: whites, Powerball: pb, Date: base.AddDate(0, 0, day)}
}

func TestScore(t *testing.T) {
	Convey("Given a scorer over a uniform vector and no history", t, func() {
		s := scoring.New(model.UniformVector(), nil)

		Convey("When scoring the full run 1-2-3-4-5", func() {
			c := model.Candidate{WhiteBalls: [5]int{1, 2, 3, 4, 5}, Powerball: 7}
			b, err := s.Score(context.Background(), c)

			So(err, ShouldBeNil)

			Convey("Then the probability score blends white and powerball priors", func() {
				So(b.Probability, ShouldAlmostEqual, 0.8*(1.0/69)+0.2*(1.0/26), 1e-12)
			})

			Convey("Then the diversity score reflects the clustered shape", func() {
				// parity 1.0, band balance 0.5, spread 4/50, consecutive 0.5
				So(b.Diversity, ShouldAlmostEqual, (1.0+0.5+0.08+0.5)/4, 1e-12)
			})

			Convey("Then the historical score is neutral without history", func() {
				So(b.Historical, ShouldAlmostEqual, 0.5, 1e-12)
			})

			Convey("Then the risk score penalizes the run and the low sum", func() {
				// sequence 0.1, multiples 1.0, sum 0.3, popular 1.0
				So(b.RiskAdjusted, ShouldAlmostEqual, 0.6, 1e-12)
			})

			Convey("Then the total is the declared weighted sum", func() {
				So(b.Total, ShouldAlmostEqual, b.WeightedTotal(), 1e-12)
			})
		})

		Convey("When scoring a well-shaped ticket", func() {
			c := model.Candidate{WhiteBalls: [5]int{8, 21, 33, 47, 62}, Powerball: 14}
			b, err := s.Score(context.Background(), c)

			So(err, ShouldBeNil)

			Convey("Then everything lands in [0,1]", func() {
				for _, score := range []float64{b.Probability, b.Diversity, b.Historical, b.RiskAdjusted, b.Total} {
					So(score, ShouldBeBetweenOrEqual, 0, 1)
				}
			})

			Convey("Then it rates above the clustered run on diversity and risk", func() {
				run, err := s.Score(context.Background(), model.Candidate{WhiteBalls: [5]int{1, 2, 3, 4, 5}, Powerball: 7})

				So(err, ShouldBeNil)
				So(b.Diversity, ShouldBeGreaterThan, run.Diversity)
				So(b.RiskAdjusted, ShouldBeGreaterThan, run.RiskAdjusted)
			})
		})

		Convey("When the candidate is malformed", func() {
			c := model.Candidate{WhiteBalls: [5]int{5, 4, 3, 2, 1}, Powerball: 7}
			_, err := s.Score(context.Background(), c)

			So(err, ShouldWrap, model.ErrInvalidCandidate)
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := s.Score(ctx, model.Candidate{WhiteBalls: [5]int{1, 2, 3, 4, 5}, Powerball: 7})

			So(err, ShouldWrap, context.Canceled)
		})
	})

	Convey("Given a scorer with a single-draw history", t, func() {
		draws := []model.HistoricalDraw{drawAt(0, [5]int{1, 2, 3, 4, 5}, 7)}
		s := scoring.New(model.UniformVector(), scoring.NewHistoryView(draws))

		Convey("When scoring the drawn numbers against undrawn ones", func() {
			hit, err1 := s.Score(context.Background(), model.Candidate{WhiteBalls: [5]int{1, 2, 3, 4, 5}, Powerball: 7})
			miss, err2 := s.Score(context.Background(), model.Candidate{WhiteBalls: [5]int{10, 20, 30, 40, 50}, Powerball: 9})

			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)

			Convey("Then the recent numbers take the recency penalty", func() {
				// Both sides get frequency 0 against a one-draw
				// expectation; only the recency components differ.
				So(hit.Historical, ShouldAlmostEqual, 0.15, 1e-12)
				So(miss.Historical, ShouldAlmostEqual, 0.5, 1e-12)
			})
		})
	})

	Convey("Given a history longer than the recency window", t, func() {
		draws := []model.HistoricalDraw{drawAt(0, [5]int{51, 52, 53, 54, 55}, 21)}
		for day := 1; day <= 9; day++ {
			whites := [5]int{day, day + 10, day + 20, day + 30, day + 40}
			draws = append(draws, drawAt(day, whites, day))
		}
		draws = append(draws, drawAt(10, [5]int{61, 62, 63, 64, 65}, 22))
		s := scoring.New(model.UniformVector(), scoring.NewHistoryView(draws))

		Convey("When comparing numbers drawn inside and outside the window", func() {
			old, err1 := s.Score(context.Background(), model.Candidate{WhiteBalls: [5]int{51, 52, 53, 54, 55}, Powerball: 21})
			fresh, err2 := s.Score(context.Background(), model.Candidate{WhiteBalls: [5]int{61, 62, 63, 64, 65}, Powerball: 22})

			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)

			Convey("Then only the recent draw is penalized", func() {
				// Both tickets' numbers appeared exactly once, so the
				// frequency components match; the recency components
				// separate them.
				So(old.Historical, ShouldBeGreaterThan, fresh.Historical)
			})
		})
	})
}

func TestHistoryView(t *testing.T) {
	Convey("Given history view construction", t, func() {
		Convey("When built over no draws", func() {
			v := scoring.NewHistoryView(nil)

			So(v.Empty(), ShouldBeTrue)
			So(v.TotalDraws(), ShouldEqual, 0)
		})

		Convey("When built over a few draws", func() {
			draws := []model.HistoricalDraw{
				drawAt(0, [5]int{1, 2, 3, 4, 5}, 7),
				drawAt(3, [5]int{6, 7, 8, 9, 10}, 11),
			}
			v := scoring.NewHistoryView(draws)

			So(v.Empty(), ShouldBeFalse)
			So(v.TotalDraws(), ShouldEqual, 2)
		})

		Convey("When a nil view is queried", func() {
			var v *scoring.HistoryView

			So(v.Empty(), ShouldBeTrue)
			So(v.TotalDraws(), ShouldEqual, 0)
		})
	})
}
