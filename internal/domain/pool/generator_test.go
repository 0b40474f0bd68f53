package pool_test

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/oddsmith/powerpick/internal/domain/model"
	"github.com/oddsmith/powerpick/internal/domain/pool"
)

func TestGenerate(t *testing.T) {
	Convey("Given a candidate pool generator", t, func() {
		g := pool.New()

		Convey("When generating from a uniform vector", func() {
			p, err := g.Generate(context.Background(), model.UniformVector(), 200)

			So(err, ShouldBeNil)
			So(p.Candidates, ShouldHaveLength, 200)
			So(p.Shortfall, ShouldEqual, 0)
			So(p.Attempts, ShouldBeGreaterThanOrEqualTo, 200)

			Convey("Then every candidate is valid", func() {
				for _, c := range p.Candidates {
					So(c.Validate(), ShouldBeNil)
				}
			})

			Convey("Then candidates are unique by key", func() {
				seen := make(map[string]bool)
				for _, c := range p.Candidates {
					So(seen[c.Key()], ShouldBeFalse)
					seen[c.Key()] = true
				}
			})
		})

		Convey("When generating twice with identical inputs", func() {
			p1, err1 := g.Generate(context.Background(), model.UniformVector(), 100)
			p2, err2 := g.Generate(context.Background(), model.UniformVector(), 100)

			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)

			Convey("Then the pools are identical", func() {
				So(p1.Candidates, ShouldResemble, p2.Candidates)
				So(p1.Attempts, ShouldEqual, p2.Attempts)
			})
		})

		Convey("When generating with different seeds", func() {
			other := pool.New(pool.WithSeed(7))

			p1, err1 := g.Generate(context.Background(), model.UniformVector(), 100)
			p2, err2 := other.Generate(context.Background(), model.UniformVector(), 100)

			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)

			Convey("Then the pools differ", func() {
				So(p1.Candidates, ShouldNotResemble, p2.Candidates)
			})
		})

		Convey("When the vector concentrates mass on a few numbers", func() {
			var v model.ProbabilityVector
			// All mass on white balls 1..5 and powerball 1.
			for i := 0; i < 5; i++ {
				v.WhiteBalls[i] = 0.2
			}
			v.Powerball[0] = 1.0

			p, err := g.Generate(context.Background(), v, 50)

			So(err, ShouldBeNil)
			So(len(p.Candidates), ShouldBeGreaterThan, 0)

			Convey("Then generated candidates are still valid", func() {
				for _, c := range p.Candidates {
					So(c.Validate(), ShouldBeNil)
				}
			})
		})

		Convey("When the pool size is invalid", func() {
			_, err := g.Generate(context.Background(), model.UniformVector(), 0)

			So(err, ShouldWrap, pool.ErrInvalidPoolSize)
		})

		Convey("When the vector violates the simplex constraint", func() {
			v := model.UniformVector()
			v.WhiteBalls[0] += 0.5

			_, err := g.Generate(context.Background(), v, 10)

			So(err, ShouldWrap, model.ErrInvalidDistribution)
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := g.Generate(ctx, model.UniformVector(), 10)

			So(err, ShouldWrap, context.Canceled)
		})

		Convey("When the attempt budget is too small for the pool", func() {
			tight := pool.New(pool.WithAttemptFactor(1))

			// Each attempt yields at most one unique ticket, so the
			// budget is exhausted and any duplicates show up as
			// shortfall rather than extra attempts.
			p, err := tight.Generate(context.Background(), model.UniformVector(), 5000)

			So(err, ShouldBeNil)
			So(p.Attempts, ShouldEqual, 5000)
			So(len(p.Candidates)+p.Shortfall, ShouldEqual, 5000)
		})
	})
}

func BenchmarkGenerate(b *testing.B) {
	g := pool.New()
	v := model.UniformVector()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = g.Generate(ctx, v, 2000)
	}
}
