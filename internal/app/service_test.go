package service_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/oddsmith/powerpick/internal/app"
	"github.com/oddsmith/powerpick/internal/domain/model"
	"github.com/oddsmith/powerpick/pkg/logger"
)

func init() {
	_ = logger.Init()
}

func waitForResult(svc *service.Service, requestID string) (model.SelectionResult, bool) {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if res, err := svc.GetResult(context.Background(), requestID); err == nil {
			return res, true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return model.SelectionResult{}, false
}

func sampleDraws() []model.HistoricalDraw {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []model.HistoricalDraw{
		{WhiteBalls: [5]int{4, 18, 29, 47, 63}, Powerball: 12, Date: base},
		{WhiteBalls: [5]int{7, 15, 31, 42, 58}, Powerball: 3, Date: base.AddDate(0, 0, 3)},
	}
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a prediction service", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(100),
			service.WithTicketCount(2),
			service.WithPoolSize(100),
			service.WithDraws(sampleDraws()),
		)

		Convey("When the service has not been started", func() {
			stats := svc.GetStats()

			Convey("Then stats report the configuration only", func() {
				So(stats["started"], ShouldBeFalse)
				So(stats["workerCount"], ShouldEqual, 2)
				So(stats["drawCount"], ShouldEqual, 2)
				So(stats, ShouldNotContainKey, "queueLength")
			})
		})

		Convey("When the service is started", func() {
			ctx, cancel := context.WithCancel(context.Background())
			So(svc.Start(ctx), ShouldBeNil)
			Reset(func() {
				svc.Stop()
				cancel()
			})

			Convey("Then starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("Then stats report the runtime state", func() {
				stats := svc.GetStats()

				So(stats["started"], ShouldBeTrue)
				So(stats, ShouldContainKey, "queueLength")
				So(stats, ShouldContainKey, "totalTickets")
				So(stats, ShouldContainKey, "resultsCached")
			})

			Convey("And a prediction job is enqueued", func() {
				job := model.PredictionJob{
					RequestID: "req-1",
					Vector:    model.UniformVector(),
				}

				So(svc.Enqueue(ctx, job), ShouldBeTrue)

				Convey("Then the result becomes retrievable", func() {
					res, ok := waitForResult(svc, "req-1")

					So(ok, ShouldBeTrue)
					So(res.RequestID, ShouldEqual, "req-1")

					Convey("And the configured ticket count applied", func() {
						So(res.Tickets, ShouldHaveLength, 2)
					})

					Convey("And the tickets land on the ranked board", func() {
						top, err := svc.TopN(ctx, 10)

						So(err, ShouldBeNil)
						So(len(top), ShouldBeGreaterThanOrEqualTo, 2)

						entry, err := svc.Rank(ctx, res.Tickets[0].Key())
						So(err, ShouldBeNil)
						So(entry.RequestID, ShouldEqual, "req-1")
					})
				})
			})

			Convey("And the same request id arrives twice", func() {
				So(svc.SeenAndRecord(ctx, "req-dup"), ShouldBeFalse)
				So(svc.SeenAndRecord(ctx, "req-dup"), ShouldBeTrue)
				So(svc.Size(), ShouldEqual, 1)

				Convey("Then unrecording allows a retry", func() {
					svc.Unrecord(ctx, "req-dup")

					So(svc.SeenAndRecord(ctx, "req-dup"), ShouldBeFalse)
				})
			})

			Convey("And the service is stopped", func() {
				svc.Stop()

				Convey("Then stats report it stopped and stopping again is safe", func() {
					So(svc.GetStats()["started"], ShouldBeFalse)
					So(func() { svc.Stop() }, ShouldNotPanic)
				})
			})
		})
	})
}

func TestServiceDeterminism(t *testing.T) {
	Convey("Given two services with the same seed", t, func() {
		run := func() model.SelectionResult {
			svc := service.New(
				service.WithWorkerCount(1),
				service.WithTicketCount(3),
				service.WithPoolSize(200),
				service.WithSeed(42),
				service.WithDraws(sampleDraws()),
			)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			So(svc.Enqueue(ctx, model.PredictionJob{RequestID: "req-det", Vector: model.UniformVector()}), ShouldBeTrue)
			res, ok := waitForResult(svc, "req-det")
			So(ok, ShouldBeTrue)
			return res
		}

		Convey("When the same request runs on both", func() {
			res1 := run()
			res2 := run()

			Convey("Then the selected tickets are identical", func() {
				So(res1.Tickets, ShouldResemble, res2.Tickets)
				So(res1.DatasetFingerprint, ShouldEqual, res2.DatasetFingerprint)
			})
		})
	})
}
