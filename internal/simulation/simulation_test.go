package simulation

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/oddsmith/powerpick/pkg/logger"
)

func init() {
	_ = logger.Init()
}

func TestGenerateShapedVector(t *testing.T) {
	Convey("Given shaped vector generation", t, func() {
		Convey("When generating vectors of both lengths", func() {
			for i := 0; i < 50; i++ {
				for _, length := range []int{WhiteProbLen, PowerballProbLen} {
					v := generateShapedVector(length)

					So(v, ShouldHaveLength, length)

					sum := 0.0
					for _, p := range v {
						So(p, ShouldBeGreaterThanOrEqualTo, 0)
						sum += p
					}
					So(math.Abs(sum-1.0), ShouldBeLessThan, 1e-9)
				}
			}
		})
	})
}

func TestGenerateRequests(t *testing.T) {
	Convey("Given a request generator", t, func() {
		config := &Config{NumPredictions: 20, NumTickets: 3, Workers: 4}
		stats := &Stats{}

		Convey("When generating requests", func() {
			requests, err := generateRequests(context.Background(), config, stats)

			So(err, ShouldBeNil)
			So(requests, ShouldHaveLength, 20)
			So(stats.RequestsGenerated, ShouldEqual, 20)

			Convey("Then request IDs are unique and vectors well-formed", func() {
				seen := make(map[string]bool)
				for _, req := range requests {
					So(seen[req.RequestID], ShouldBeFalse)
					seen[req.RequestID] = true
					So(req.WhiteProbs, ShouldHaveLength, WhiteProbLen)
					So(req.PowerballProbs, ShouldHaveLength, PowerballProbLen)
					So(req.NumTickets, ShouldEqual, 3)
				}
			})
		})
	})
}

func TestValidateTicket(t *testing.T) {
	Convey("Given ticket validation", t, func() {
		Convey("When the ticket is well-formed", func() {
			So(validateTicket([]int{1, 12, 23, 45, 69}, 26), ShouldBeNil)
		})

		Convey("When a white ball is out of range", func() {
			So(validateTicket([]int{1, 12, 23, 45, 70}, 5), ShouldNotBeNil)
		})

		Convey("When white balls are not strictly ascending", func() {
			So(validateTicket([]int{1, 12, 12, 45, 69}, 5), ShouldNotBeNil)
		})

		Convey("When the count is wrong", func() {
			So(validateTicket([]int{1, 12, 23, 45}, 5), ShouldNotBeNil)
		})

		Convey("When the powerball is out of range", func() {
			So(validateTicket([]int{1, 12, 23, 45, 69}, 27), ShouldNotBeNil)
		})
	})
}

func TestTotalConsistent(t *testing.T) {
	Convey("Given a score breakdown", t, func() {
		b := Breakdown{Probability: 0.8, Diversity: 0.6, Historical: 0.5, RiskAdjusted: 0.4}

		Convey("When the total matches the weighted sum", func() {
			b.Total = 0.40*0.8 + 0.25*0.6 + 0.20*0.5 + 0.15*0.4
			So(totalConsistent(b), ShouldBeTrue)
		})

		Convey("When the total is off", func() {
			b.Total = 0.9
			So(totalConsistent(b), ShouldBeFalse)
		})
	})
}

func TestVerifyBoardOrdering(t *testing.T) {
	Convey("Given a ticket board", t, func() {
		board := []Entry{
			{Rank: 1, WhiteBalls: []int{1, 2, 3, 4, 5}, Powerball: 1, Score: 0.9},
			{Rank: 2, WhiteBalls: []int{6, 7, 8, 9, 10}, Powerball: 2, Score: 0.8},
			{Rank: 3, WhiteBalls: []int{11, 12, 13, 14, 15}, Powerball: 3, Score: 0.7},
		}

		Convey("When the board is properly ordered", func() {
			So(verifyBoardOrdering(board), ShouldBeNil)
		})

		Convey("When ranks are not contiguous", func() {
			board[1].Rank = 5
			So(verifyBoardOrdering(board), ShouldNotBeNil)
		})

		Convey("When scores are out of order", func() {
			board[2].Score = 0.95
			So(verifyBoardOrdering(board), ShouldNotBeNil)
		})
	})
}

func TestSubmitSingleRequest(t *testing.T) {
	Convey("Given a submission client", t, func() {
		client := newHTTPClient(5 * time.Second)
		request := Request{RequestID: "req-1", NumTickets: 1}

		newServer := func(status int, body any) *httptest.Server {
			return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				_ = json.NewEncoder(w).Encode(body)
			}))
		}

		Convey("When the service accepts the request", func() {
			srv := newServer(StatusAccepted, AckResponse{Status: "accepted", RequestID: "req-1"})
			defer srv.Close()

			So(submitSingleRequest(context.Background(), client, srv.URL, request), ShouldEqual, "success")
		})

		Convey("When the request is a duplicate", func() {
			srv := newServer(StatusOK, AckResponse{Status: "duplicate", RequestID: "req-1", Duplicate: true})
			defer srv.Close()

			So(submitSingleRequest(context.Background(), client, srv.URL, request), ShouldEqual, "duplicate")
		})

		Convey("When the queue is full", func() {
			srv := newServer(StatusTooManyRequests, map[string]string{"code": "backpressure"})
			defer srv.Close()

			So(submitSingleRequest(context.Background(), client, srv.URL, request), ShouldEqual, "rejected")
		})

		Convey("When the service errors", func() {
			srv := newServer(http.StatusInternalServerError, map[string]string{"code": "internal"})
			defer srv.Close()

			So(submitSingleRequest(context.Background(), client, srv.URL, request), ShouldEqual, "failed")
		})
	})
}
