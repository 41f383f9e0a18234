package scoring_test

import (
	"context"
	"errors"
	"testing"

	"github.com/meritboard/merit/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

// stubScorer returns a fixed result, error, or panic.
type stubScorer struct {
	id     string
	weight float64
	result scoring.Result
	err    error
	panics bool
}

func (s *stubScorer) ID() string      { return s.id }
func (s *stubScorer) Weight() float64 { return s.weight }

func (s *stubScorer) Score(context.Context, string) (scoring.Result, error) {
	if s.panics {
		panic("scorer blew up")
	}
	return s.result, s.err
}

func fixed(id string, weight, normalized float64) *stubScorer {
	return &stubScorer{
		id:     id,
		weight: weight,
		result: scoring.Result{RawScore: normalized * 100, NormalizedScore: normalized},
	}
}

func TestNormalize(t *testing.T) {
	Convey("Given linear normalization", t, func() {
		Convey("Then in-range values rescale linearly", func() {
			So(scoring.Normalize(50, 0, 100), ShouldEqual, 0.5)
			So(scoring.Normalize(25, 0, 100), ShouldEqual, 0.25)
			So(scoring.Normalize(5, 0, 10), ShouldEqual, 0.5)
		})

		Convey("Then out-of-range values clamp to the bounds", func() {
			So(scoring.Normalize(-20, 0, 100), ShouldEqual, 0)
			So(scoring.Normalize(150, 0, 100), ShouldEqual, 1)
		})

		Convey("Then a degenerate range yields zero", func() {
			So(scoring.Normalize(50, 100, 100), ShouldEqual, 0)
			So(scoring.Normalize(50, 100, 0), ShouldEqual, 0)
		})
	})
}

func TestReadabilityScorer(t *testing.T) {
	ctx := context.Background()

	Convey("Given the readability scorer", t, func() {
		s := scoring.NewReadabilityScorer()
		So(s.ID(), ShouldEqual, "readability")
		So(s.Weight(), ShouldEqual, 1.0)

		Convey("When content is empty", func() {
			res, err := s.Score(ctx, "")
			So(err, ShouldBeNil)
			So(res.RawScore, ShouldEqual, 0)
			So(res.NormalizedScore, ShouldEqual, 0)
			So(res.Metrics["words"], ShouldEqual, 0)
		})

		Convey("When content has sentences", func() {
			res, err := s.Score(ctx, "The cat sat on the mat. The dog ran off. It was a good day.")
			So(err, ShouldBeNil)

			Convey("Then the counts feed the formula", func() {
				So(res.Metrics["sentences"], ShouldEqual, 3)
				So(res.Metrics["words"], ShouldEqual, 15)
				So(res.Metrics["reading_ease"], ShouldBeGreaterThan, 0)
				So(res.NormalizedScore, ShouldBeBetweenOrEqual, 0, 1)
			})
		})

		Convey("When content has no terminator", func() {
			res, err := s.Score(ctx, "no terminator here at all")
			So(err, ShouldBeNil)
			So(res.Metrics["sentences"], ShouldEqual, 1)
		})

		Convey("When the target equals the measured reading ease", func() {
			content := "The quick brown fox jumps over the lazy dog. A plain short line reads well."
			base, err := s.Score(ctx, content)
			So(err, ShouldBeNil)

			tuned := scoring.NewReadabilityScorer(
				scoring.WithReadabilityTarget(base.Metrics["reading_ease"]),
			)
			res, err := tuned.Score(ctx, content)
			So(err, ShouldBeNil)

			Convey("Then the normalized score peaks at 1", func() {
				So(res.NormalizedScore, ShouldAlmostEqual, 1.0, 1e-9)
			})
		})

		Convey("When the ease lands far from the target", func() {
			near := scoring.NewReadabilityScorer(scoring.WithReadabilityTarget(60))
			far := scoring.NewReadabilityScorer(scoring.WithReadabilityTarget(-200))

			content := "The cat sat on the mat. It was warm."
			nearRes, err := near.Score(ctx, content)
			So(err, ShouldBeNil)
			farRes, err := far.Score(ctx, content)
			So(err, ShouldBeNil)

			Convey("Then the score decays with distance and saturates at zero", func() {
				So(nearRes.NormalizedScore, ShouldBeGreaterThan, farRes.NormalizedScore)
				So(farRes.NormalizedScore, ShouldEqual, 0)
			})
		})

		Convey("When an intrinsic weight is configured", func() {
			weighted := scoring.NewReadabilityScorer(scoring.WithReadabilityWeight(0.5))
			content := "The cat sat on the mat. It was warm."

			full, err := s.Score(ctx, content)
			So(err, ShouldBeNil)
			half, err := weighted.Score(ctx, content)
			So(err, ShouldBeNil)

			So(half.NormalizedScore, ShouldAlmostEqual, full.NormalizedScore*0.5, 1e-9)
			So(weighted.Weight(), ShouldEqual, 0.5)
		})
	})
}

func TestTechnicalScorer(t *testing.T) {
	ctx := context.Background()

	Convey("Given the technical scorer", t, func() {
		s := scoring.NewTechnicalScorer()
		So(s.ID(), ShouldEqual, "technical")

		Convey("When content has no code blocks", func() {
			res, err := s.Score(ctx, "We should tune the cache and reduce latency at the endpoint.")
			So(err, ShouldBeNil)

			Convey("Then the code sub-metric contributes exactly zero", func() {
				So(res.Metrics["code_block_count"], ShouldEqual, 0)
				So(res.Metrics["code_block_quality"], ShouldEqual, 0)
				So(res.Metrics["term_density"], ShouldBeGreaterThan, 0)
			})
		})

		Convey("When content has a well-formed fenced block", func() {
			content := "Consider this helper:\n" +
				"```go\n" +
				"func retry(maxAttempts int) {\n" +
				"\t// backoff between attempts\n" +
				"\tfor attemptCount := 0; attemptCount < maxAttempts; attemptCount++ {\n" +
				"\t}\n" +
				"}\n" +
				"```\n"
			res, err := s.Score(ctx, content)
			So(err, ShouldBeNil)

			Convey("Then every per-block award applies", func() {
				So(res.Metrics["code_block_count"], ShouldEqual, 1)
				So(res.Metrics["code_block_quality"], ShouldAlmostEqual, 1.0, 1e-9)
			})
		})

		Convey("When content is empty", func() {
			res, err := s.Score(ctx, "")
			So(err, ShouldBeNil)
			So(res.RawScore, ShouldEqual, 0)
			So(res.NormalizedScore, ShouldEqual, 0)
		})

		Convey("When content has explanation structure", func() {
			content := "## Design\n" +
				"- the cache layer\n" +
				"- the database layer\n" +
				"For example, the schema migration runs first.\n"
			res, err := s.Score(ctx, content)
			So(err, ShouldBeNil)

			Convey("Then subheading, bullet, paragraph, and example awards apply", func() {
				So(res.Metrics["explanation_quality"], ShouldAlmostEqual, 1.0, 1e-9)
			})
		})

		Convey("When vocabulary terms only appear inside fences", func() {
			content := "```\ndatabase cache goroutine\n```\nplain words only here"
			res, err := s.Score(ctx, content)
			So(err, ShouldBeNil)

			Convey("Then fenced text is excluded from term density", func() {
				So(res.Metrics["term_density"], ShouldEqual, 0)
			})
		})

		Convey("When sub-metric weights are overridden", func() {
			only := scoring.NewTechnicalScorer(scoring.WithSubMetricWeights(0, 1, 0))
			res, err := only.Score(ctx, "the database schema and the cache interact via the api")
			So(err, ShouldBeNil)
			So(res.NormalizedScore, ShouldAlmostEqual, res.Metrics["term_density"], 1e-9)
		})

		Convey("When an intrinsic weight is configured", func() {
			weighted := scoring.NewTechnicalScorer(scoring.WithTechnicalWeight(0.4))
			So(weighted.Weight(), ShouldEqual, 0.4)
		})
	})
}

func TestAggregator(t *testing.T) {
	ctx := context.Background()

	Convey("Given aggregator construction", t, func() {
		Convey("When no scorers are configured", func() {
			_, err := scoring.NewAggregator()
			So(errors.Is(err, scoring.ErrNoScorers), ShouldBeTrue)
		})

		Convey("When the strategy is unknown", func() {
			_, err := scoring.NewAggregator(
				scoring.WithStrategy("median"),
				scoring.WithScorer(fixed("a", 1, 0.5)),
			)
			So(errors.Is(err, scoring.ErrUnknownStrategy), ShouldBeTrue)
		})

		Convey("When scorer ids collide", func() {
			_, err := scoring.NewAggregator(
				scoring.WithScorer(fixed("a", 1, 0.5)),
				scoring.WithScorer(fixed("a", 1, 0.7)),
			)
			So(errors.Is(err, scoring.ErrDuplicateScorer), ShouldBeTrue)
		})
	})

	Convey("Given two weighted scorers at 0.8 and 0.6", t, func() {
		newAgg := func(strategy scoring.Strategy) *scoring.Aggregator {
			a, err := scoring.NewAggregator(
				scoring.WithStrategy(strategy),
				scoring.WithWeightedScorer(fixed("a", 1, 0.8), 0.6),
				scoring.WithWeightedScorer(fixed("b", 1, 0.6), 0.4),
			)
			So(err, ShouldBeNil)
			return a
		}

		Convey("When combined by weighted average", func() {
			res, err := newAgg(scoring.StrategyWeightedAverage).Score(ctx, "content")
			So(err, ShouldBeNil)
			So(res.NormalizedScore, ShouldAlmostEqual, 0.72, 1e-9)
			So(res.RawScore, ShouldAlmostEqual, 72.0, 1e-9)
			So(res.Strategy, ShouldEqual, scoring.StrategyWeightedAverage)
			So(res.Weights, ShouldResemble, map[string]float64{"a": 0.6, "b": 0.4})
			So(res.Individual["a"].NormalizedScore, ShouldEqual, 0.8)
			So(res.Individual["b"].NormalizedScore, ShouldEqual, 0.6)
		})

		Convey("When combined by minimum", func() {
			res, err := newAgg(scoring.StrategyMinimum).Score(ctx, "content")
			So(err, ShouldBeNil)
			So(res.NormalizedScore, ShouldEqual, 0.6)
		})

		Convey("When combined by maximum", func() {
			res, err := newAgg(scoring.StrategyMaximum).Score(ctx, "content")
			So(err, ShouldBeNil)
			So(res.NormalizedScore, ShouldEqual, 0.8)
		})
	})

	Convey("Given intrinsic weights without overrides", t, func() {
		a, err := scoring.NewAggregator(
			scoring.WithScorer(fixed("a", 3, 1.0)),
			scoring.WithScorer(fixed("b", 1, 0.0)),
		)
		So(err, ShouldBeNil)

		res, err := a.Score(ctx, "content")
		So(err, ShouldBeNil)
		So(res.NormalizedScore, ShouldAlmostEqual, 0.75, 1e-9)
		So(res.Weights, ShouldResemble, map[string]float64{"a": 3, "b": 1})
	})

	Convey("Given a zero total weight", t, func() {
		a, err := scoring.NewAggregator(
			scoring.WithWeightedScorer(fixed("a", 1, 0.9), 0),
			scoring.WithWeightedScorer(fixed("b", 1, 0.7), 0),
		)
		So(err, ShouldBeNil)

		res, err := a.Score(ctx, "content")
		So(err, ShouldBeNil)

		Convey("Then the weighted average is zero, not NaN", func() {
			So(res.NormalizedScore, ShouldEqual, 0)
			So(res.RawScore, ShouldEqual, 0)
		})
	})

	Convey("Given a failing scorer next to a healthy one", t, func() {
		a, err := scoring.NewAggregator(
			scoring.WithWeightedScorer(&stubScorer{id: "broken", weight: 1, err: errors.New("boom")}, 0.5),
			scoring.WithWeightedScorer(fixed("healthy", 1, 0.8), 0.5),
		)
		So(err, ShouldBeNil)

		res, err := a.Score(ctx, "content")
		So(err, ShouldBeNil)

		Convey("Then the failure degrades to zero and the rest still count", func() {
			So(res.Individual["broken"].NormalizedScore, ShouldEqual, 0)
			So(res.Individual["healthy"].NormalizedScore, ShouldEqual, 0.8)
			So(res.NormalizedScore, ShouldAlmostEqual, 0.4, 1e-9)
		})
	})

	Convey("Given a panicking scorer", t, func() {
		a, err := scoring.NewAggregator(
			scoring.WithWeightedScorer(&stubScorer{id: "panicky", weight: 1, panics: true}, 0.5),
			scoring.WithWeightedScorer(fixed("healthy", 1, 0.6), 0.5),
		)
		So(err, ShouldBeNil)

		res, err := a.Score(ctx, "content")
		So(err, ShouldBeNil)
		So(res.Individual["panicky"].NormalizedScore, ShouldEqual, 0)
		So(res.NormalizedScore, ShouldAlmostEqual, 0.3, 1e-9)
	})

	Convey("Given a scorer reporting an out-of-range normalized score", t, func() {
		a, err := scoring.NewAggregator(
			scoring.WithScorer(&stubScorer{id: "hot", weight: 1, result: scoring.Result{NormalizedScore: 3.5}}),
		)
		So(err, ShouldBeNil)

		res, err := a.Score(ctx, "content")
		So(err, ShouldBeNil)
		So(res.Individual["hot"].NormalizedScore, ShouldEqual, 1)
		So(res.NormalizedScore, ShouldEqual, 1)
	})
}
