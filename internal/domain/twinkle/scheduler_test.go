package twinkle_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/twinkle/internal/domain/timeline"
	"github.com/okian/twinkle/internal/domain/twinkle"
	. "github.com/smartystreets/goconvey/convey"
)

const tolerance = 1e-9

// scriptedSource replays a fixed list of draws, cycling when exhausted.
type scriptedSource struct {
	values []float64
	next   int
}

func (s *scriptedSource) Float64() float64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

func TestSchedule_ScriptedDraws(t *testing.T) {
	Convey("Given a 7 second loop with two particles and scripted draws", t, func() {
		src := &scriptedSource{values: []float64{
			// particle 0: x, y, fade-in 2.4, fade-out 2.6, peak 0.65, hold 0.5, jitter -0.15
			0.5, 0.5, 0.4, 0.6, 0.5, 0.5, 0.0,
			// particle 1: x, y, fade-in 2, fade-out 2, peak 0.5, hold 0.2, jitter 0
			0.0, 0.999, 0.0, 0.0, 0.0, 0.0, 0.5,
		}}

		particles, err := twinkle.Schedule(2, 7, 2, twinkle.WithSource(src))
		So(err, ShouldBeNil)
		So(particles, ShouldHaveLength, 2)

		Convey("Then particle 0 fits without scaling or wrapping", func() {
			c := particles[0].Cycle
			So(c.FadeIn, ShouldAlmostEqual, 2.4, tolerance)
			So(c.Hold, ShouldAlmostEqual, 0.5, tolerance)
			So(c.FadeOut, ShouldAlmostEqual, 2.6, tolerance)
			So(c.Total(), ShouldAlmostEqual, 5.5, tolerance)
			So(c.Total(), ShouldBeLessThanOrEqualTo, 0.9*7)
			So(c.Start, ShouldEqual, 0)
			So(c.FadeOutStart(), ShouldAlmostEqual, 2.9, tolerance)
			So(particles[0].Wrapped, ShouldBeFalse)
		})

		Convey("Then particle 0 emits a single fade-out ending at 5.5s", func() {
			tr, ok := particles[0].Timeline.Track(timeline.PropertyOpacity)
			So(ok, ShouldBeTrue)
			So(tr.Keyframes, ShouldHaveLength, 5)
			last := tr.Keyframes[len(tr.Keyframes)-1]
			So(last.Time, ShouldAlmostEqual, 5.5, tolerance)
			So(last.Value, ShouldEqual, twinkle.RestOpacity)
			So(last.Ease, ShouldEqual, timeline.EaseSineInOut)
		})

		Convey("Then particle 1 starts at its phase offset clamped to fit the loop", func() {
			c := particles[1].Cycle
			So(c.Total(), ShouldAlmostEqual, 4.2, tolerance)
			// base 3.5 exceeds 7 - 4.2, so the start is clamped
			So(c.Start, ShouldAlmostEqual, 2.8, tolerance)
			So(c.PeakOpacity, ShouldAlmostEqual, 0.5, tolerance)
		})

		Convey("Then positions honour the margin", func() {
			So(particles[0].Particle.X, ShouldAlmostEqual, 50, tolerance)
			So(particles[1].Particle.X, ShouldAlmostEqual, 5, tolerance)
			So(particles[1].Particle.Y, ShouldBeLessThan, 95)
			So(particles[1].Particle.Size, ShouldEqual, 2)
			So(particles[1].Particle.Index, ShouldEqual, 1)
		})
	})

	Convey("Given draws that would start a cycle at 5.8s of a 7s loop", t, func() {
		// every particle draws fade-in 2.4, fade-out 2.6, hold 0.5, no jitter
		src := &scriptedSource{values: []float64{0.5, 0.5, 0.4, 0.6, 0.5, 0.5, 0.5}}

		particles, err := twinkle.Schedule(6, 7, 2, twinkle.WithSource(src))
		So(err, ShouldBeNil)

		Convey("Then the clamp keeps the whole cycle inside the loop", func() {
			last := particles[5]
			So(twinkle.PhaseOffset(5, 6, 7), ShouldAlmostEqual, 35.0/6, tolerance)
			So(last.Cycle.Start, ShouldAlmostEqual, 1.5, tolerance)
			So(last.Cycle.FadeOutStart()+last.Cycle.FadeOut, ShouldBeLessThanOrEqualTo, 7+tolerance)
			So(last.Wrapped, ShouldBeFalse)
		})

		Convey("And building that unclamped cycle directly is rejected", func() {
			c := twinkle.Cycle{FadeIn: 2.4, Hold: 0.5, FadeOut: 2.6, PeakOpacity: 0.6, Start: 5.8}
			So(c.FadeOutStart(), ShouldAlmostEqual, 8.7, tolerance)
			_, err := c.Timeline(7)
			So(errors.Is(err, twinkle.ErrCycleOverrun), ShouldBeTrue)
		})
	})
}

func TestSchedule_Properties(t *testing.T) {
	Convey("Given seeded schedules across loops and counts", t, func() {
		loops := []float64{0.5, 1, 3, 4.7, 7, 12, 30}
		counts := []int{1, 2, 5, 25, 80}

		Convey("Then every cycle is bounded, idle each loop and inside the loop", func() {
			for _, loop := range loops {
				for _, n := range counts {
					particles, err := twinkle.Schedule(n, loop, 2, twinkle.WithSeed(int64(n)*31+int64(loop*10)))
					So(err, ShouldBeNil)
					So(particles, ShouldHaveLength, n)
					for _, p := range particles {
						So(p.Cycle.Total(), ShouldBeLessThanOrEqualTo, 0.9*loop+tolerance)
						So(p.Cycle.Start, ShouldBeGreaterThanOrEqualTo, 0)
						So(p.Cycle.Start+p.Cycle.Total(), ShouldBeLessThanOrEqualTo, loop+tolerance)
						So(p.Cycle.PeakOpacity, ShouldBeBetweenOrEqual, 0.5, 0.8)
						So(p.Particle.X, ShouldBeBetweenOrEqual, 5, 95)
						So(p.Particle.Y, ShouldBeBetweenOrEqual, 5, 95)
						So(p.Timeline.Validate(), ShouldBeNil)
					}
				}
			}
		})

		Convey("Then sampled values stay inside the visual envelope", func() {
			particles, err := twinkle.Schedule(10, 7, 2, twinkle.WithSeed(7))
			So(err, ShouldBeNil)
			for _, p := range particles {
				for step := 0; step < 140; step++ {
					v := p.Timeline.Sample(float64(step) * 0.05)
					So(v[timeline.PropertyOpacity], ShouldBeBetweenOrEqual, 0, 1)
					So(v[timeline.PropertyScale], ShouldBeBetweenOrEqual, twinkle.RestScale-tolerance, twinkle.PeakScale+tolerance)
				}
			}
		})

		Convey("Then short loops scale durations proportionally to 90% of the loop", func() {
			particles, err := twinkle.Schedule(3, 3, 2, twinkle.WithSeed(99))
			So(err, ShouldBeNil)
			for _, p := range particles {
				So(p.Cycle.Total(), ShouldAlmostEqual, 2.7, tolerance)
			}
			fi, h, fo := twinkle.Fit(2.5, 0.5, 3, 3)
			So(fi+h+fo, ShouldAlmostEqual, 2.7, tolerance)
			So(fi/fo, ShouldAlmostEqual, 2.5/3, tolerance)
			So(twinkle.MaxCycle(3), ShouldAlmostEqual, 2.7, tolerance)
		})

		Convey("Then durations that already fit are left alone", func() {
			fi, h, fo := twinkle.Fit(2, 0.5, 2, 7)
			So([]float64{fi, h, fo}, ShouldResemble, []float64{2, 0.5, 2})
		})
	})

	Convey("Given N particles", t, func() {
		Convey("Then base starts are spread evenly around the loop", func() {
			const n, loop = 8, 7.0
			for i := 0; i < n; i++ {
				So(twinkle.PhaseOffset(i, n, loop), ShouldAlmostEqual, float64(i)*loop/n, tolerance)
			}
			So(twinkle.PhaseOffset(1, 2, 7), ShouldEqual, 3.5)
			So(twinkle.PhaseOffset(0, 0, 7), ShouldEqual, 0)
		})
	})

	Convey("Given a fixed seed", t, func() {
		Convey("When regenerating with identical parameters", func() {
			a, err := twinkle.Schedule(25, 7, 2, twinkle.WithSeed(42))
			So(err, ShouldBeNil)
			b, err := twinkle.Schedule(25, 7, 2, twinkle.WithSeed(42))
			So(err, ShouldBeNil)

			Convey("Then the timelines are identical", func() {
				So(a, ShouldResemble, b)
			})
		})
	})

	Convey("Given a single particle", t, func() {
		src := &scriptedSource{values: []float64{0.5, 0.5, 0.0, 0.0, 0.0, 0.0, 0.999}}
		particles, err := twinkle.Schedule(1, 7, 2, twinkle.WithSource(src))
		So(err, ShouldBeNil)

		Convey("Then it still gets the jitter on top of a zero base", func() {
			So(particles, ShouldHaveLength, 1)
			So(particles[0].Cycle.Start, ShouldAlmostEqual, (0.999-0.5)*0.3, tolerance)
		})
	})
}

func TestSchedule_Validation(t *testing.T) {
	Convey("Given generation parameters", t, func() {
		Convey("When the particle count is zero", func() {
			particles, err := twinkle.Schedule(0, 7, 2)

			Convey("Then the result is empty without error", func() {
				So(err, ShouldBeNil)
				So(particles, ShouldBeEmpty)
			})
		})

		Convey("When the configuration is invalid", func() {
			cases := []struct {
				count      int
				loop, size float64
			}{
				{-1, 7, 2},
				{5, 0, 2},
				{5, -3, 2},
				{5, math.NaN(), 2},
				{5, math.Inf(1), 2},
				{5, 7, 0},
			}

			Convey("Then generation fails fast with no partial result", func() {
				for _, c := range cases {
					particles, err := twinkle.Schedule(c.count, c.loop, c.size)
					So(errors.Is(err, twinkle.ErrInvalidConfig), ShouldBeTrue)
					So(particles, ShouldBeNil)
				}
			})
		})
	})
}

func TestCycle_WrapSplit(t *testing.T) {
	Convey("Given a cycle whose fade-out crosses the loop boundary", t, func() {
		const loop = 7.0
		c := twinkle.Cycle{FadeIn: 2, Hold: 0.5, FadeOut: 2.5, PeakOpacity: 0.6, Start: 4}
		So(c.Wraps(loop), ShouldBeTrue)

		tl, err := c.Timeline(loop)
		So(err, ShouldBeNil)

		Convey("Then the wrap state is the linear split of the fade-out", func() {
			opacity, scale := c.WrapState(loop)
			// 0.5s of a 2.5s fade-out happens before the wrap
			So(opacity, ShouldAlmostEqual, 0.48, tolerance)
			So(scale, ShouldAlmostEqual, 1.18, tolerance)
		})

		Convey("Then both tracks carry the extra split keyframe", func() {
			for _, tr := range tl.Tracks {
				So(tr.Keyframes, ShouldHaveLength, 6)
				So(tr.Keyframes[len(tr.Keyframes)-1].Time, ShouldEqual, loop)
			}
			tr, _ := tl.Track(timeline.PropertyOpacity)
			So(tr.Keyframes[1].Time, ShouldAlmostEqual, 2, tolerance)
		})

		Convey("Then values are continuous across the boundary", func() {
			const eps = 1e-7
			before := tl.Sample(loop - eps)
			after := tl.Sample(eps)
			So(before[timeline.PropertyOpacity], ShouldAlmostEqual, after[timeline.PropertyOpacity], 1e-6)
			So(before[timeline.PropertyScale], ShouldAlmostEqual, after[timeline.PropertyScale], 1e-6)
			So(tl.Sample(0)[timeline.PropertyOpacity], ShouldAlmostEqual, 0.48, tolerance)
		})

		Convey("Then the particle rests between the tail and the next start", func() {
			for _, at := range []float64{2, 3, 3.99} {
				v := tl.Sample(at)
				So(v[timeline.PropertyOpacity], ShouldAlmostEqual, twinkle.RestOpacity, tolerance)
				So(v[timeline.PropertyScale], ShouldAlmostEqual, twinkle.RestScale, tolerance)
			}
		})

		Convey("Then the held peak is reached after the fade-in", func() {
			v := tl.Sample(6.25)
			So(v[timeline.PropertyOpacity], ShouldAlmostEqual, 0.6, tolerance)
			So(v[timeline.PropertyScale], ShouldAlmostEqual, twinkle.PeakScale, tolerance)
		})
	})

	Convey("Given a cycle whose fade-out starts exactly on the boundary", t, func() {
		c := twinkle.Cycle{FadeIn: 2, Hold: 1, FadeOut: 2, PeakOpacity: 0.7, Start: 4}
		tl, err := c.Timeline(7)
		So(err, ShouldBeNil)

		Convey("Then the whole fade-out plays after time zero", func() {
			opacity, _ := c.WrapState(7)
			So(opacity, ShouldAlmostEqual, 0.7, tolerance)
			So(tl.Sample(1e-9)[timeline.PropertyOpacity], ShouldAlmostEqual, 0.7, 1e-6)
			So(tl.Sample(2)[timeline.PropertyOpacity], ShouldAlmostEqual, 0, tolerance)
		})
	})

	Convey("Given invalid explicit cycles", t, func() {
		Convey("Then cycles longer than the loop are rejected", func() {
			_, err := twinkle.Cycle{FadeIn: 4, Hold: 1, FadeOut: 4, PeakOpacity: 0.5}.Timeline(7)
			So(errors.Is(err, twinkle.ErrCycleOverrun), ShouldBeTrue)
		})

		Convey("Then negative durations and bad opacities are rejected", func() {
			_, err := twinkle.Cycle{FadeIn: -1, Hold: 1, FadeOut: 1, PeakOpacity: 0.5}.Timeline(7)
			So(errors.Is(err, twinkle.ErrInvalidConfig), ShouldBeTrue)
			_, err = twinkle.Cycle{FadeIn: 1, Hold: 1, FadeOut: 1, PeakOpacity: 1.5}.Timeline(7)
			So(errors.Is(err, twinkle.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("Then a non-positive loop is rejected", func() {
			_, err := twinkle.Cycle{FadeIn: 1, Hold: 1, FadeOut: 1, PeakOpacity: 0.5}.Timeline(0)
			So(errors.Is(err, twinkle.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
